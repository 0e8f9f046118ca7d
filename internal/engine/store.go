package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// KV is the opaque key-value store the app persists into.
// Get reports ok=false for a missing key; that is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repository loads and saves the whole reminder list.
// Swapping in per-record storage only requires a new implementation.
type Repository interface {
	LoadAll(ctx context.Context) ([]ReminderRecord, error)
	SaveAll(ctx context.Context, records []ReminderRecord) error
}

// BlobRepository keeps the list as one JSON array under a single key.
type BlobRepository struct {
	KV  KV
	Key string
}

// NewBlobRepository stores reminders under config.KeyReminders.
func NewBlobRepository(kv KV) *BlobRepository {
	return &BlobRepository{KV: kv, Key: config.KeyReminders}
}

// LoadAll decodes the list. A missing key is an empty list.
func (r *BlobRepository) LoadAll(ctx context.Context) ([]ReminderRecord, error) {
	data, ok, err := r.KV.Get(ctx, r.Key)
	if err != nil {
		return nil, storageErr(config.ErrKVRead, err)
	}
	if !ok || len(data) == 0 {
		return []ReminderRecord{}, nil
	}

	var records []ReminderRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, storageErr(config.ErrDecodeReminders, err)
	}
	if records == nil {
		records = []ReminderRecord{}
	}
	return records, nil
}

// SaveAll replaces the persisted list.
func (r *BlobRepository) SaveAll(ctx context.Context, records []ReminderRecord) error {
	if records == nil {
		records = []ReminderRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return storageErr(config.ErrEncodeReminders, err)
	}
	if err := r.KV.Set(ctx, r.Key, data); err != nil {
		return storageErr(config.ErrKVWrite, err)
	}
	return nil
}

// Store is the canonical home of reminder records.
// Every operation is a full read-modify-write of the list, serialized by mu.
type Store struct {
	repo     Repository
	validate *validator.Validate
	mu       sync.Mutex

	// NewID generates record identifiers. Tests replace it for stable output.
	NewID func() string
}

// NewStore creates a Store over repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:     repo,
		validate: validator.New(),
		NewID:    uuid.NewString,
	}
}

// List returns every stored record in store order.
func (s *Store) List(ctx context.Context) ([]ReminderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.LoadAll(ctx)
}

// Append validates and stores a new record, returning it with its assigned ID.
func (s *Store) Append(ctx context.Context, record ReminderRecord) (ReminderRecord, error) {
	if len(record.Times) == 0 {
		return ReminderRecord{}, fmt.Errorf("%w: %s", ErrValidation, config.ErrEmptyTimes)
	}
	if err := s.validate.Struct(record); err != nil {
		return ReminderRecord{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	log := slog.With(config.LogKeyComponent, config.CompStore)
	if record.Dormant() {
		log.Warn(config.MsgDormantRange,
			config.LogKeyMedicine, record.MedicineName,
			config.LogKeyStart, record.StartDate,
			config.LogKeyEnd, record.EndDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return ReminderRecord{}, err
	}

	record = record.clone()
	if record.ID == "" {
		record.ID = s.NewID()
	}
	records = append(records, record)

	if err := s.repo.SaveAll(ctx, records); err != nil {
		return ReminderRecord{}, err
	}

	log.Info(config.MsgReminderAdded,
		config.LogKeyID, record.ID,
		config.LogKeyMedicine, record.MedicineName,
		config.LogKeyCount, len(record.Times))
	return record, nil
}

// PruneExpired drops records whose end date is before today and returns the survivors.
// The list is written back only when something was dropped.
func (s *Store) PruneExpired(ctx context.Context, today Date) ([]ReminderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]ReminderRecord, 0, len(records))
	for _, r := range records {
		if !r.Expired(today) {
			kept = append(kept, r)
		}
	}

	if len(kept) != len(records) {
		if err := s.repo.SaveAll(ctx, kept); err != nil {
			return nil, err
		}
		slog.Info(config.MsgRemindersPruned,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyToday, today,
			config.LogKeyBefore, len(records),
			config.LogKeyAfter, len(kept))
	}
	return kept, nil
}

// RemoveTime deletes one time slot from the first record matching key, in store order.
// A missing record is reported as NotFound, not as an error.
func (s *Store) RemoveTime(ctx context.Context, key MatchKey, slot string) (DeleteOutcome, error) {
	_, outcome, err := s.removeTime(ctx, key.Matches, slot)
	return outcome, err
}

// RemoveTimeByKey is RemoveTime that also returns the ID of the record it changed,
// so callers can withdraw that record's triggers. The ID is empty on NotFound
// and for legacy records stored without one.
func (s *Store) RemoveTimeByKey(ctx context.Context, key MatchKey, slot string) (string, DeleteOutcome, error) {
	return s.removeTime(ctx, key.Matches, slot)
}

// RemoveTimeByID deletes one time slot from the record with the given ID.
func (s *Store) RemoveTimeByID(ctx context.Context, id, slot string) (DeleteOutcome, error) {
	_, outcome, err := s.removeTime(ctx, func(r ReminderRecord) bool { return r.ID == id }, slot)
	return outcome, err
}

func (s *Store) removeTime(ctx context.Context, match func(ReminderRecord) bool, slot string) (string, DeleteOutcome, error) {
	log := slog.With(config.LogKeyComponent, config.CompStore, config.LogKeyTime, slot)

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return "", NotFound, err
	}

	idx, matches := -1, 0
	for i, r := range records {
		if match(r) {
			if idx < 0 {
				idx = i
			}
			matches++
		}
	}
	if idx < 0 {
		log.Debug(config.MsgDeleteNoMatch)
		return "", NotFound, nil
	}
	if matches > 1 {
		log.Warn(config.MsgAmbiguousMatch, config.LogKeyMatches, matches)
	}

	rec := records[idx].clone()
	for i, t := range rec.Times {
		if sameSlot(t, slot) {
			rec.Times = append(rec.Times[:i], rec.Times[i+1:]...)
			break
		}
	}

	outcome := Deleted
	if len(rec.Times) == 0 {
		records = append(records[:idx], records[idx+1:]...)
		outcome = RecordRemoved
	} else {
		records[idx] = rec
	}

	if err := s.repo.SaveAll(ctx, records); err != nil {
		return "", NotFound, err
	}

	msg := config.MsgTimeRemoved
	if outcome == RecordRemoved {
		msg = config.MsgRecordRemoved
	}
	log.Info(msg, config.LogKeyID, rec.ID, config.LogKeyMedicine, rec.MedicineName)
	return rec.ID, outcome, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (ReminderRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return ReminderRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return ReminderRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

