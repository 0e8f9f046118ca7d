package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
	"github.com/tartampluch/go-medreminder/internal/storage"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// countingKV records writes and can be told to fail.
type countingKV struct {
	engine.KV
	mu     sync.Mutex
	sets   int
	getErr error
	setErr error
}

func (c *countingKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.KV.Get(ctx, key)
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	return c.KV.Set(ctx, key, value)
}

func (c *countingKV) writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func newStore(t *testing.T) (*engine.Store, *countingKV) {
	t.Helper()
	kv := &countingKV{KV: storage.NewMemory()}
	s := engine.NewStore(engine.NewBlobRepository(kv))
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, kv
}

func record(name string, days []engine.DayName, times ...string) engine.ReminderRecord {
	return engine.ReminderRecord{
		MedicineName: name,
		Type:         config.TypeTablet,
		Units:        "500",
		UnitType:     config.UnitMG,
		When:         "Morning",
		SelectedDays: days,
		Times:        times,
	}
}

// seed writes records straight to the KV, bypassing Append (legacy blobs have no ids).
func seed(t *testing.T, kv engine.KV, records ...engine.ReminderRecord) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), config.KeyReminders, data))
}

// -----------------------------------------------------------------------------
// Append
// -----------------------------------------------------------------------------

func TestAppend_EmptyTimesRejected(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	_, err := s.Append(ctx, record("Aspirin", []engine.DayName{engine.Monday}, "08:00"))
	require.NoError(t, err)
	before := kv.writes()

	_, err = s.Append(ctx, record("Ibuprofen", []engine.DayName{engine.Monday}))
	assert.ErrorIs(t, err, engine.ErrValidation)
	assert.Equal(t, before, kv.writes(), "A rejected append must not write")

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "Store should be unchanged")
	assert.Equal(t, "Aspirin", all[0].MedicineName)
}

func TestAppend_FieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *engine.ReminderRecord)
		valid  bool
	}{
		{"Valid", func(r *engine.ReminderRecord) {}, true},
		{"Empty type allowed", func(r *engine.ReminderRecord) { r.Type = "" }, true},
		{"Unknown type", func(r *engine.ReminderRecord) { r.Type = "Capsule" }, false},
		{"Unknown unit", func(r *engine.ReminderRecord) { r.UnitType = "g" }, false},
		{"Bad start date", func(r *engine.ReminderRecord) { r.StartDate = "01/03/2024" }, false},
		{"Good date range", func(r *engine.ReminderRecord) { r.StartDate, r.EndDate = "2024-03-01", "2024-03-05" }, true},
		{"Dormant range accepted", func(r *engine.ReminderRecord) { r.StartDate, r.EndDate = "2024-03-05", "2024-03-01" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(t)
			r := record("Aspirin", []engine.DayName{engine.Monday}, "08:00")
			tt.mutate(&r)

			_, err := s.Append(context.Background(), r)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, engine.ErrValidation)
			}
		})
	}
}

func TestAppend_AssignsIDAndCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	in := record("Aspirin", []engine.DayName{engine.Monday}, "08:00")
	out, err := s.Append(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "id-1", out.ID)

	in.Times[0] = "23:59"
	got, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00"}, got.Times, "Caller mutations must not reach the store")

	kept := record("Syrup", nil, "09:00")
	kept.ID = "fixed"
	out, err = s.Append(ctx, kept)
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.ID, "A caller-supplied id is kept")

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestAppend_StorageFailure(t *testing.T) {
	s, kv := newStore(t)
	kv.setErr = errors.New("disk full")

	_, err := s.Append(context.Background(), record("Aspirin", nil, "08:00"))
	assert.ErrorIs(t, err, engine.ErrStorage)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoad_LegacyBlobWithoutIDs(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, kv.Set(context.Background(), config.KeyReminders,
		[]byte(`[{"medicineName":"Old","selectedDays":["Monday"],"when":"Night","times":["21:00"]}]`)))

	all, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].ID)
	assert.Equal(t, []string{"21:00"}, all[0].Times)
}

func TestLoad_CorruptBlob(t *testing.T) {
	s, kv := newStore(t)
	require.NoError(t, kv.Set(context.Background(), config.KeyReminders, []byte(`{not json`)))

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, engine.ErrStorage)
}

// -----------------------------------------------------------------------------
// PruneExpired
// -----------------------------------------------------------------------------

func TestPruneExpired_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	expired := record("Old", nil, "08:00")
	expired.EndDate = "2024-03-01"
	current := record("Current", nil, "08:00")
	current.EndDate = "2024-03-10"
	open := record("Open", nil, "08:00")
	seed(t, kv, expired, current, open)
	writes := kv.writes()

	first, err := s.PruneExpired(ctx, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, writes+1, kv.writes(), "First prune drops a record and writes")

	second, err := s.PruneExpired(ctx, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, writes+1, kv.writes(), "Second prune must be a no-op")
	assert.Equal(t, first, second)

	require.Len(t, second, 2)
	assert.Equal(t, "Current", second[0].MedicineName)
	assert.Equal(t, "Open", second[1].MedicineName)
}

func TestPruneExpired_EndDateTodaySurvives(t *testing.T) {
	s, kv := newStore(t)
	r := record("Last day", nil, "08:00")
	r.EndDate = "2024-03-05"
	seed(t, kv, r)

	kept, err := s.PruneExpired(context.Background(), "2024-03-05")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestPruneExpired_ReadFailure(t *testing.T) {
	s, kv := newStore(t)
	kv.getErr = errors.New("io")

	_, err := s.PruneExpired(context.Background(), "2024-03-05")
	assert.ErrorIs(t, err, engine.ErrStorage)
}

// -----------------------------------------------------------------------------
// RemoveTime
// -----------------------------------------------------------------------------

func TestRemoveTime_PartialThenWhole(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	r := record("Paracetamol", []engine.DayName{engine.Monday}, "08:00", "20:00")
	r.StartDate = "2024-01-01"
	seed(t, kv, r)

	out, err := s.RemoveTime(ctx, r.Key(), "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.Deleted, out)

	all, _ := s.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"20:00"}, all[0].Times)

	out, err = s.RemoveTime(ctx, r.Key(), "20:00")
	require.NoError(t, err)
	assert.Equal(t, engine.RecordRemoved, out)

	all, _ = s.List(ctx)
	assert.Empty(t, all, "Removing the last time removes the record")
}

func TestRemoveTime_AmbiguousPicksFirstInStoreOrder(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	a := record("Paracetamol", nil, "08:00", "12:00")
	a.StartDate = "2024-01-01"
	b := record("Paracetamol", nil, "08:00", "18:00")
	b.StartDate = "2024-01-01"
	seed(t, kv, a, b)

	out, err := s.RemoveTime(ctx, engine.MatchKey{MedicineName: "Paracetamol", When: "Morning", StartDate: "2024-01-01"}, "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.Deleted, out)

	all, _ := s.List(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"12:00"}, all[0].Times, "The first record is edited")
	assert.Equal(t, []string{"08:00", "18:00"}, all[1].Times, "The second record is untouched")
}

func TestRemoveTime_NotFoundDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	seed(t, kv, record("Aspirin", nil, "08:00"))
	writes := kv.writes()

	out, err := s.RemoveTime(ctx, engine.MatchKey{MedicineName: "Nope"}, "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.NotFound, out)
	assert.Equal(t, writes, kv.writes())
}

func TestRemoveTime_OnlyFirstEqualSlot(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	r := record("Aspirin", nil, "08:00", "8:00", "20:00")
	seed(t, kv, r)

	out, err := s.RemoveTime(ctx, r.Key(), "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.Deleted, out)

	all, _ := s.List(ctx)
	assert.Equal(t, []string{"8:00", "20:00"}, all[0].Times, "Only the first equal slot is removed")
}

func TestRemoveTime_MissingSlotStillPersists(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	r := record("Aspirin", nil, "08:00")
	seed(t, kv, r)
	writes := kv.writes()

	out, err := s.RemoveTime(ctx, r.Key(), "09:00")
	require.NoError(t, err)
	assert.Equal(t, engine.Deleted, out)
	assert.Equal(t, writes+1, kv.writes())
}

func TestRemoveTimeByID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	a, err := s.Append(ctx, record("Twin", nil, "08:00"))
	require.NoError(t, err)
	b, err := s.Append(ctx, record("Twin", nil, "08:00"))
	require.NoError(t, err)

	out, err := s.RemoveTimeByID(ctx, b.ID, "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.RecordRemoved, out)

	all, _ := s.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID, "The id path resolves twins exactly")
}

func TestRemoveTimeByKey_ReportsMatchedID(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	a, err := s.Append(ctx, record("Twin", nil, "08:00", "20:00"))
	require.NoError(t, err)
	_, err = s.Append(ctx, record("Twin", nil, "08:00"))
	require.NoError(t, err)

	id, out, err := s.RemoveTimeByKey(ctx, a.Key(), "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.Deleted, out)
	assert.Equal(t, a.ID, id, "The first record in store order is the one changed")

	id, out, err = s.RemoveTimeByKey(ctx, engine.MatchKey{MedicineName: "Nope"}, "08:00")
	require.NoError(t, err)
	assert.Equal(t, engine.NotFound, out)
	assert.Empty(t, id)

	t.Run("legacy record has no id", func(t *testing.T) {
		legacy := record("Legacy", nil, "09:00")
		seed(t, kv, legacy)

		id, out, err := s.RemoveTimeByKey(ctx, legacy.Key(), "09:00")
		require.NoError(t, err)
		assert.Equal(t, engine.RecordRemoved, out)
		assert.Empty(t, id)
	})
}

func TestRemoveTime_WriteFailure(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	r := record("Aspirin", nil, "08:00")
	seed(t, kv, r)
	kv.setErr = errors.New("readonly")

	out, err := s.RemoveTime(ctx, r.Key(), "08:00")
	assert.ErrorIs(t, err, engine.ErrStorage)
	assert.Equal(t, engine.NotFound, out)
}

func TestDeleteOutcome_String(t *testing.T) {
	assert.Equal(t, "not_found", engine.NotFound.String())
	assert.Equal(t, "deleted", engine.Deleted.String())
	assert.Equal(t, "record_removed", engine.RecordRemoved.String())
}
