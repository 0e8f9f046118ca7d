// Package notify delivers reminder triggers as desktop notifications.
// The Dispatcher stands in for the platform scheduler: it accepts triggers,
// persists them and fires each one at its weekly occurrence.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// Notifier shows one notification to the user.
type Notifier interface {
	Notify(ctx context.Context, t engine.Trigger) error
}

// Dispatcher implements engine.Scheduler over a KV-persisted trigger list.
type Dispatcher struct {
	kv       engine.KV
	notifier Notifier
	clock    engine.Clock
	interval time.Duration
	metrics  *Metrics

	// Records, when set, ties triggers to their reminders: Tick withdraws
	// triggers whose reminder is gone and holds those outside its date range.
	Records engine.Repository

	mu sync.Mutex
	// last is the end of the previous firing window. Zero until the first tick.
	last time.Time
}

// NewDispatcher validates the interval and wires the dependencies.
// A nil metrics value gets unregistered collectors.
func NewDispatcher(kv engine.KV, n Notifier, clock engine.Clock, interval time.Duration, metrics *Metrics) (*Dispatcher, error) {
	if interval <= 0 {
		return nil, errors.New(config.ErrDispatchInterval)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Dispatcher{
		kv:       kv,
		notifier: n,
		clock:    clock,
		interval: interval,
		metrics:  metrics,
	}, nil
}

// Submit registers t. No deduplication: submitting twice fires twice.
func (d *Dispatcher) Submit(ctx context.Context, t engine.Trigger) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	triggers, err := d.load(ctx)
	if err != nil {
		return err
	}
	triggers = append(triggers, t)
	if err := d.save(ctx, triggers); err != nil {
		return err
	}

	d.metrics.Submitted.Inc()
	slog.Debug(config.MsgTriggerSubmitted,
		config.LogKeyComponent, config.CompDispatcher,
		config.LogKeyID, t.ReminderID,
		config.LogKeyWeekday, t.Weekday,
		config.LogKeyTime, engine.TimeOfDay{Hour: t.Hour, Minute: t.Minute}.String())
	return nil
}

// Cancel removes every trigger for which match returns true and reports how many went.
func (d *Dispatcher) Cancel(ctx context.Context, match func(engine.Trigger) bool) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	triggers, err := d.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := triggers[:0]
	for _, t := range triggers {
		if !match(t) {
			kept = append(kept, t)
		}
	}
	removed := len(triggers) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := d.save(ctx, kept); err != nil {
		return 0, err
	}

	slog.Info(config.MsgTriggersCanceled,
		config.LogKeyComponent, config.CompDispatcher,
		config.LogKeyCount, removed)
	return removed, nil
}

// CancelReminder drops the triggers registered for one reminder id.
func (d *Dispatcher) CancelReminder(ctx context.Context, id string) (int, error) {
	return d.Cancel(ctx, func(t engine.Trigger) bool { return t.ReminderID == id })
}

// CancelSlot drops one trigger per weekday for a reminder at one time of day.
// A record holding the same time twice registered two triggers per weekday,
// and removing one of its times must leave the other firing.
func (d *Dispatcher) CancelSlot(ctx context.Context, id, slot string) (int, error) {
	t, err := engine.ParseTimeOfDay(slot)
	if err != nil {
		return 0, nil
	}
	seen := make(map[int]bool)
	return d.Cancel(ctx, func(tr engine.Trigger) bool {
		if tr.ReminderID != id || tr.Hour != t.Hour || tr.Minute != t.Minute || seen[tr.Weekday] {
			return false
		}
		seen[tr.Weekday] = true
		return true
	})
}

// Triggers returns the registered triggers in submission order.
func (d *Dispatcher) Triggers(ctx context.Context) ([]engine.Trigger, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// Run ticks until ctx is cancelled. Occurrences that fell before Run started are not replayed.
func (d *Dispatcher) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompDispatcher)
	log.Info(config.MsgDispatcherStart, config.LogKeyInterval, d.interval.String())

	d.mu.Lock()
	if d.last.IsZero() {
		d.last = d.clock.Now()
	}
	d.mu.Unlock()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgDispatcherStop)
			return
		case <-ticker.C:
			if _, err := d.Tick(ctx); err != nil {
				log.Error(config.ErrNotify, config.LogKeyError, err)
			}
		}
	}
}

// Tick fires every trigger with an occurrence in (last tick, now].
// A window spanning several occurrences of one trigger fires it once.
// With Records set, triggers of removed reminders are dropped and occurrences
// outside the reminder's start/end dates are skipped.
// It returns the number of triggers that were due.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	now := d.clock.Now()

	d.mu.Lock()
	from := d.last
	if from.IsZero() {
		d.last = now
		d.mu.Unlock()
		return 0, nil
	}

	triggers, err := d.load(ctx)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}

	owners, err := d.owners(ctx)
	if err != nil {
		d.mu.Unlock()
		return 0, err
	}

	var due []engine.Trigger
	kept := triggers[:0:0]
	orphaned := 0
	for _, t := range triggers {
		owner, owned := owners[t.ReminderID]
		if owners != nil && t.ReminderID != "" && !owned {
			orphaned++
			continue
		}

		next, err := NextFire(t, from)
		if err != nil {
			slog.Warn(config.ErrRecurrence,
				config.LogKeyComponent, config.CompDispatcher,
				config.LogKeyID, t.ReminderID,
				config.LogKeyError, err)
			kept = append(kept, t)
			continue
		}
		if next.After(now) {
			kept = append(kept, t)
			continue
		}
		if owned && !owner.InRange(engine.DateOf(next)) {
			slog.Debug(config.MsgTriggerSkipped,
				config.LogKeyComponent, config.CompDispatcher,
				config.LogKeyID, t.ReminderID,
				config.LogKeyToday, engine.DateOf(next))
			kept = append(kept, t)
			continue
		}
		due = append(due, t)
		if t.Repeats {
			kept = append(kept, t)
		}
	}
	if len(kept) != len(triggers) {
		if err := d.save(ctx, kept); err != nil {
			d.mu.Unlock()
			return 0, err
		}
	}
	if orphaned > 0 {
		slog.Info(config.MsgTriggersOrphaned,
			config.LogKeyComponent, config.CompDispatcher,
			config.LogKeyCount, orphaned)
	}
	d.last = now
	d.mu.Unlock()

	if len(due) == 0 {
		return 0, nil
	}

	settings, err := engine.LoadSettings(ctx, d.kv)
	if err != nil {
		return len(due), err
	}

	log := slog.With(config.LogKeyComponent, config.CompDispatcher)
	if !settings.NotificationsEnabled {
		d.metrics.Fired.WithLabelValues(config.MetricResultSuppress).Add(float64(len(due)))
		log.Debug(config.MsgNotifSuppressed, config.LogKeyCount, len(due))
		return len(due), nil
	}

	for _, t := range due {
		if err := d.notifier.Notify(ctx, t); err != nil {
			d.metrics.Fired.WithLabelValues(config.MetricResultFailed).Inc()
			log.Warn(config.ErrNotify, config.LogKeyID, t.ReminderID, config.LogKeyError, err)
			continue
		}
		d.metrics.Fired.WithLabelValues(config.MetricResultSent).Inc()
		log.Info(config.MsgNotifFired,
			config.LogKeyID, t.ReminderID,
			config.LogKeySound, t.Sound,
			config.LogKeyTime, engine.TimeOfDay{Hour: t.Hour, Minute: t.Minute}.String())
	}
	return len(due), nil
}

// NextFire returns the first occurrence of t strictly after after, in after's location.
func NextFire(t engine.Trigger, after time.Time) (time.Time, error) {
	wd, ok := engine.RRuleWeekday(t.Weekday)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s: %d", engine.ErrMalformedEntry, config.ErrUnknownDay, t.Weekday)
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{wd},
		Byhour:    []int{t.Hour},
		Byminute:  []int{t.Minute},
		Bysecond:  []int{0},
		Dtstart:   after.AddDate(0, 0, -7).Truncate(time.Second),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrRecurrence, err)
	}

	next := r.After(after, false)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("%w: %s: %02d:%02d", engine.ErrMalformedEntry, config.ErrTimeRange, t.Hour, t.Minute)
	}
	return next, nil
}

// owners indexes the stored reminders by id. It is nil when Records is unset.
func (d *Dispatcher) owners(ctx context.Context) (map[string]engine.ReminderRecord, error) {
	if d.Records == nil {
		return nil, nil
	}
	records, err := d.Records.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]engine.ReminderRecord, len(records))
	for _, r := range records {
		if r.ID != "" {
			byID[r.ID] = r
		}
	}
	return byID, nil
}

func (d *Dispatcher) load(ctx context.Context) ([]engine.Trigger, error) {
	data, ok, err := d.kv.Get(ctx, config.KeyTriggers)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", engine.ErrStorage, config.ErrKVRead, err)
	}
	if !ok || len(data) == 0 {
		return []engine.Trigger{}, nil
	}
	var triggers []engine.Trigger
	if err := json.Unmarshal(data, &triggers); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", engine.ErrStorage, config.ErrDecodeTriggers, err)
	}
	return triggers, nil
}

func (d *Dispatcher) save(ctx context.Context, triggers []engine.Trigger) error {
	if triggers == nil {
		triggers = []engine.Trigger{}
	}
	data, err := json.Marshal(triggers)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", engine.ErrStorage, config.ErrEncodeTriggers, err)
	}
	if err := d.kv.Set(ctx, config.KeyTriggers, data); err != nil {
		return fmt.Errorf("%w: %s: %w", engine.ErrStorage, config.ErrKVWrite, err)
	}
	d.metrics.Registered.Set(float64(len(triggers)))
	return nil
}
