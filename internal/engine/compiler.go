package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Trigger is one weekly repeating notification descriptor handed to a Scheduler.
type Trigger struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Sound      string `json:"sound"`
	Weekday    int    `json:"weekday"` // 1 = Sunday .. 7 = Saturday
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Repeats    bool   `json:"repeats"`
	ReminderID string `json:"reminderId,omitempty"`
}

// Scheduler accepts trigger registrations. Submission is fire-and-forget from
// the compiler's point of view; the scheduler owns the trigger afterwards.
type Scheduler interface {
	Submit(ctx context.Context, t Trigger) error
}

// Compiler expands reminder records into weekly triggers.
type Compiler struct {
	// Tone is the tone label picked in settings. Empty means the default sound.
	Tone string

	// FormatTitle and FormatBody allow the UI to inject localized strings.
	// When nil, the English fallbacks from config are used.
	FormatTitle func(r ReminderRecord) string
	FormatBody  func(r ReminderRecord) string
}

// ResolveSound maps a tone label to its sound asset.
func ResolveSound(tone string) string {
	if sound, ok := config.ToneSounds[tone]; ok {
		return sound
	}
	return config.DefaultSound
}

// Compile returns one trigger per (day, time) pair, days outer, times inner,
// in record order. Unknown day names and unparseable times are skipped.
func (c *Compiler) Compile(r ReminderRecord) []Trigger {
	log := slog.With(config.LogKeyComponent, config.CompCompiler, config.LogKeyMedicine, r.MedicineName)

	title, body := c.title(r), c.body(r)
	sound := ResolveSound(c.Tone)

	// Parse times once; a bad slot is skipped for every day.
	slots := make([]TimeOfDay, 0, len(r.Times))
	for _, raw := range r.Times {
		t, err := ParseTimeOfDay(raw)
		if err != nil {
			log.Debug(config.MsgSkippedTime, config.LogKeyTime, raw, config.LogKeyError, err)
			continue
		}
		slots = append(slots, t)
	}

	triggers := make([]Trigger, 0, len(r.SelectedDays)*len(slots))
	for _, day := range r.SelectedDays {
		weekday, err := day.Weekday()
		if err != nil {
			log.Debug(config.MsgSkippedDay, config.LogKeyDay, day)
			continue
		}
		for _, t := range slots {
			triggers = append(triggers, Trigger{
				Title:      title,
				Body:       body,
				Sound:      sound,
				Weekday:    weekday,
				Hour:       t.Hour,
				Minute:     t.Minute,
				Repeats:    true,
				ReminderID: r.ID,
			})
		}
	}

	log.Debug(config.MsgTriggersCompiled, config.LogKeyCount, len(triggers))
	return triggers
}

// Register compiles r and submits every trigger to sched.
// A failed submission does not stop the remaining ones; all failures are joined
// into the returned error. The count is the number of accepted triggers.
func (c *Compiler) Register(ctx context.Context, r ReminderRecord, sched Scheduler) (int, error) {
	var errs []error
	accepted := 0

	for _, t := range c.Compile(r) {
		if err := sched.Submit(ctx, t); err != nil {
			slog.Warn(config.ErrSubmit,
				config.LogKeyComponent, config.CompCompiler,
				config.LogKeyMedicine, r.MedicineName,
				config.LogKeyWeekday, t.Weekday,
				config.LogKeyTime, TimeOfDay{Hour: t.Hour, Minute: t.Minute}.String(),
				config.LogKeyError, err)
			errs = append(errs, err)
			continue
		}
		accepted++
	}

	if len(errs) > 0 {
		return accepted, fmt.Errorf("%s: %w", config.ErrSubmit, errors.Join(errs...))
	}
	return accepted, nil
}

func (c *Compiler) title(r ReminderRecord) string {
	if c.FormatTitle != nil {
		return c.FormatTitle(r)
	}
	return fmt.Sprintf(config.FallbackTitle, r.MedicineName)
}

func (c *Compiler) body(r ReminderRecord) string {
	if c.FormatBody != nil {
		return c.FormatBody(r)
	}
	return fmt.Sprintf(config.FallbackBody, r.Units, r.UnitType, r.MedicineName, r.When)
}
