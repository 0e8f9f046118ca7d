package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-medreminder/internal/config"
)

// rruleDays is indexed by scheduler weekday number minus one (Sunday first).
var rruleDays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// RRuleWeekday converts a scheduler weekday number (1 = Sunday) to its rrule value.
func RRuleWeekday(n int) (rrule.Weekday, bool) {
	if n < 1 || n > len(rruleDays) {
		return rrule.Weekday{}, false
	}
	return rruleDays[n-1], true
}

// BuildCalendar renders records as an iCalendar feed: one weekly VEVENT per
// (record, time) with a DISPLAY alarm at the dose time.
// Expired and dormant records are left out. c supplies the localized texts; nil uses fallbacks.
func BuildCalendar(records []ReminderRecord, now time.Time, c *Compiler) ([]byte, error) {
	if c == nil {
		c = &Compiler{}
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := DateOf(now)
	for _, r := range records {
		if r.Expired(today) || r.Dormant() {
			continue
		}
		events, err := c.recordEvents(r, now)
		if err != nil {
			slog.Warn(config.ErrRecurrence,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyMedicine, r.MedicineName,
				config.LogKeyError, err)
			continue
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCount, len(cal.Children),
		config.LogKeySizeBytes, buf.Len())
	return buf.Bytes(), nil
}

// recordEvents builds the VEVENTs of one record. A record with no usable day yields none.
func (c *Compiler) recordEvents(r ReminderRecord, now time.Time) ([]*ical.Event, error) {
	loc := now.Location()

	days := make([]rrule.Weekday, 0, len(r.SelectedDays))
	for _, d := range r.SelectedDays {
		n, err := d.Weekday()
		if err != nil {
			continue
		}
		wd, _ := RRuleWeekday(n)
		days = append(days, wd)
	}
	if len(days) == 0 {
		return nil, nil
	}

	first := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if !r.StartDate.IsZero() {
		start, err := r.StartDate.Time(loc)
		if err != nil {
			return nil, err
		}
		if start.After(first) {
			first = start
		}
	}
	first = firstMatchingDay(first, r.SelectedDays)

	rule := &rrule.ROption{Freq: rrule.WEEKLY, Byweekday: days}
	if !r.EndDate.IsZero() {
		end, err := r.EndDate.Time(loc)
		if err != nil {
			return nil, err
		}
		rule.Until = end.Add(24*time.Hour - time.Second)
	}

	title, body := c.title(r), c.body(r)
	uidBase := r.ID
	if uidBase == "" {
		// Legacy records have no id; the identity triple is stable across refreshes.
		hash := sha256.Sum256([]byte(r.MedicineName + "|" + r.When + "|" + string(r.StartDate)))
		uidBase = fmt.Sprintf("%x", hash[:8])
	}

	var events []*ical.Event
	for i, raw := range r.Times {
		t, err := ParseTimeOfDay(raw)
		if err != nil {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, i, config.ICalDomain))
		event.Props.SetText(config.PropSummary, title)
		event.Props.SetText(config.PropDescription, body)
		if r.Type != "" {
			event.Props.SetText(config.PropCategories, r.Type)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDateTime(time.Date(first.Year(), first.Month(), first.Day(), t.Hour, t.Minute, 0, 0, loc))
		event.Props.Set(dtStartProp)
		event.Props.SetRecurrenceRule(rule)

		addAlarm(event, config.DefaultAlarmTrigger, body)
		events = append(events, event)
	}
	return events, nil
}

// firstMatchingDay returns the first day on or after from that is one of days.
func firstMatchingDay(from time.Time, days []DayName) time.Time {
	for i := 0; i < 7; i++ {
		d := from.AddDate(0, 0, i)
		for _, name := range days {
			if DayNameOf(d.Weekday()) == name {
				return d
			}
		}
	}
	return from
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
