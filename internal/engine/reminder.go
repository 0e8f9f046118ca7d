package engine

import (
	"time"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// DayName is a canonical English weekday name ("Monday".."Sunday").
type DayName string

const (
	Sunday    DayName = "Sunday"
	Monday    DayName = "Monday"
	Tuesday   DayName = "Tuesday"
	Wednesday DayName = "Wednesday"
	Thursday  DayName = "Thursday"
	Friday    DayName = "Friday"
	Saturday  DayName = "Saturday"
)

// Week lists the day names in the order the days screen shows them.
var Week = []DayName{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayNumbers is the scheduler numbering, 1-indexed starting Sunday.
var weekdayNumbers = map[DayName]int{
	Sunday:    1,
	Monday:    2,
	Tuesday:   3,
	Wednesday: 4,
	Thursday:  5,
	Friday:    6,
	Saturday:  7,
}

// Weekday returns the scheduler weekday number of d.
// It returns ErrMalformedEntry for names outside the table.
func (d DayName) Weekday() (int, error) {
	n, ok := weekdayNumbers[d]
	if !ok {
		return 0, malformed(config.ErrUnknownDay, string(d))
	}
	return n, nil
}

// DayNameOf converts a time.Weekday to its canonical name.
func DayNameOf(w time.Weekday) DayName {
	return DayName(w.String())
}

// Date is a calendar day in YYYY-MM-DD form. The zero value means "absent".
// Comparisons use plain string order, which matches chronological order for this layout.
type Date string

// DateOf returns the local calendar day of t.
func DateOf(t time.Time) Date {
	return Date(t.Format(config.DateFormatISO))
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d == ""
}

// Time parses the date at midnight in loc.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(config.DateFormatISO, string(d), loc)
	if err != nil {
		return time.Time{}, malformed(config.ErrDateFormat, string(d))
	}
	return t, nil
}

// ReminderRecord is one stored medicine schedule.
// Field names follow the persisted JSON layout of the "reminders" key.
type ReminderRecord struct {
	// ID is assigned by Store.Append. Legacy records decoded without one keep it empty.
	ID string `json:"id,omitempty"`

	MedicineName string `json:"medicineName"`
	Type         string `json:"type" validate:"omitempty,oneof=Tablet Injection Syrup"`
	Units        string `json:"units"`
	UnitType     string `json:"unitType" validate:"omitempty,oneof=mg ml"`
	Color        string `json:"color"`

	SelectedDays []DayName `json:"selectedDays"`
	When         string    `json:"when"`

	StartDate Date `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   Date `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// Times holds HH:MM strings in insertion order. Malformed slots are kept as written.
	Times []string `json:"times" validate:"min=1"`

	Description string `json:"description,omitempty"`
}

// Key returns the legacy identity triple of the record.
func (r ReminderRecord) Key() MatchKey {
	return MatchKey{MedicineName: r.MedicineName, When: r.When, StartDate: r.StartDate}
}

// HasDay reports whether the record is scheduled on day.
func (r ReminderRecord) HasDay(day DayName) bool {
	for _, d := range r.SelectedDays {
		if d == day {
			return true
		}
	}
	return false
}

// Expired reports whether the record's end date is before today.
func (r ReminderRecord) Expired(today Date) bool {
	return !r.EndDate.IsZero() && r.EndDate < today
}

// InRange reports whether today falls within [StartDate, EndDate].
// The bound only applies when both dates are present.
func (r ReminderRecord) InRange(today Date) bool {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return true
	}
	return r.StartDate <= today && today <= r.EndDate
}

// Dormant reports whether the date range can never contain a day.
func (r ReminderRecord) Dormant() bool {
	return !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.StartDate > r.EndDate
}

// clone returns a copy whose slices do not alias r.
func (r ReminderRecord) clone() ReminderRecord {
	r.SelectedDays = append([]DayName(nil), r.SelectedDays...)
	r.Times = append([]string(nil), r.Times...)
	return r
}

// MatchKey is the legacy identity of a record: two records sharing it are indistinguishable.
type MatchKey struct {
	MedicineName string
	When         string
	StartDate    Date
}

// Matches reports whether r carries the key.
func (k MatchKey) Matches(r ReminderRecord) bool {
	return r.MedicineName == k.MedicineName && r.When == k.When && r.StartDate == k.StartDate
}

// AgendaEntry is one (reminder, time) occurrence of today's agenda.
// Index is only meaningful within the projection that produced it.
type AgendaEntry struct {
	Index  int
	Record ReminderRecord
}

// Time returns the single time slot of the entry, or "" for the empty-times fallback.
func (e AgendaEntry) Time() string {
	if len(e.Record.Times) == 0 {
		return ""
	}
	return e.Record.Times[0]
}

// DeleteOutcome tells the caller what RemoveTime did.
type DeleteOutcome int

const (
	// NotFound means no record matched; nothing was written.
	NotFound DeleteOutcome = iota
	// Deleted means one time was removed and the record kept.
	Deleted
	// RecordRemoved means the last time was removed, taking the record with it.
	RecordRemoved
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case RecordRemoved:
		return "record_removed"
	default:
		return "not_found"
	}
}
