package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the HH:MM wire format.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay reads the HH:MM format written by the time picker.
// The value is split on ":" and both halves are read as integers.
// A trailing AM/PM marker is converted to 24-hour time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, config.TimeSeparator)
	if len(parts) != 2 {
		return TimeOfDay{}, malformed(config.ErrTimeFormat, s)
	}

	minutePart := strings.TrimSpace(parts[1])
	meridiem := ""
	upper := strings.ToUpper(minutePart)
	if strings.HasSuffix(upper, config.SuffixAM) || strings.HasSuffix(upper, config.SuffixPM) {
		meridiem = upper[len(upper)-2:]
		minutePart = strings.TrimSpace(minutePart[:len(minutePart)-2])
	}

	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeOfDay{}, malformed(config.ErrTimeFormat, s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return TimeOfDay{}, malformed(config.ErrTimeFormat, s)
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, malformed(config.ErrTimeRange, s)
		}
		hour %= 12
		if meridiem == config.SuffixPM {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, malformed(config.ErrTimeRange, s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// sameSlot compares two stored time strings.
// Parsed values are compared when both parse, raw text otherwise.
func sameSlot(a, b string) bool {
	ta, errA := ParseTimeOfDay(a)
	tb, errB := ParseTimeOfDay(b)
	if errA == nil && errB == nil {
		return ta == tb
	}
	return a == b
}
