package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:00", TimeOfDay{8, 0}, false},
		{"8:05", TimeOfDay{8, 5}, false},
		{" 23:59 ", TimeOfDay{23, 59}, false},
		{"00:00", TimeOfDay{0, 0}, false},
		{"8:30 PM", TimeOfDay{20, 30}, false},
		{"12:00 AM", TimeOfDay{0, 0}, false},
		{"12:15pm", TimeOfDay{12, 15}, false},
		{"13:00 PM", TimeOfDay{}, true},
		{"24:00", TimeOfDay{}, true},
		{"10:60", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
		{"0800", TimeOfDay{}, true},
		{"a:b", TimeOfDay{}, true},
		{"1:2:3", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEntry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDay_String(t *testing.T) {
	assert.Equal(t, "07:05", TimeOfDay{7, 5}.String())
}

func TestSameSlot(t *testing.T) {
	assert.True(t, sameSlot("08:00", "8:00"))
	assert.True(t, sameSlot("8:00 PM", "20:00"))
	assert.False(t, sameSlot("08:00", "20:00"))
	assert.True(t, sameSlot("", ""), "Unparseable slots compare as raw text")
	assert.False(t, sameSlot("abc", "08:00"))
}

func TestDayName_Weekday(t *testing.T) {
	n, err := Saturday.Weekday()
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = DayName("Lundi").Weekday()
	assert.ErrorIs(t, err, ErrMalformedEntry)

	assert.Equal(t, Sunday, DayNameOf(time.Sunday))
}

func TestRecord_DateRange(t *testing.T) {
	r := ReminderRecord{StartDate: "2024-03-01", EndDate: "2024-03-05"}

	assert.False(t, r.InRange("2024-02-29"))
	assert.True(t, r.InRange("2024-03-01"))
	assert.True(t, r.InRange("2024-03-05"))
	assert.False(t, r.InRange("2024-03-06"))
	assert.True(t, r.Expired("2024-03-06"))
	assert.False(t, r.Expired("2024-03-05"))
	assert.False(t, r.Dormant())

	open := ReminderRecord{StartDate: "2024-03-01"}
	assert.True(t, open.InRange("2020-01-01"), "A single bound does not restrict the range")
	assert.False(t, open.Expired("2099-01-01"))

	dormant := ReminderRecord{StartDate: "2024-03-05", EndDate: "2024-03-01"}
	assert.True(t, dormant.Dormant())
	assert.False(t, dormant.InRange("2024-03-03"))
}

func TestDate_Time(t *testing.T) {
	d, err := Date("2024-03-05").Time(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = Date("05/03/2024").Time(time.UTC)
	assert.ErrorIs(t, err, ErrMalformedEntry)

	assert.Equal(t, Date("2024-03-05"), DateOf(d))
	assert.True(t, Date("").IsZero())
}

func TestToday(t *testing.T) {
	// 2024-03-04 is a Monday.
	date, name := Today(fixedClock(time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, Date("2024-03-04"), date)
	assert.Equal(t, Monday, name)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
