package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

func agendaRows(entries []engine.AgendaEntry) []string {
	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Record.MedicineName+"@"+e.Time())
	}
	return rows
}

func TestProject_DateRangeBoundary(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	r := record("Course", []engine.DayName{engine.Tuesday, engine.Wednesday}, "08:00")
	r.StartDate, r.EndDate = "2024-03-01", "2024-03-05"
	seed(t, kv, r)
	p := &engine.Projector{Store: s}

	// 2024-03-05 is a Tuesday.
	entries, err := p.Project(ctx, "2024-03-05", engine.Tuesday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Course@08:00"}, agendaRows(entries), "The end date is inclusive")

	entries, err = p.Project(ctx, "2024-03-06", engine.Wednesday)
	require.NoError(t, err)
	assert.Empty(t, entries)

	all, _ := s.List(ctx)
	assert.Empty(t, all, "Projecting past the end date prunes the record from storage")
}

func TestProject_FiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	late := record("Late", []engine.DayName{engine.Monday}, "21:00", "07:00")
	other := record("OtherDay", []engine.DayName{engine.Tuesday}, "08:00")
	early := record("Early", []engine.DayName{engine.Monday, engine.Friday}, "06:00")
	future := record("Future", []engine.DayName{engine.Monday}, "09:00")
	future.StartDate, future.EndDate = "2024-04-01", "2024-04-30"
	halfOpen := record("HalfOpen", []engine.DayName{engine.Monday}, "10:00")
	halfOpen.StartDate = "2099-01-01"
	seed(t, kv, late, other, early, future, halfOpen)

	p := &engine.Projector{Store: s}
	entries, err := p.Project(ctx, "2024-03-04", engine.Monday)
	require.NoError(t, err)

	assert.Equal(t, []string{"Late@21:00", "Late@07:00", "Early@06:00", "HalfOpen@10:00"}, agendaRows(entries),
		"Store order then stored time order, no sorting by time of day")
	for i, e := range entries {
		assert.Equal(t, i, e.Index)
		assert.Len(t, e.Record.Times, 1)
	}
}

func TestProject_EmptyTimesRecordKept(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	seed(t, kv, record("NoTimes", []engine.DayName{engine.Monday}))

	entries, err := (&engine.Projector{Store: s}).Project(ctx, "2024-03-04", engine.Monday)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Record.Times)
	assert.Equal(t, "", entries[0].Time())
}

func TestProject_EntriesDoNotAliasStore(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.Append(ctx, record("A", []engine.DayName{engine.Monday}, "08:00", "09:00"))
	require.NoError(t, err)

	p := &engine.Projector{Store: s}
	entries, err := p.Project(ctx, "2024-03-04", engine.Monday)
	require.NoError(t, err)
	entries[0].Record.Times[0] = "00:00"
	entries[0].Record.SelectedDays[0] = engine.Sunday

	again, err := p.Project(ctx, "2024-03-04", engine.Monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"A@08:00", "A@09:00"}, agendaRows(again))
}

func TestProjectNow_UsesClock(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.Append(ctx, record("Weekend", []engine.DayName{engine.Saturday}, "10:00"))
	require.NoError(t, err)
	p := &engine.Projector{Store: s}

	// 2024-03-09 is a Saturday.
	entries, err := p.ProjectNow(ctx, MockClock{CurrentTime: time.Date(2024, 3, 9, 9, 0, 0, 0, time.Local)})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = p.ProjectNow(ctx, MockClock{CurrentTime: time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete_ByIDAndByTriple(t *testing.T) {
	ctx := context.Background()

	t.Run("id", func(t *testing.T) {
		s, _ := newStore(t)
		_, err := s.Append(ctx, record("Twin", []engine.DayName{engine.Monday}, "08:00"))
		require.NoError(t, err)
		_, err = s.Append(ctx, record("Twin", []engine.DayName{engine.Monday}, "08:00", "20:00"))
		require.NoError(t, err)

		p := &engine.Projector{Store: s}
		entries, err := p.Project(ctx, "2024-03-04", engine.Monday)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		id, out, err := p.DeleteEntry(ctx, entries[1])
		require.NoError(t, err)
		assert.Equal(t, engine.Deleted, out)
		assert.Equal(t, entries[1].Record.ID, id)

		all, _ := s.List(ctx)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"08:00"}, all[0].Times, "The first twin is not touched")
		assert.Equal(t, []string{"20:00"}, all[1].Times)
	})

	t.Run("legacy triple", func(t *testing.T) {
		s, kv := newStore(t)
		seed(t, kv, record("Legacy", []engine.DayName{engine.Monday}, "08:00"))

		p := &engine.Projector{Store: s}
		entries, err := p.Project(ctx, "2024-03-04", engine.Monday)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		id, out, err := p.DeleteEntry(ctx, entries[0])
		require.NoError(t, err)
		assert.Equal(t, engine.RecordRemoved, out)
		assert.Empty(t, id, "Legacy records carry no id to cancel triggers by")

		out, err = p.Delete(ctx, entries[0])
		require.NoError(t, err)
		assert.Equal(t, engine.NotFound, out)
	})
}
