package engine

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Projector derives today's agenda from the Store.
type Projector struct {
	Store *Store
}

// Project prunes expired records, then expands the ones due on todayName
// into one entry per time. Rows keep store order, then time order within a record.
// A record without times yields a single entry carrying the record unchanged.
func (p *Projector) Project(ctx context.Context, today Date, todayName DayName) ([]AgendaEntry, error) {
	records, err := p.Store.PruneExpired(ctx, today)
	if err != nil {
		return nil, err
	}

	var entries []AgendaEntry
	for _, r := range records {
		if !r.HasDay(todayName) || !r.InRange(today) {
			continue
		}

		if len(r.Times) == 0 {
			entries = append(entries, AgendaEntry{Index: len(entries), Record: r.clone()})
			continue
		}

		for _, t := range r.Times {
			row := r.clone()
			row.Times = []string{t}
			entries = append(entries, AgendaEntry{Index: len(entries), Record: row})
		}
	}

	slog.Debug(config.MsgAgendaProjected,
		config.LogKeyComponent, config.CompProjector,
		config.LogKeyToday, today,
		config.LogKeyDay, todayName,
		config.LogKeyCount, len(entries))
	return entries, nil
}

// ProjectNow projects the agenda for the clock's current local day.
func (p *Projector) ProjectNow(ctx context.Context, c Clock) ([]AgendaEntry, error) {
	today, name := Today(c)
	return p.Project(ctx, today, name)
}

// Delete removes the entry's time from its originating record.
// Entries with an id resolve by id, legacy entries by the identity triple.
func (p *Projector) Delete(ctx context.Context, e AgendaEntry) (DeleteOutcome, error) {
	_, outcome, err := p.DeleteEntry(ctx, e)
	return outcome, err
}

// DeleteEntry is Delete that also returns the ID of the record it changed.
func (p *Projector) DeleteEntry(ctx context.Context, e AgendaEntry) (string, DeleteOutcome, error) {
	if e.Record.ID != "" {
		outcome, err := p.Store.RemoveTimeByID(ctx, e.Record.ID, e.Time())
		if outcome == NotFound {
			return "", outcome, err
		}
		return e.Record.ID, outcome, err
	}
	return p.Store.RemoveTimeByKey(ctx, e.Record.Key(), e.Time())
}
