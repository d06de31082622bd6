package engine

import (
	"context"
	"slices"

	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/progress"
)

// Reconciliation compares completed module records with the event log.
// Every completed record must have a completion event; the reverse does
// not hold because reverting a module records nothing.
type Reconciliation struct {
	// MissingEvents lists completed modules without a completion event.
	MissingEvents []string `json:"missingEvents"`
	// Reverted lists modules with a completion event that are no longer
	// completed.
	Reverted []string `json:"reverted"`
	Repaired int      `json:"repaired"`
}

// Consistent reports whether the records agree with the log.
func (r Reconciliation) Consistent() bool {
	return len(r.MissingEvents) == 0
}

// Reconcile checks the progress records against the event log. With repair
// set, a completion event is appended for each missing one, stamped with
// the record's completion time.
func (e *Engine) Reconcile(ctx context.Context, repair bool) Reconciliation {
	e.mu.Lock()
	defer e.mu.Unlock()

	logged := history.CompletedModules(e.events(ctx))
	records := e.progress.CompletedModules()

	var r Reconciliation
	for id := range records {
		if !logged[id] {
			r.MissingEvents = append(r.MissingEvents, id)
		}
	}
	for id := range logged {
		if !records[id] {
			r.Reverted = append(r.Reverted, id)
		}
	}
	slices.Sort(r.MissingEvents)
	slices.Sort(r.Reverted)

	if !repair || len(r.MissingEvents) == 0 {
		return r
	}

	var out Outcome
	for _, id := range r.MissingEvents {
		rec, _ := e.progress.ModuleProgress(id)
		ev := history.Event{
			Type:      history.ModuleCompleted,
			ModuleID:  id,
			PathID:    rec.PathID,
			Score:     rec.Score,
			TimeSpent: progress.Ptr(rec.TimeSpentMinutes),
		}
		if rec.CompletedAt != nil {
			ev.Timestamp = *rec.CompletedAt
		}
		before := len(out.Events)
		e.record(ctx, &out, ev)
		if len(out.Events) > before {
			r.Repaired++
		}
	}
	e.log.Info("reconciled event log", "missing", len(r.MissingEvents), "repaired", r.Repaired)
	return r
}
