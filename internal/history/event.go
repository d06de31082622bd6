// Package history records completion events and derives rollup statistics
// from them.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pastrypath/pastrypath/internal/store"
)

// EventType identifies what a completion event records.
type EventType string

const (
	ModuleStarted   EventType = "module_started"
	ModuleCompleted EventType = "module_completed"
	PathStarted     EventType = "path_started"
	PathCompleted   EventType = "path_completed"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case ModuleStarted, ModuleCompleted, PathStarted, PathCompleted:
		return true
	}
	return false
}

// Event is an immutable entry of the completion log.
type Event struct {
	ID        string    `json:"id"`
	Sequence  int64     `json:"sequence,omitempty"`
	Type      EventType `json:"type"`
	ModuleID  string    `json:"moduleId,omitempty"`
	PathID    string    `json:"pathId"`
	Timestamp time.Time `json:"timestamp"`
	Score     *float64  `json:"score,omitempty"`
	TimeSpent *int      `json:"timeSpent,omitempty"`
}

func (e Event) toData() store.CompletionEventData {
	return store.CompletionEventData{
		ID:        e.ID,
		Type:      string(e.Type),
		ModuleID:  e.ModuleID,
		PathID:    e.PathID,
		Timestamp: e.Timestamp,
		Score:     e.Score,
		TimeSpent: e.TimeSpent,
	}
}

func fromStored(ev store.CompletionEvent) Event {
	return Event{
		ID:        ev.ID,
		Sequence:  ev.Sequence,
		Type:      EventType(ev.Type),
		ModuleID:  ev.ModuleID,
		PathID:    ev.PathID,
		Timestamp: ev.Timestamp,
		Score:     ev.Score,
		TimeSpent: ev.TimeSpent,
	}
}

// Log is the append-only completion event log. Only Clear and Replace
// remove events.
type Log struct {
	repo store.EventRepo
	now  func() time.Time
}

// NewLog creates a log on top of repo.
func NewLog(repo store.EventRepo, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{repo: repo, now: now}
}

// Record appends an event, assigning its id and timestamp when unset.
func (l *Log) Record(ctx context.Context, e Event) (Event, error) {
	if !e.Type.Valid() {
		return Event{}, fmt.Errorf("record event: unknown type %q", e.Type)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	seq, err := l.repo.AppendCompletionEvent(ctx, e.toData())
	if err != nil {
		return Event{}, fmt.Errorf("record %s event: %w", e.Type, err)
	}
	e.Sequence = seq
	return e, nil
}

// Events returns every event in log order.
func (l *Log) Events(ctx context.Context) ([]Event, error) {
	return l.Query(ctx, store.QueryOpts{})
}

// Query returns the events matching opts in log order.
func (l *Log) Query(ctx context.Context, opts store.QueryOpts) ([]Event, error) {
	stored, err := l.repo.QueryCompletionEvents(ctx, opts)
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(stored))
	for i, ev := range stored {
		events[i] = fromStored(ev)
	}
	return events, nil
}

// Replace swaps the whole log for events, keeping their order. Events
// without an id get a fresh one.
func (l *Log) Replace(ctx context.Context, events []Event) error {
	data := make([]store.CompletionEventData, len(events))
	for i, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		data[i] = e.toData()
	}
	return l.repo.ReplaceCompletionEvents(ctx, data)
}

// Clear truncates the log.
func (l *Log) Clear(ctx context.Context) error {
	return l.repo.ClearCompletionEvents(ctx)
}
