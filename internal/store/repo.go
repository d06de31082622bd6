package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateEvent is returned when two events share an id.
var ErrDuplicateEvent = errors.New("duplicate completion event id")

// uniqueEventIDs enforces the event_id uniqueness the sqlite table carries.
func uniqueEventIDs(data []CompletionEventData) error {
	seen := make(map[string]bool, len(data))
	for _, d := range data {
		if seen[d.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateEvent, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// matches reports whether an event passes the sequence and time filters.
// Limit is applied by the caller.
func (o QueryOpts) matches(seq int64, ts time.Time) bool {
	if o.After > 0 && seq <= o.After {
		return false
	}
	if o.Before > 0 && seq >= o.Before {
		return false
	}
	if !o.From.IsZero() && ts.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && ts.After(o.To) {
		return false
	}
	return true
}

// CompletionEventData captures a single learner completion event.
type CompletionEventData struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ModuleID  string    `json:"moduleId,omitempty"`
	PathID    string    `json:"pathId"`
	Timestamp time.Time `json:"timestamp"`
	Score     *float64  `json:"score,omitempty"`
	TimeSpent *int      `json:"timeSpent,omitempty"`
}

// CompletionEvent is a stored completion event with its global sequence.
type CompletionEvent struct {
	Sequence int64 `json:"sequence"`
	CompletionEventData
}

// BlobRepo stores named JSON documents.
type BlobRepo interface {
	// Load returns the blob stored under key. ok is false when absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes the blob stored under key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// EventRepo provides append access to completion events.
type EventRepo interface {
	// AppendCompletionEvent records an event and returns its sequence number.
	AppendCompletionEvent(ctx context.Context, data CompletionEventData) (int64, error)

	// QueryCompletionEvents returns events in sequence order.
	QueryCompletionEvents(ctx context.Context, opts QueryOpts) ([]CompletionEvent, error)

	// ReplaceCompletionEvents atomically swaps the whole log for data,
	// assigning fresh sequence numbers in slice order.
	ReplaceCompletionEvents(ctx context.Context, data []CompletionEventData) error

	// ClearCompletionEvents truncates the log.
	ClearCompletionEvents(ctx context.Context) error
}

// Backend bundles the repositories of one storage engine.
type Backend interface {
	BlobRepo() BlobRepo
	EventRepo() EventRepo
	Close() error
}
