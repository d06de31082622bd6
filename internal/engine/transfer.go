package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/mod/semver"

	"github.com/pastrypath/pastrypath/internal/apperr"
	"github.com/pastrypath/pastrypath/internal/bookmarks"
	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/progress"
)

// Kind names an exportable collection.
type Kind string

const (
	KindProgress  Kind = "progress"
	KindBookmarks Kind = "bookmarks"
	KindEvents    Kind = "events"
)

// Kinds returns every exportable collection.
func Kinds() []Kind {
	return []Kind{KindProgress, KindBookmarks, KindEvents}
}

// FormatVersion is written into every export. Imports accept any version
// with the same major.
const FormatVersion = "1.2.0"

// Envelope wraps exported data.
type Envelope struct {
	Version    string          `json:"version"`
	Kind       Kind            `json:"kind"`
	ExportedAt time.Time       `json:"exportedAt"`
	Data       json.RawMessage `json:"data"`
}

func (k Kind) schema() *Schema {
	switch k {
	case KindProgress:
		return ProgressSchema
	case KindBookmarks:
		return BookmarksSchema
	case KindEvents:
		return EventsSchema
	}
	return nil
}

// Export serializes one collection as an indented envelope.
func (e *Engine) Export(ctx context.Context, kind Kind) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var data any
	switch kind {
	case KindProgress:
		data = e.progress.Snapshot()
	case KindBookmarks:
		data = e.bookmarks.Snapshot()
	case KindEvents:
		evs, err := e.history.Events(ctx)
		if err != nil {
			return nil, &apperr.PersistenceError{Op: "query", Err: err}
		}
		if evs == nil {
			evs = []history.Event{}
		}
		data = evs
	default:
		return nil, apperr.InvalidInput(fmt.Errorf("unknown export kind %q", kind))
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.MarshalIndent(Envelope{
		Version:    FormatVersion,
		Kind:       kind,
		ExportedAt: e.now().UTC(),
		Data:       raw,
	}, "", "  ")
}

// ExportProgress exports the progress records.
func (e *Engine) ExportProgress(ctx context.Context) ([]byte, error) {
	return e.Export(ctx, KindProgress)
}

// ExportBookmarks exports the bookmarks.
func (e *Engine) ExportBookmarks(ctx context.Context) ([]byte, error) {
	return e.Export(ctx, KindBookmarks)
}

// ExportEvents exports the event log.
func (e *Engine) ExportEvents(ctx context.Context) ([]byte, error) {
	return e.Export(ctx, KindEvents)
}

// Import replaces one collection with the contents of an export. It
// returns false, leaving every collection untouched, when the payload is
// malformed, of another kind or of an incompatible version. The reason is
// logged.
func (e *Engine) Import(ctx context.Context, kind Kind, payload []byte) bool {
	if err := e.importKind(ctx, kind, payload); err != nil {
		e.log.Warn("import rejected", "kind", kind, "error", err)
		return false
	}
	e.log.Info("import complete", "kind", kind)
	return true
}

// ImportProgress replaces the progress records.
func (e *Engine) ImportProgress(ctx context.Context, payload []byte) bool {
	return e.Import(ctx, KindProgress, payload)
}

// ImportBookmarks replaces the bookmarks.
func (e *Engine) ImportBookmarks(ctx context.Context, payload []byte) bool {
	return e.Import(ctx, KindBookmarks, payload)
}

// ImportEvents replaces the event log.
func (e *Engine) ImportEvents(ctx context.Context, payload []byte) bool {
	return e.Import(ctx, KindEvents, payload)
}

// ValidateImport reports why payload would be rejected, or nil.
func ValidateImport(kind Kind, payload []byte) error {
	_, err := decode(kind, payload)
	return err
}

func (e *Engine) importKind(ctx context.Context, kind Kind, payload []byte) error {
	data, err := decode(kind, payload)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch kind {
	case KindProgress:
		var snap progress.SnapshotData
		if err := json.Unmarshal(data, &snap); err != nil {
			return apperr.InvalidInput(err)
		}
		e.progress.Restore(&snap)
	case KindBookmarks:
		var list []bookmarks.Bookmark
		if err := json.Unmarshal(data, &list); err != nil {
			return apperr.InvalidInput(err)
		}
		e.bookmarks.Restore(list)
	case KindEvents:
		var evs []history.Event
		if err := json.Unmarshal(data, &evs); err != nil {
			return apperr.InvalidInput(err)
		}
		if err := e.history.Replace(ctx, evs); err != nil {
			return &apperr.PersistenceError{Op: "replace", Err: err}
		}
	}

	var out Outcome
	e.settle(ctx, &out)
	return nil
}

// decode validates the envelope and returns its data.
func decode(kind Kind, payload []byte) (json.RawMessage, error) {
	schema := kind.schema()
	if schema == nil {
		return nil, apperr.InvalidInput(fmt.Errorf("unknown import kind %q", kind))
	}
	if err := validate(EnvelopeSchema, payload); err != nil {
		return nil, apperr.InvalidInput(err)
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperr.InvalidInput(err)
	}
	if env.Kind != kind {
		return nil, apperr.InvalidInput(fmt.Errorf("payload holds %q, not %q", env.Kind, kind))
	}
	if err := checkVersion(env.Version); err != nil {
		return nil, apperr.InvalidInput(err)
	}
	if err := validate(schema, env.Data); err != nil {
		return nil, apperr.InvalidInput(err)
	}
	if kind == KindEvents {
		if err := uniqueEventIDs(env.Data); err != nil {
			return nil, apperr.InvalidInput(err)
		}
	}
	return env.Data, nil
}

// uniqueEventIDs rejects an events payload that repeats an id. Events
// without an id get a fresh one on import.
func uniqueEventIDs(data json.RawMessage) error {
	var evs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &evs); err != nil {
		return err
	}
	seen := make(map[string]bool, len(evs))
	for _, ev := range evs {
		if ev.ID == "" {
			continue
		}
		if seen[ev.ID] {
			return fmt.Errorf("duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = true
	}
	return nil
}

var errVersion = errors.New("incompatible export version")

func checkVersion(v string) error {
	canon := "v" + v
	if !semver.IsValid(canon) {
		return fmt.Errorf("%w: %q is not a semantic version", errVersion, v)
	}
	if semver.Major(canon) != semver.Major("v"+FormatVersion) {
		return fmt.Errorf("%w: %s, want %s.x", errVersion, v, semver.Major("v"+FormatVersion))
	}
	return nil
}
