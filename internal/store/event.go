package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every completion event. The sequence survives log clears so an event
// number is never reused.
//
// Uses raw SQL outside ent's builder because the builder has no
// UPDATE ... RETURNING. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.reserve(ctx, sc.db, 1)
}

// reserve claims n consecutive numbers through q and returns the first.
func (sc *sequenceCounter) reserve(ctx context.Context, q rowQuerier, n int64) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + ? WHERE id = 1 RETURNING next_val - ?`,
		n, n,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

var eventColumns = []string{
	"sequence", "event_id", "type", "module_id", "path_id", "timestamp", "score", "time_spent",
}

// eventRepo implements EventRepo on the completion_events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertEvent(ctx context.Context, ex execer, seq int64, data CompletionEventData) error {
	var moduleID, score, timeSpent any
	if data.ModuleID != "" {
		moduleID = data.ModuleID
	}
	if data.Score != nil {
		score = *data.Score
	}
	if data.TimeSpent != nil {
		timeSpent = *data.TimeSpent
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(CompletionEventsTable.Name).
		Columns(eventColumns...).
		Values(seq, data.ID, data.Type, moduleID, data.PathID, data.Timestamp.UTC(), score, timeSpent).
		Query()

	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert completion event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendCompletionEvent(ctx context.Context, data CompletionEventData) (int64, error) {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return 0, err
	}
	if err := insertEvent(ctx, r.db, seq, data); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *eventRepo) QueryCompletionEvents(ctx context.Context, opts QueryOpts) ([]CompletionEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(eventColumns...).
		From(entsql.Table(CompletionEventsTable.Name))
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	sel.OrderBy(entsql.Asc("sequence"))
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completion events: %w", err)
	}
	defer rows.Close()

	var result []CompletionEvent
	for rows.Next() {
		var (
			ev        CompletionEvent
			moduleID  sql.NullString
			score     sql.NullFloat64
			timeSpent sql.NullInt64
		)
		if err := rows.Scan(&ev.Sequence, &ev.ID, &ev.Type, &moduleID, &ev.PathID, &ev.Timestamp, &score, &timeSpent); err != nil {
			return nil, fmt.Errorf("scan completion event: %w", err)
		}
		ev.ModuleID = moduleID.String
		if score.Valid {
			v := score.Float64
			ev.Score = &v
		}
		if timeSpent.Valid {
			v := int(timeSpent.Int64)
			ev.TimeSpent = &v
		}
		// Time filters run here: stored timestamps are text and do not
		// compare reliably in SQL.
		if !opts.matches(ev.Sequence, ev.Timestamp) {
			continue
		}
		result = append(result, ev)
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completion events: %w", err)
	}
	return result, nil
}

func (r *eventRepo) ReplaceCompletionEvents(ctx context.Context, data []CompletionEventData) error {
	r.seq.mu.Lock()
	defer r.seq.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	query, args := entsql.Dialect(dialect.SQLite).Delete(CompletionEventsTable.Name).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear completion events: %w", err)
	}

	if len(data) > 0 {
		first, err := r.seq.reserve(ctx, tx, int64(len(data)))
		if err != nil {
			return err
		}
		for i, d := range data {
			if err := insertEvent(ctx, tx, first+int64(i), d); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (r *eventRepo) ClearCompletionEvents(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(CompletionEventsTable.Name).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear completion events: %w", err)
	}
	return nil
}
