// Package engine ties the progress store, the unlock resolver, the event
// log, the achievement evaluator and bookmarks together behind one API and
// persists their state.
//
// Every mutating operation runs the same pipeline: update the progress
// records, record completion events for status transitions, auto-unlock
// whatever became reachable, recompute stats, evaluate achievements and
// save. Storage failures are logged and never fail the operation.
package engine

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pastrypath/pastrypath/internal/achievements"
	"github.com/pastrypath/pastrypath/internal/apperr"
	"github.com/pastrypath/pastrypath/internal/bookmarks"
	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/logger"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/store"
	"github.com/pastrypath/pastrypath/internal/unlock"
)

// Blob keys of the persisted collections.
const (
	KeyProgress     = "progress"
	KeyUnlocks      = "unlocks"
	KeyAchievements = "achievements"
	KeyBookmarks    = "bookmarks"
)

// Options configures New. Catalog is required; every other field has a
// default.
type Options struct {
	Catalog *catalog.Catalog
	Blobs   store.BlobRepo
	Events  store.EventRepo
	Logger  *logger.Logger
	// Policy overrides unlock.DefaultPolicy when non-nil.
	Policy *unlock.Policy
	// Definitions overrides achievements.DefaultDefinitions when non-nil.
	Definitions       []achievements.Definition
	PopularityCeiling int
	Now               func() time.Time
}

// Engine is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	cat     *catalog.Catalog
	blobs   store.BlobRepo
	log     *logger.Logger
	now     func() time.Time
	ceiling int

	progress  *progress.Store
	resolver  *unlock.Resolver
	history   *history.Log
	evaluator *achievements.Evaluator
	bookmarks *bookmarks.Set
}

// Outcome reports everything a mutating operation changed.
type Outcome struct {
	Module       progress.ModuleProgress `json:"module"`
	Path         progress.PathProgress   `json:"path"`
	Events       []history.Event         `json:"events,omitempty"`
	Unlocked     []unlock.Result         `json:"unlocked,omitempty"`
	Achievements []achievements.Item     `json:"achievements,omitempty"`
	Stats        history.Stats           `json:"stats"`
}

// New builds an engine and loads persisted state. Unreadable or corrupt
// collections are logged and start empty.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, apperr.InvalidInput(errNoCatalog)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Blobs == nil || opts.Events == nil {
		mem := store.NewMemory()
		if opts.Blobs == nil {
			opts.Blobs = mem
		}
		if opts.Events == nil {
			opts.Events = mem
		}
	}
	policy := unlock.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	defs := opts.Definitions
	if defs == nil {
		defs = achievements.DefaultDefinitions()
	}
	evaluator, err := achievements.NewEvaluator(defs, opts.Now)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cat:       opts.Catalog,
		blobs:     opts.Blobs,
		log:       opts.Logger,
		now:       opts.Now,
		ceiling:   opts.PopularityCeiling,
		progress:  progress.NewStore(opts.Catalog, opts.Now),
		resolver:  unlock.NewResolver(policy),
		history:   history.NewLog(opts.Events, opts.Now),
		evaluator: evaluator,
		bookmarks: bookmarks.New(opts.Now),
	}
	e.load(ctx)
	return e, nil
}

// Catalog returns the catalog the engine evaluates against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

func (e *Engine) load(ctx context.Context) {
	var snap progress.SnapshotData
	if e.loadBlob(ctx, KeyProgress, &snap) {
		e.progress.Restore(&snap)
	}
	var unlocks unlock.State
	if e.loadBlob(ctx, KeyUnlocks, &unlocks) {
		e.resolver.Restore(unlocks)
	}
	var ach achievements.State
	if e.loadBlob(ctx, KeyAchievements, &ach) {
		e.evaluator.Restore(ach)
	}
	var marks []bookmarks.Bookmark
	if e.loadBlob(ctx, KeyBookmarks, &marks) {
		e.bookmarks.Restore(marks)
	}
}

// loadBlob decodes key into v. It reports false when the key is absent or
// unusable, logging the latter.
func (e *Engine) loadBlob(ctx context.Context, key string, v any) bool {
	data, ok, err := e.blobs.Load(ctx, key)
	if err != nil {
		e.log.Warn("load failed, starting empty", "key", key, "error", &apperr.PersistenceError{Op: "load", Key: key, Err: err})
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		e.log.Warn("stored state is corrupt, starting empty", "key", key, "error", err)
		return false
	}
	return true
}

func (e *Engine) saveBlob(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		e.log.Error("encode state", "key", key, "error", err)
		return
	}
	if err := e.blobs.Save(ctx, key, data); err != nil {
		e.log.Warn("save failed", "key", key, "error", &apperr.PersistenceError{Op: "save", Key: key, Err: err})
	}
}

func (e *Engine) saveAll(ctx context.Context) {
	e.saveBlob(ctx, KeyProgress, e.progress.Snapshot())
	e.saveBlob(ctx, KeyUnlocks, e.resolver.State())
	e.saveBlob(ctx, KeyAchievements, e.evaluator.State())
	e.saveBlob(ctx, KeyBookmarks, e.bookmarks.Snapshot())
}

// events reads the whole log. A failing log reads as empty.
func (e *Engine) events(ctx context.Context) []history.Event {
	evs, err := e.history.Events(ctx)
	if err != nil {
		e.log.Warn("query events failed", "error", &apperr.PersistenceError{Op: "query", Err: err})
		return nil
	}
	return evs
}

func (e *Engine) record(ctx context.Context, out *Outcome, ev history.Event) {
	recorded, err := e.history.Record(ctx, ev)
	if err != nil {
		e.log.Warn("append event failed", "type", ev.Type, "error", &apperr.PersistenceError{Op: "append", Err: err})
		return
	}
	out.Events = append(out.Events, recorded)
}

func (e *Engine) stats(ctx context.Context) history.Stats {
	return history.ComputeStats(e.events(ctx), e.progress.AllModules(), e.progress.AllPaths(), e.now())
}
