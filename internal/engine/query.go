package engine

import (
	"context"

	"github.com/pastrypath/pastrypath/internal/achievements"
	"github.com/pastrypath/pastrypath/internal/apperr"
	"github.com/pastrypath/pastrypath/internal/bookmarks"
	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/recommend"
)

// ModuleProgress returns a module's record, or the not-started default.
func (e *Engine) ModuleProgress(pathID, moduleID string) (progress.ModuleProgress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, _, err := e.cat.ModuleInPath(pathID, moduleID); err != nil {
		return progress.ModuleProgress{}, err
	}
	return e.progress.ModuleProgressOrDefault(moduleID, pathID), nil
}

// PathProgress returns a path's rollup. An untouched path reads as not
// started, or completed when it has no modules.
func (e *Engine) PathProgress(pathID string) (progress.PathProgress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pathProgress(pathID)
}

func (e *Engine) pathProgress(pathID string) (progress.PathProgress, error) {
	if _, err := e.cat.Path(pathID); err != nil {
		return progress.PathProgress{}, err
	}
	if rec, ok := e.progress.PathProgress(pathID); ok {
		return rec, nil
	}
	rec := progress.PathProgress{
		PathID:               pathID,
		Status:               progress.StatusNotStarted,
		CompletionPercentage: e.progress.PathCompletionPercentage(pathID),
	}
	if rec.CompletionPercentage >= 100 {
		rec.Status = progress.StatusCompleted
	}
	return rec, nil
}

// ModuleStatus is a module's record together with its unlock state.
type ModuleStatus struct {
	progress.ModuleProgress
	Title      string `json:"title"`
	IsUnlocked bool   `json:"isUnlocked"`
	Bookmarked bool   `json:"bookmarked"`
}

// PathOverview is a path's rollup with the status of each module in path
// order.
type PathOverview struct {
	Path       progress.PathProgress `json:"path"`
	Title      string                `json:"title"`
	IsUnlocked bool                  `json:"isUnlocked"`
	Modules    []ModuleStatus        `json:"modules"`
}

// Overview returns the full progress picture of one path.
func (e *Engine) Overview(pathID string) (PathOverview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.cat.Path(pathID)
	if err != nil {
		return PathOverview{}, err
	}
	rec, err := e.pathProgress(pathID)
	if err != nil {
		return PathOverview{}, err
	}
	ov := PathOverview{
		Path:       rec,
		Title:      p.Title,
		IsUnlocked: e.resolver.IsPathUnlocked(pathID),
	}
	for _, m := range p.Modules {
		ov.Modules = append(ov.Modules, ModuleStatus{
			ModuleProgress: e.progress.ModuleProgressOrDefault(m.ID, pathID),
			Title:          m.Title,
			IsUnlocked:     e.resolver.IsModuleUnlocked(m.ID),
			Bookmarked:     e.bookmarks.Has(m.ID),
		})
	}
	return ov, nil
}

// Stats computes the rollup statistics.
func (e *Engine) Stats(ctx context.Context) history.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats(ctx)
}

// RecentEvents returns up to n events, newest first.
func (e *Engine) RecentEvents(ctx context.Context, n int) []history.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return history.Recent(e.events(ctx), n)
}

// Recommend ranks the catalog for the learner. The profile is rebuilt from
// the completed paths on every call.
func (e *Engine) Recommend(limit int, filters recommend.Filters) []recommend.Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()

	var completed []string
	for _, p := range e.progress.AllPaths() {
		if p.IsCompleted() {
			completed = append(completed, p.PathID)
		}
	}
	prof := recommend.BuildProfile(e.cat, completed)
	return recommend.Recommend(e.cat, prof, e.progress, recommend.Options{
		Limit:             limit,
		Filters:           filters,
		PopularityCeiling: e.ceiling,
	})
}

// Achievements returns every achievement and badge in dependency order.
func (e *Engine) Achievements() []achievements.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluator.Items()
}

// Level returns the learner's points level.
func (e *Engine) Level() achievements.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluator.Level()
}

// AddBookmark bookmarks a module of the catalog.
func (e *Engine) AddBookmark(ctx context.Context, moduleID, note string) (bookmarks.Bookmark, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pathID, ok := e.cat.OwnerPath(moduleID)
	if !ok {
		return bookmarks.Bookmark{}, apperr.NotFound("module", moduleID)
	}
	b, _ := e.bookmarks.Add(moduleID, pathID, note)
	e.saveBlob(ctx, KeyBookmarks, e.bookmarks.Snapshot())
	return b, nil
}

// RemoveBookmark deletes a bookmark and reports whether it existed.
func (e *Engine) RemoveBookmark(ctx context.Context, moduleID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.bookmarks.Remove(moduleID) {
		return false
	}
	e.saveBlob(ctx, KeyBookmarks, e.bookmarks.Snapshot())
	return true
}

// Bookmarks lists bookmarks newest first.
func (e *Engine) Bookmarks() []bookmarks.Bookmark {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bookmarks.List()
}
