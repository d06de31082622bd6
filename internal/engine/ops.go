package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/pastrypath/pastrypath/internal/achievements"
	"github.com/pastrypath/pastrypath/internal/apperr"
	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/unlock"
)

var errNoCatalog = errors.New("engine needs a catalog")

// StartModule marks a module in progress and counts an attempt.
func (e *Engine) StartModule(ctx context.Context, pathID, moduleID string) (Outcome, error) {
	return e.mutate(ctx, pathID, moduleID, func(cur progress.ModuleProgress) progress.ModuleUpdate {
		u := progress.ModuleUpdate{Attempts: progress.Ptr(cur.Attempts + 1)}
		if cur.Status == progress.StatusNotStarted {
			u.Status = progress.Ptr(progress.StatusInProgress)
		}
		return u
	})
}

// UpdateModule merges u into the module record.
func (e *Engine) UpdateModule(ctx context.Context, pathID, moduleID string, u progress.ModuleUpdate) (Outcome, error) {
	if u.CompletionPercentage != nil && (*u.CompletionPercentage < 0 || *u.CompletionPercentage > 100) {
		return Outcome{}, apperr.InvalidInput(fmt.Errorf("completion percentage %v outside 0-100", *u.CompletionPercentage))
	}
	return e.mutate(ctx, pathID, moduleID, func(progress.ModuleProgress) progress.ModuleUpdate { return u })
}

// CompleteModule sets a module to 100%. A completion counts as an attempt
// when none was recorded.
func (e *Engine) CompleteModule(ctx context.Context, pathID, moduleID string, score *float64) (Outcome, error) {
	return e.mutate(ctx, pathID, moduleID, func(cur progress.ModuleProgress) progress.ModuleUpdate {
		return progress.ModuleUpdate{
			CompletionPercentage: progress.Ptr(100.0),
			Attempts:             progress.Ptr(max(1, cur.Attempts)),
			Score:                score,
		}
	})
}

// UncompleteModule resets a module to not started. Unlocks already granted
// are kept and no event is recorded.
func (e *Engine) UncompleteModule(ctx context.Context, pathID, moduleID string) (Outcome, error) {
	return e.mutate(ctx, pathID, moduleID, func(progress.ModuleProgress) progress.ModuleUpdate {
		return progress.ModuleUpdate{
			Status:               progress.Ptr(progress.StatusNotStarted),
			CompletionPercentage: progress.Ptr(0.0),
		}
	})
}

// RecordTime adds minutes to the time spent on a module.
func (e *Engine) RecordTime(ctx context.Context, pathID, moduleID string, minutes int) (Outcome, error) {
	if minutes <= 0 {
		return Outcome{}, apperr.InvalidInput(fmt.Errorf("minutes must be positive, got %d", minutes))
	}
	return e.mutate(ctx, pathID, moduleID, func(cur progress.ModuleProgress) progress.ModuleUpdate {
		return progress.ModuleUpdate{TimeSpentMinutes: progress.Ptr(cur.TimeSpentMinutes + minutes)}
	})
}

func (e *Engine) mutate(ctx context.Context, pathID, moduleID string, build func(progress.ModuleProgress) progress.ModuleUpdate) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, _, err := e.cat.ModuleInPath(pathID, moduleID); err != nil {
		return Outcome{}, err
	}

	before := e.progress.ModuleProgressOrDefault(moduleID, pathID)
	pathBefore, touched := e.progress.PathProgress(pathID)
	if !touched {
		pathBefore.Status = progress.StatusNotStarted
	}

	out := Outcome{Module: e.progress.UpdateModuleProgress(moduleID, pathID, build(before))}
	out.Path, _ = e.progress.PathProgress(pathID)

	e.recordTransitions(ctx, &out, before, pathBefore)
	e.settle(ctx, &out)

	e.log.Debug("module updated",
		"module", moduleID,
		"path", pathID,
		"status", out.Module.Status,
		"pathCompletion", out.Path.CompletionPercentage,
	)
	return out, nil
}

// recordTransitions appends an event for every status a module or its path
// newly entered. Reverts record nothing.
func (e *Engine) recordTransitions(ctx context.Context, out *Outcome, before progress.ModuleProgress, pathBefore progress.PathProgress) {
	mod, path := out.Module, out.Path

	if before.Status == progress.StatusNotStarted && mod.Status != progress.StatusNotStarted {
		e.record(ctx, out, history.Event{Type: history.ModuleStarted, ModuleID: mod.ModuleID, PathID: mod.PathID})
	}
	if !before.IsCompleted() && mod.IsCompleted() {
		e.record(ctx, out, history.Event{
			Type:      history.ModuleCompleted,
			ModuleID:  mod.ModuleID,
			PathID:    mod.PathID,
			Score:     mod.Score,
			TimeSpent: progress.Ptr(mod.TimeSpentMinutes),
		})
	}
	if pathBefore.Status == progress.StatusNotStarted && path.Status != progress.StatusNotStarted {
		e.record(ctx, out, history.Event{Type: history.PathStarted, PathID: path.PathID})
	}
	if !pathBefore.IsCompleted() && path.IsCompleted() {
		var score *float64
		if path.Score > 0 {
			score = progress.Ptr(path.Score)
		}
		e.record(ctx, out, history.Event{
			Type:      history.PathCompleted,
			PathID:    path.PathID,
			Score:     score,
			TimeSpent: progress.Ptr(path.TimeSpentMinutes),
		})
	}
}

// settle runs the downstream pipeline after progress changed and saves.
func (e *Engine) settle(ctx context.Context, out *Outcome) {
	out.Unlocked = e.autoUnlock()
	out.Stats = e.stats(ctx)
	out.Achievements = e.evaluator.Evaluate(achievements.MetricsFromStats(out.Stats))
	for _, it := range out.Achievements {
		e.log.Info("achievement unlocked", "id", it.ID, "points", it.Points)
	}
	e.saveAll(ctx)
}

// autoUnlock unlocks every path, then every module, that became reachable.
func (e *Engine) autoUnlock() []unlock.Result {
	changes, err := e.resolver.AutoUnlockPaths(e.cat, e.progress, nil)
	if err != nil {
		e.log.Error("auto-unlock paths", "error", err)
	}
	for _, p := range e.cat.TopologicalPaths() {
		mods, err := e.resolver.AutoUnlockModules(e.cat, e.progress, p.ID)
		if err != nil {
			e.log.Error("auto-unlock modules", "path", p.ID, "error", err)
		}
		changes = append(changes, mods...)
	}
	for _, c := range changes {
		e.log.Debug("unlocked", "id", c.ID)
	}
	return changes
}

// CheckModule evaluates a module's prerequisites without unlocking it.
func (e *Engine) CheckModule(moduleID string) (unlock.Check, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.CheckModulePrerequisites(e.cat, e.progress, moduleID)
}

// CheckPath evaluates a path's prerequisites without unlocking it.
func (e *Engine) CheckPath(pathID string) (unlock.Check, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver.CheckPathPrerequisites(e.cat, e.progress, pathID)
}

// UnlockModule unlocks a module if its prerequisites allow it.
func (e *Engine) UnlockModule(ctx context.Context, moduleID string) (unlock.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.resolver.UnlockModule(e.cat, e.progress, moduleID)
	if err == nil && res.NewlyUnlocked {
		e.saveBlob(ctx, KeyUnlocks, e.resolver.State())
	}
	return res, err
}

// UnlockPath unlocks a path if its prerequisites allow it.
func (e *Engine) UnlockPath(ctx context.Context, pathID string) (unlock.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.resolver.UnlockPath(e.cat, e.progress, pathID)
	if err == nil && res.NewlyUnlocked {
		e.saveBlob(ctx, KeyUnlocks, e.resolver.State())
	}
	return res, err
}

// AutoUnlock unlocks everything currently reachable and returns the changes.
func (e *Engine) AutoUnlock(ctx context.Context) []unlock.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	changes := e.autoUnlock()
	if len(changes) > 0 {
		e.saveBlob(ctx, KeyUnlocks, e.resolver.State())
	}
	return changes
}

// ClearHistory empties the event log. Progress records are kept.
func (e *Engine) ClearHistory(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.history.Clear(ctx); err != nil {
		return &apperr.PersistenceError{Op: "clear", Err: err}
	}
	e.log.Info("history cleared")
	return nil
}

// Reset wipes every collection, in memory and in storage. In-memory state
// is reset even when storage fails; the storage errors are returned joined.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.progress.Reset()
	e.resolver.Reset()
	e.evaluator.Reset()
	e.bookmarks.Reset()

	var errs []error
	if err := e.history.Clear(ctx); err != nil {
		errs = append(errs, &apperr.PersistenceError{Op: "clear", Err: err})
	}
	for _, key := range []string{KeyProgress, KeyUnlocks, KeyAchievements, KeyBookmarks} {
		if err := e.blobs.Delete(ctx, key); err != nil {
			errs = append(errs, &apperr.PersistenceError{Op: "delete", Key: key, Err: err})
		}
	}
	e.log.Info("all learner data reset")
	return errors.Join(errs...)
}
