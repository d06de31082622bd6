package progress

import (
	"maps"
	"slices"
	"time"
)

// PathIndex reports how many modules a path has. *catalog.Catalog satisfies it.
type PathIndex interface {
	ModuleCount(pathID string) (int, bool)
}

// Store holds per-module and per-path progress records. Records are replaced
// wholesale on every write and reads return copies.
type Store struct {
	modules map[string]ModuleProgress
	paths   map[string]PathProgress
	index   PathIndex
	now     func() time.Time
}

// NewStore creates an empty store. index may be nil, in which case path
// module counts fall back to the number of module records held per path.
func NewStore(index PathIndex, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		modules: make(map[string]ModuleProgress),
		paths:   make(map[string]PathProgress),
		index:   index,
		now:     now,
	}
}

// defaultModule returns the canonical not-started record.
func defaultModule(moduleID, pathID string) ModuleProgress {
	return ModuleProgress{
		ModuleID: moduleID,
		PathID:   pathID,
		Status:   StatusNotStarted,
	}
}

// ModuleProgress returns the record for a module. ok is false when the
// module has never been touched.
func (s *Store) ModuleProgress(moduleID string) (ModuleProgress, bool) {
	rec, ok := s.modules[moduleID]
	if !ok {
		return ModuleProgress{}, false
	}
	return rec.clone(), true
}

// ModuleProgressOrDefault returns the record for a module, or the canonical
// not-started record.
func (s *Store) ModuleProgressOrDefault(moduleID, pathID string) ModuleProgress {
	if rec, ok := s.ModuleProgress(moduleID); ok {
		return rec
	}
	return defaultModule(moduleID, pathID)
}

// PathProgress returns the rollup for a path. ok is false when no module of
// the path has been touched.
func (s *Store) PathProgress(pathID string) (PathProgress, bool) {
	rec, ok := s.paths[pathID]
	if !ok {
		return PathProgress{}, false
	}
	return rec.clone(), true
}

// PathCompletionPercentage returns the completion percentage of a path. A
// path without modules counts as 100 so it never blocks its dependents.
func (s *Store) PathCompletionPercentage(pathID string) float64 {
	if rec, ok := s.paths[pathID]; ok {
		return rec.CompletionPercentage
	}
	if n, ok := s.moduleCount(pathID); ok && n == 0 {
		return 100
	}
	return 0
}

// moduleCount asks the index for the number of modules of a path. ok is
// false when there is no index or it does not know the path.
func (s *Store) moduleCount(pathID string) (int, bool) {
	if s.index == nil {
		return 0, false
	}
	return s.index.ModuleCount(pathID)
}

// UpdateModuleProgress merges u into the module's record, applies the
// completion threshold rule and recomputes the owning path.
func (s *Store) UpdateModuleProgress(moduleID, pathID string, u ModuleUpdate) ModuleProgress {
	now := s.now()

	rec := defaultModule(moduleID, pathID)
	previousPath := ""
	if existing, ok := s.modules[moduleID]; ok {
		rec = existing.clone()
		previousPath = existing.PathID
	}
	rec.PathID = pathID

	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.CompletionPercentage != nil {
		rec.CompletionPercentage = *u.CompletionPercentage
	}
	if u.TimeSpentMinutes != nil {
		rec.TimeSpentMinutes = *u.TimeSpentMinutes
	}
	if u.Attempts != nil {
		rec.Attempts = *u.Attempts
	}
	if u.Score != nil {
		rec.Score = clonePtr(u.Score)
	}
	rec.LastAccessedAt = now

	rec.Status = statusFor(rec.CompletionPercentage, rec.Status)
	switch rec.Status {
	case StatusCompleted:
		if rec.CompletedAt == nil {
			rec.CompletedAt = &now
		}
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	case StatusInProgress:
		rec.CompletedAt = nil
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	default:
		rec.CompletedAt = nil
	}

	s.modules[moduleID] = rec

	s.RecomputePathProgress(pathID)
	if previousPath != "" && previousPath != pathID {
		s.RecomputePathProgress(previousPath)
	}
	return rec.clone()
}

// MarkModuleComplete sets the module to 100% and records score if given.
func (s *Store) MarkModuleComplete(moduleID, pathID string, score *float64) ModuleProgress {
	return s.UpdateModuleProgress(moduleID, pathID, ModuleUpdate{
		CompletionPercentage: Ptr(100.0),
		Score:                score,
	})
}

// MarkModuleIncomplete resets the module to 0% and not started.
func (s *Store) MarkModuleIncomplete(moduleID, pathID string) ModuleProgress {
	return s.UpdateModuleProgress(moduleID, pathID, ModuleUpdate{
		Status:               Ptr(StatusNotStarted),
		CompletionPercentage: Ptr(0.0),
	})
}

// RecomputePathProgress rebuilds the path rollup by re-scanning every module
// record of the path. It never reads the clock, so calling it twice without
// intervening module changes yields an identical record. Only a path the
// index reports with zero modules counts as complete when empty; an unknown
// path left without module records loses its rollup.
func (s *Store) RecomputePathProgress(pathID string) PathProgress {
	var (
		completed   []string
		records     int
		timeSpent   int
		scoreSum    float64
		scored      int
		anyStarted  bool
		lastAccess  time.Time
		current     string
		currentSeen time.Time
	)

	for _, id := range slices.Sorted(maps.Keys(s.modules)) {
		rec := s.modules[id]
		if rec.PathID != pathID {
			continue
		}
		records++
		timeSpent += rec.TimeSpentMinutes
		if rec.Score != nil {
			scoreSum += *rec.Score
			scored++
		}
		if rec.LastAccessedAt.After(lastAccess) {
			lastAccess = rec.LastAccessedAt
		}
		switch rec.Status {
		case StatusCompleted:
			completed = append(completed, id)
		case StatusInProgress:
			anyStarted = true
			if current == "" || rec.LastAccessedAt.After(currentSeen) {
				current = id
				currentSeen = rec.LastAccessedAt
			}
		}
	}

	total, known := s.moduleCount(pathID)
	if !known {
		total = records
	}
	if total == 0 && !known {
		// Nothing to roll up for a path the catalog has never heard of.
		delete(s.paths, pathID)
		return PathProgress{PathID: pathID, Status: StatusNotStarted}
	}

	pct := 100.0
	if total > 0 {
		pct = min(100, 100*float64(len(completed))/float64(total))
	}

	status := StatusNotStarted
	if anyStarted {
		status = StatusInProgress
	}
	status = statusFor(pct, status)

	score := 0.0
	if scored > 0 {
		score = scoreSum / float64(scored)
	}

	rec := PathProgress{
		PathID:               pathID,
		Status:               status,
		CompletionPercentage: pct,
		CompletedModuleIDs:   completed,
		CurrentModuleID:      current,
		TimeSpentMinutes:     timeSpent,
		Score:                score,
		LastAccessedAt:       lastAccess,
	}
	s.paths[pathID] = rec
	return rec.clone()
}

// ModulesForPath returns the module records belonging to a path, sorted by module id.
func (s *Store) ModulesForPath(pathID string) []ModuleProgress {
	var result []ModuleProgress
	for _, id := range slices.Sorted(maps.Keys(s.modules)) {
		if rec := s.modules[id]; rec.PathID == pathID {
			result = append(result, rec.clone())
		}
	}
	return result
}

// AllModules returns every module record, sorted by module id.
func (s *Store) AllModules() []ModuleProgress {
	result := make([]ModuleProgress, 0, len(s.modules))
	for _, id := range slices.Sorted(maps.Keys(s.modules)) {
		result = append(result, s.modules[id].clone())
	}
	return result
}

// AllPaths returns every path record, sorted by path id.
func (s *Store) AllPaths() []PathProgress {
	result := make([]PathProgress, 0, len(s.paths))
	for _, id := range slices.Sorted(maps.Keys(s.paths)) {
		result = append(result, s.paths[id].clone())
	}
	return result
}

// CompletedModules returns the set of completed module ids.
func (s *Store) CompletedModules() map[string]bool {
	result := make(map[string]bool)
	for id, rec := range s.modules {
		if rec.IsCompleted() {
			result[id] = true
		}
	}
	return result
}

// Reset removes every record.
func (s *Store) Reset() {
	s.modules = make(map[string]ModuleProgress)
	s.paths = make(map[string]PathProgress)
}
