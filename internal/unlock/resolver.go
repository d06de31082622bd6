// Package unlock decides when modules and paths may be unlocked.
//
// Gating is direct: a module is checked against its own prerequisite list
// and its path's prerequisite paths, never against the transitive closure.
// A chain A -> B -> C therefore needs B completed before C unlocks, and B
// needs A. Unlocks are a ratchet, independent of completion: once an id is
// unlocked it stays unlocked until Reset, even if a prerequisite is later
// reverted.
package unlock

import (
	"maps"
	"slices"

	"github.com/pastrypath/pastrypath/internal/catalog"
)

// Resolver evaluates prerequisites and holds the unlocked module and path sets.
type Resolver struct {
	policy  Policy
	modules map[string]bool
	paths   map[string]bool
}

// NewResolver creates a resolver with empty unlock sets.
func NewResolver(policy Policy) *Resolver {
	return &Resolver{
		policy:  policy,
		modules: make(map[string]bool),
		paths:   make(map[string]bool),
	}
}

// Policy returns the gate thresholds in use.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// CheckModulePrerequisites evaluates whether a module may be unlocked.
func (r *Resolver) CheckModulePrerequisites(cat *catalog.Catalog, prog ProgressReader, moduleID string) (Check, error) {
	m, err := cat.Module(moduleID)
	if err != nil {
		return Check{}, err
	}
	pathID, _ := cat.OwnerPath(moduleID)
	p, err := cat.Path(pathID)
	if err != nil {
		return Check{}, err
	}
	pos, _ := cat.Position(moduleID)

	check := Check{
		ID:                       moduleID,
		IsUnlocked:               r.modules[moduleID],
		MissingPrerequisiteIDs:   []string{},
		CompletedPrerequisiteIDs: []string{},
	}

	for _, prereqID := range m.Prerequisites {
		rec, ok := prog.ModuleProgress(prereqID)
		met := ok && rec.IsCompleted()
		check.record(prereqID, met)
		check.Conditions = append(check.Conditions, moduleCondition(prereqID, met))
	}

	for _, prereqPathID := range p.Prerequisites {
		pct := prog.PathCompletionPercentage(prereqPathID)
		check.record(prereqPathID, pct >= 100)
		check.Conditions = append(check.Conditions, pathCondition(prereqPathID, pct))
	}

	check.Conditions = append(check.Conditions, r.policy.conditions(p, m, pos, prog)...)
	check.finish()
	return check, nil
}

// CheckPathPrerequisites evaluates whether a path may be unlocked. Paths are
// gated by their prerequisite paths only.
func (r *Resolver) CheckPathPrerequisites(cat *catalog.Catalog, prog ProgressReader, pathID string) (Check, error) {
	p, err := cat.Path(pathID)
	if err != nil {
		return Check{}, err
	}

	check := Check{
		ID:                       pathID,
		IsUnlocked:               r.paths[pathID],
		MissingPrerequisiteIDs:   []string{},
		CompletedPrerequisiteIDs: []string{},
	}
	for _, prereqPathID := range p.Prerequisites {
		pct := prog.PathCompletionPercentage(prereqPathID)
		check.record(prereqPathID, pct >= 100)
		check.Conditions = append(check.Conditions, pathCondition(prereqPathID, pct))
	}
	check.finish()
	return check, nil
}

func (c *Check) record(id string, met bool) {
	if met {
		c.CompletedPrerequisiteIDs = append(c.CompletedPrerequisiteIDs, id)
	} else {
		c.MissingPrerequisiteIDs = append(c.MissingPrerequisiteIDs, id)
	}
}

// UnlockModule unlocks a module if its check allows it. NewlyUnlocked is
// true only on the call that performs the transition.
func (r *Resolver) UnlockModule(cat *catalog.Catalog, prog ProgressReader, moduleID string) (Result, error) {
	check, err := r.CheckModulePrerequisites(cat, prog, moduleID)
	if err != nil {
		return Result{}, err
	}
	res := Result{ID: moduleID, Check: check}
	if check.CanUnlock {
		r.modules[moduleID] = true
		res.NewlyUnlocked = true
	}
	return res, nil
}

// UnlockPath unlocks a path if its check allows it.
func (r *Resolver) UnlockPath(cat *catalog.Catalog, prog ProgressReader, pathID string) (Result, error) {
	check, err := r.CheckPathPrerequisites(cat, prog, pathID)
	if err != nil {
		return Result{}, err
	}
	res := Result{ID: pathID, Check: check}
	if check.CanUnlock {
		r.paths[pathID] = true
		res.NewlyUnlocked = true
	}
	return res, nil
}

// AutoUnlockModules evaluates every still-locked module of a path in path
// order and unlocks those that qualify. It returns only the new unlocks.
func (r *Resolver) AutoUnlockModules(cat *catalog.Catalog, prog ProgressReader, pathID string) ([]Result, error) {
	p, err := cat.Path(pathID)
	if err != nil {
		return nil, err
	}
	var changes []Result
	for _, m := range p.Modules {
		if r.modules[m.ID] {
			continue
		}
		res, err := r.UnlockModule(cat, prog, m.ID)
		if err != nil {
			return changes, err
		}
		if res.NewlyUnlocked {
			changes = append(changes, res)
		}
	}
	return changes, nil
}

// AutoUnlockPaths evaluates the given still-locked paths and unlocks those
// that qualify. A nil slice means every path in the catalog, in dependency
// order.
func (r *Resolver) AutoUnlockPaths(cat *catalog.Catalog, prog ProgressReader, pathIDs []string) ([]Result, error) {
	if pathIDs == nil {
		for _, p := range cat.TopologicalPaths() {
			pathIDs = append(pathIDs, p.ID)
		}
	}
	var changes []Result
	for _, id := range pathIDs {
		if r.paths[id] {
			continue
		}
		res, err := r.UnlockPath(cat, prog, id)
		if err != nil {
			return changes, err
		}
		if res.NewlyUnlocked {
			changes = append(changes, res)
		}
	}
	return changes, nil
}

// IsModuleUnlocked reports whether a module is in the unlocked set.
func (r *Resolver) IsModuleUnlocked(moduleID string) bool {
	return r.modules[moduleID]
}

// IsPathUnlocked reports whether a path is in the unlocked set.
func (r *Resolver) IsPathUnlocked(pathID string) bool {
	return r.paths[pathID]
}

// State exports the unlocked sets, sorted.
func (r *Resolver) State() State {
	return State{
		Modules: slices.Sorted(maps.Keys(r.modules)),
		Paths:   slices.Sorted(maps.Keys(r.paths)),
	}
}

// Restore replaces the unlocked sets.
func (r *Resolver) Restore(s State) {
	r.Reset()
	for _, id := range s.Modules {
		r.modules[id] = true
	}
	for _, id := range s.Paths {
		r.paths[id] = true
	}
}

// Reset clears both unlocked sets.
func (r *Resolver) Reset() {
	r.modules = make(map[string]bool)
	r.paths = make(map[string]bool)
}
