// Package achievements evaluates declarative achievements and badges
// against aggregate learner statistics.
package achievements

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Evaluator holds the definitions, in dependency order, and the learner's
// status on each. Unlocks are monotonic until Reset.
type Evaluator struct {
	defs   []Definition
	byID   map[string]int
	status map[string]Status
	now    func() time.Time
}

// NewEvaluator validates defs and returns an evaluator with nothing unlocked.
func NewEvaluator(defs []Definition, now func() time.Time) (*Evaluator, error) {
	ordered, err := orderDefinitions(defs)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	e := &Evaluator{
		defs:   ordered,
		byID:   make(map[string]int, len(ordered)),
		status: make(map[string]Status, len(ordered)),
		now:    now,
	}
	for i, d := range ordered {
		e.byID[d.ID] = i
	}
	return e, nil
}

// orderDefinitions checks ids, requirement types and dependencies, and
// returns the definitions so that every item follows its dependencies
// (Kahn's algorithm, ties in declaration order).
func orderDefinitions(defs []Definition) ([]Definition, error) {
	var errs []string
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("definition %q has empty ID", d.Title))
			continue
		}
		if _, dup := index[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate achievement ID: %q", d.ID))
		}
		index[d.ID] = i
		for _, r := range d.Requirements {
			if !r.Type.valid() {
				errs = append(errs, fmt.Sprintf("achievement %q: unknown requirement type %q", d.ID, r.Type))
			}
		}
	}
	for _, d := range defs {
		for _, dep := range d.Dependencies {
			if _, ok := index[dep]; !ok {
				errs = append(errs, fmt.Sprintf("achievement %q references nonexistent dependency %q", d.ID, dep))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("achievement validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	inDegree := make([]int, len(defs))
	adj := make(map[int][]int)
	for i, d := range defs {
		for _, dep := range d.Dependencies {
			inDegree[i]++
			adj[index[dep]] = append(adj[index[dep]], i)
		}
	}
	var queue []int
	for i := range defs {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	var ordered []Definition
	for len(queue) > 0 {
		sort.Ints(queue)
		i := queue[0]
		queue = queue[1:]
		ordered = append(ordered, defs[i])
		for _, j := range adj[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	if len(ordered) < len(defs) {
		var cyclic []string
		for i, d := range defs {
			if inDegree[i] > 0 {
				cyclic = append(cyclic, d.ID)
			}
		}
		return nil, fmt.Errorf("cycle detected involving achievements: %s", strings.Join(cyclic, ", "))
	}
	return ordered, nil
}

// Evaluate measures every locked item against m and unlocks those reaching
// 100% whose dependencies are all unlocked. Passes repeat until nothing new
// unlocks, so dependents and points-based items unlocked by this call are
// picked up in the same call. It returns the newly unlocked items.
func (e *Evaluator) Evaluate(m Metrics) []Item {
	var unlocked []Item
	for {
		changed := false
		for _, d := range e.defs {
			st := e.status[d.ID]
			if st.IsUnlocked {
				continue
			}
			if !e.dependenciesMet(d) {
				e.status[d.ID] = Status{}
				continue
			}
			st.Progress = e.progress(d, m)
			if st.Progress >= 100 {
				at := e.now()
				st.IsUnlocked = true
				st.UnlockedAt = &at
				changed = true
				e.status[d.ID] = st
				unlocked = append(unlocked, e.item(d))
				continue
			}
			e.status[d.ID] = st
		}
		if !changed {
			return unlocked
		}
	}
}

func (e *Evaluator) dependenciesMet(d Definition) bool {
	for _, dep := range d.Dependencies {
		if !e.status[dep].IsUnlocked {
			return false
		}
	}
	return true
}

// progress is the mean of the per-requirement progress, each capped at 100.
// An item without requirements is complete.
func (e *Evaluator) progress(d Definition, m Metrics) float64 {
	if len(d.Requirements) == 0 {
		return 100
	}
	var sum float64
	for _, r := range d.Requirements {
		sum += requirementProgress(r, m, e.Points())
	}
	return sum / float64(len(d.Requirements))
}

func requirementProgress(r Requirement, m Metrics, points int) float64 {
	var actual float64
	switch r.Type {
	case ReqModulesCompleted:
		actual = float64(m.ModulesCompleted)
	case ReqPathsCompleted:
		actual = float64(m.PathsCompleted)
	case ReqStreakDays:
		actual = float64(m.StreakDays)
	case ReqTimeSpent:
		actual = float64(m.TimeSpentMinutes)
	case ReqAverageScore:
		actual = m.AverageScore
	case ReqPoints:
		actual = float64(points)
	}
	if r.Value <= 0 {
		return 100
	}
	return min(100, 100*actual/r.Value)
}

// Items returns every item in dependency order.
func (e *Evaluator) Items() []Item {
	items := make([]Item, len(e.defs))
	for i, d := range e.defs {
		items[i] = e.item(d)
	}
	return items
}

// Item returns a single item by id.
func (e *Evaluator) Item(id string) (Item, bool) {
	i, ok := e.byID[id]
	if !ok {
		return Item{}, false
	}
	return e.item(e.defs[i]), true
}

func (e *Evaluator) item(d Definition) Item {
	st := e.status[d.ID]
	if st.UnlockedAt != nil {
		at := *st.UnlockedAt
		st.UnlockedAt = &at
	}
	return Item{
		Definition: d,
		Status:     st,
		Rarity:     RarityForPoints(d.Points),
		Gated:      !st.IsUnlocked && !e.dependenciesMet(d),
	}
}

// Points returns the total points of unlocked items.
func (e *Evaluator) Points() int {
	total := 0
	for _, d := range e.defs {
		if e.status[d.ID].IsUnlocked {
			total += d.Points
		}
	}
	return total
}

// Level returns the learner's level for the current points.
func (e *Evaluator) Level() Level {
	return LevelFor(e.Points())
}

// State exports the status of every item that has progress.
func (e *Evaluator) State() State {
	s := State{Items: make(map[string]Status, len(e.status))}
	for id, st := range e.status {
		if st.IsUnlocked || st.Progress > 0 {
			s.Items[id] = st
		}
	}
	return s
}

// Restore replaces the statuses. Ids no longer defined are dropped.
func (e *Evaluator) Restore(s State) {
	e.Reset()
	for id, st := range s.Items {
		if _, ok := e.byID[id]; !ok {
			continue
		}
		if st.IsUnlocked {
			st.Progress = 100
		}
		e.status[id] = st
	}
}

// Reset locks every item again.
func (e *Evaluator) Reset() {
	e.status = make(map[string]Status, len(e.defs))
}
