package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastrypath/pastrypath/internal/history"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func gatedDefs() []Definition {
	return []Definition{
		{ID: "child", Points: 20, Requirements: []Requirement{{Type: ReqModulesCompleted, Value: 1}}, Dependencies: []string{"parent"}},
		{ID: "parent", Points: 10, Requirements: []Requirement{{Type: ReqPathsCompleted, Value: 1}}},
	}
}

func TestNewEvaluator_Validation(t *testing.T) {
	tests := []struct {
		name string
		defs []Definition
		want string
	}{
		{"duplicate", []Definition{{ID: "a"}, {ID: "a"}}, "duplicate achievement ID"},
		{"unknown requirement", []Definition{{ID: "a", Requirements: []Requirement{{Type: "cakes_eaten", Value: 1}}}}, "unknown requirement type"},
		{"missing dependency", []Definition{{ID: "a", Dependencies: []string{"ghost"}}}, "nonexistent dependency"},
		{"cycle", []Definition{{ID: "a", Dependencies: []string{"b"}}, {ID: "b", Dependencies: []string{"a"}}}, "cycle detected"},
		{"empty id", []Definition{{Title: "nameless"}}, "empty ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvaluator(tt.defs, clock)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewEvaluator_DependencyOrder(t *testing.T) {
	e, err := NewEvaluator(gatedDefs(), clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "child"}, ids(e.Items()))
}

func TestDefaultDefinitionsAreValid(t *testing.T) {
	e, err := NewEvaluator(DefaultDefinitions(), clock)
	require.NoError(t, err)
	assert.Len(t, e.Items(), len(DefaultDefinitions()))
}

func TestEvaluate_DependencyGating(t *testing.T) {
	e, err := NewEvaluator(gatedDefs(), clock)
	require.NoError(t, err)

	// child's own requirement is met, but parent is still locked.
	unlocked := e.Evaluate(Metrics{ModulesCompleted: 3})
	assert.Empty(t, unlocked)

	child, ok := e.Item("child")
	require.True(t, ok)
	assert.False(t, child.IsUnlocked)
	assert.True(t, child.Gated)
	assert.Equal(t, 0.0, child.Progress)

	// Unlocking the parent lets the child through in the same call.
	unlocked = e.Evaluate(Metrics{ModulesCompleted: 3, PathsCompleted: 1})
	assert.Equal(t, []string{"parent", "child"}, ids(unlocked))

	child, _ = e.Item("child")
	assert.True(t, child.IsUnlocked)
	assert.False(t, child.Gated)
	require.NotNil(t, child.UnlockedAt)
	assert.Equal(t, fixedNow, *child.UnlockedAt)
}

func TestEvaluate_ProgressIsMeanOfCappedRequirements(t *testing.T) {
	e, err := NewEvaluator([]Definition{{
		ID: "combo",
		Requirements: []Requirement{
			{Type: ReqModulesCompleted, Value: 4},
			{Type: ReqStreakDays, Value: 2},
		},
	}}, clock)
	require.NoError(t, err)

	// 50% and a capped 100% average to 75%.
	assert.Empty(t, e.Evaluate(Metrics{ModulesCompleted: 2, StreakDays: 10}))
	it, _ := e.Item("combo")
	assert.InDelta(t, 75.0, it.Progress, 1e-9)
	assert.False(t, it.IsUnlocked)

	assert.Len(t, e.Evaluate(Metrics{ModulesCompleted: 4, StreakDays: 2}), 1)
}

func TestEvaluate_NoRequirementsUnlocksImmediately(t *testing.T) {
	e, err := NewEvaluator([]Definition{{ID: "welcome", Points: 5}}, clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"welcome"}, ids(e.Evaluate(Metrics{})))
}

func TestEvaluate_Monotonic(t *testing.T) {
	e, err := NewEvaluator(gatedDefs(), clock)
	require.NoError(t, err)

	e.Evaluate(Metrics{ModulesCompleted: 1, PathsCompleted: 1})
	assert.Equal(t, 30, e.Points())

	// Metrics regress; nothing relocks and nothing is reported again.
	assert.Empty(t, e.Evaluate(Metrics{}))
	for _, it := range e.Items() {
		assert.True(t, it.IsUnlocked, it.ID)
		assert.Equal(t, 100.0, it.Progress, it.ID)
	}

	e.Reset()
	assert.Equal(t, 0, e.Points())
	for _, it := range e.Items() {
		assert.False(t, it.IsUnlocked, it.ID)
	}
}

func TestEvaluate_PointsBadgesChain(t *testing.T) {
	e, err := NewEvaluator(DefaultDefinitions(), clock)
	require.NoError(t, err)

	// first-bake (10) + apprentice-baker (25) + path-finder (30) = 65 points,
	// enough for bronze-whisk (50) within the same evaluation.
	unlocked := e.Evaluate(Metrics{ModulesCompleted: 5, PathsCompleted: 1})
	got := ids(unlocked)
	assert.Contains(t, got, "first-bake")
	assert.Contains(t, got, "apprentice-baker")
	assert.Contains(t, got, "path-finder")
	assert.Contains(t, got, "bronze-whisk")
	assert.NotContains(t, got, "silver-whisk")
	assert.Equal(t, 70, e.Points())
}

func TestStateRestore(t *testing.T) {
	e, err := NewEvaluator(gatedDefs(), clock)
	require.NoError(t, err)
	e.Evaluate(Metrics{PathsCompleted: 1})

	st := e.State()
	assert.Contains(t, st.Items, "parent")

	other, err := NewEvaluator(gatedDefs(), clock)
	require.NoError(t, err)
	st.Items["retired"] = Status{IsUnlocked: true}
	other.Restore(st)

	parent, _ := other.Item("parent")
	assert.True(t, parent.IsUnlocked)
	_, ok := other.Item("retired")
	assert.False(t, ok)
	assert.Equal(t, 10, other.Points())
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points   int
		number   int
		title    string
		next     int
		progress float64
	}{
		{0, 1, "Apprentice", 50, 0},
		{25, 1, "Apprentice", 50, 50},
		{50, 2, "Commis", 150, 0},
		{1199, 6, "Pastry Chef", 1200, 99.75},
		{5000, 7, "Master Pâtissier", 0, 100},
	}
	for _, tt := range tests {
		lvl := LevelFor(tt.points)
		assert.Equal(t, tt.number, lvl.Number, "points %d", tt.points)
		assert.Equal(t, tt.title, lvl.Title, "points %d", tt.points)
		assert.Equal(t, tt.next, lvl.NextLevelPoints, "points %d", tt.points)
		assert.InDelta(t, tt.progress, lvl.Progress, 1e-9, "points %d", tt.points)
	}
}

func TestRarityForPoints(t *testing.T) {
	assert.Equal(t, RarityCommon, RarityForPoints(10))
	assert.Equal(t, RarityRare, RarityForPoints(25))
	assert.Equal(t, RarityEpic, RarityForPoints(75))
	assert.Equal(t, RarityLegendary, RarityForPoints(150))
	assert.Equal(t, "Epic", RarityEpic.DisplayName())
}

func TestMetricsFromStats(t *testing.T) {
	m := MetricsFromStats(history.Stats{
		TotalModulesCompleted: 4,
		TotalPathsCompleted:   1,
		TotalTimeSpentMinutes: 90,
		AverageScore:          87.5,
		CurrentStreak:         3,
	})
	assert.Equal(t, Metrics{ModulesCompleted: 4, PathsCompleted: 1, StreakDays: 3, TimeSpentMinutes: 90, AverageScore: 87.5}, m)
}
