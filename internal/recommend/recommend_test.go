package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/progress"
)

func mod(id string) catalog.Module {
	return catalog.Module{ID: id, Title: id, Difficulty: catalog.LevelBeginner, EstimatedMinutes: 30, Type: catalog.ModuleLesson}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Path{
		{
			ID: "basics", Title: "Basics", Category: "foundations",
			Level: catalog.LevelBeginner, Difficulty: catalog.DifficultyEasy, DurationMinutes: 90,
			Tags: []string{"Dough", "basics"}, StudentCount: 8000, Rating: 4.7,
			Modules: []catalog.Module{mod("b1"), mod("b2")},
		},
		{
			ID: "truffles", Title: "Truffles", Category: "chocolate",
			Level: catalog.LevelIntermediate, Difficulty: catalog.DifficultyMedium, DurationMinutes: 200,
			Tags: []string{"chocolate", "cake"}, StudentCount: 2000, Rating: 4.2,
			Modules: []catalog.Module{mod("t1")},
		},
		{
			ID: "sugar", Title: "Sugar Work", Category: "confectionery",
			Level: catalog.LevelAdvanced, Difficulty: catalog.DifficultyHard, DurationMinutes: 600,
			Tags: []string{"sugar"}, StudentCount: 500, Rating: 3.9,
			Modules: []catalog.Module{mod("s1")},
		},
		{
			ID: "breads", Title: "Breads", Category: "foundations",
			Level: catalog.LevelBeginner, Difficulty: catalog.DifficultyEasy, DurationMinutes: 100,
			Tags: []string{"dough", "bread"}, StudentCount: 20000, Rating: 4.0,
			Modules: []catalog.Module{mod("r1"), mod("r2")},
		},
	})
	require.NoError(t, err)
	return cat
}

func TestScenario_SkillAndInterestContribution(t *testing.T) {
	prof := Profile{SkillLevel: catalog.LevelIntermediate, Interests: []string{"chocolate"}}
	p := catalog.Path{ID: "x", Level: catalog.LevelIntermediate, Difficulty: catalog.DifficultyMedium, Tags: []string{"chocolate", "cake"}}

	b := ScorePath(p, prof, nil, DefaultPopularityCeiling)
	assert.Equal(t, 1.0, b.Skill)
	assert.Equal(t, 0.5, b.Interest)
	assert.InDelta(t, 0.525, WeightSkill*b.Skill+WeightInterest*b.Interest, 1e-9)
}

func TestTierMatch(t *testing.T) {
	tests := []struct {
		learner, candidate int
		want               float64
	}{
		{1, 1, 1.0},
		{1, 0, 0.8},
		{1, 2, 0.6},
		{0, 2, 0.2},
		{2, 0, 0.2},
	}
	for _, tt := range tests {
		if got := tierMatch(tt.learner, tt.candidate); got != tt.want {
			t.Errorf("tierMatch(%d, %d) = %v, want %v", tt.learner, tt.candidate, got, tt.want)
		}
	}
}

func TestInterestMatch(t *testing.T) {
	assert.Equal(t, 0.5, interestMatch(nil, []string{"a"}))
	assert.Equal(t, 0.0, interestMatch([]string{"a"}, nil))
	assert.Equal(t, 1.0, interestMatch([]string{"a", "b"}, []string{"B", "a"}))
	assert.InDelta(t, 1.0/3.0, interestMatch([]string{"a", "b", "c"}, []string{"a"}), 1e-9)
}

func TestBuildProfile(t *testing.T) {
	cat := testCatalog(t)

	cold := BuildProfile(cat, nil)
	assert.Equal(t, catalog.LevelBeginner, cold.SkillLevel)
	assert.Empty(t, cold.PreferredDifficulty)
	assert.Empty(t, cold.PreferredDuration)
	assert.Empty(t, cold.Interests)

	prof := BuildProfile(cat, []string{"basics", "breads", "truffles", "ghost"})
	assert.Equal(t, catalog.LevelIntermediate, prof.SkillLevel)
	assert.Equal(t, catalog.DifficultyEasy, prof.PreferredDifficulty)
	assert.Equal(t, catalog.DurationShort, prof.PreferredDuration)
	assert.Equal(t, []string{"basics", "breads", "truffles"}, prof.CompletedPathIDs)
	// "dough" appears twice (case-insensitive); the rest once, alphabetically.
	assert.Equal(t, []string{"dough", "basics", "bread", "cake", "chocolate"}, prof.Interests)
}

func TestBuildProfile_InterestsCapped(t *testing.T) {
	var tags []string
	for i := 0; i < 15; i++ {
		tags = append(tags, string(rune('a'+i)))
	}
	cat, err := catalog.New([]catalog.Path{{
		ID: "wide", Title: "Wide", Level: catalog.LevelBeginner, Difficulty: catalog.DifficultyEasy, Tags: tags,
	}})
	require.NoError(t, err)

	prof := BuildProfile(cat, []string{"wide"})
	assert.Len(t, prof.Interests, MaxInterests)
}

func TestRecommend_RankingAndLimit(t *testing.T) {
	cat := testCatalog(t)
	prof := BuildProfile(cat, nil)

	recs := Recommend(cat, prof, nil, Options{})
	require.Len(t, recs, 4)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score, recs[i].Score)
	}
	// Beginner paths match a cold-start learner best; breads is more popular.
	assert.Equal(t, "breads", recs[0].Path.ID)
	assert.Equal(t, "basics", recs[1].Path.ID)
	assert.Equal(t, "sugar", recs[3].Path.ID)

	limited := Recommend(cat, prof, nil, Options{Limit: 2})
	assert.Len(t, limited, 2)
}

func TestRecommend_ScoresWithinUnitInterval(t *testing.T) {
	cat := testCatalog(t)
	for _, completed := range [][]string{nil, {"basics"}, {"sugar"}, {"basics", "truffles", "sugar"}} {
		prof := BuildProfile(cat, completed)
		for _, r := range Recommend(cat, prof, nil, Options{}) {
			assert.True(t, r.Score >= 0 && r.Score <= 1, "score %v out of range", r.Score)
			assert.False(t, math.IsNaN(r.Score))
			assert.NotEmpty(t, r.Reasons)
		}
	}
}

func TestRecommend_FiltersDemoteNotExclude(t *testing.T) {
	cat := testCatalog(t)
	prof := BuildProfile(cat, nil)

	recs := Recommend(cat, prof, nil, Options{Filters: Filters{Category: "Chocolate"}})
	require.Len(t, recs, 4)
	assert.Equal(t, "truffles", recs[0].Path.ID)
	for _, r := range recs {
		if r.Path.ID == "truffles" {
			assert.Equal(t, 1.0, r.Multiplier)
		} else {
			assert.Equal(t, 0.3, r.Multiplier)
		}
	}

	f := Filters{Level: catalog.LevelAdvanced, Difficulty: catalog.DifficultyHard, MinRating: 4.5}
	assert.InDelta(t, 0.3, filterMultiplier(cat.Paths()[2], f), 1e-9)     // sugar: rating only
	assert.InDelta(t, 0.5*0.7, filterMultiplier(cat.Paths()[0], f), 1e-9) // basics: level and difficulty
	assert.InDelta(t, 0.5*0.7*0.3, filterMultiplier(cat.Paths()[3], f), 1e-9)
}

func TestProgressBonus(t *testing.T) {
	cat := testCatalog(t)
	prog := progress.NewStore(cat, func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	prog.MarkModuleComplete("b1", "basics", nil)
	prog.MarkModuleComplete("t1", "truffles", nil)

	assert.Equal(t, 0.9, progressBonus(prog, "basics"))
	assert.Equal(t, 0.3, progressBonus(prog, "truffles"))
	assert.Equal(t, 0.5, progressBonus(prog, "sugar"))
	assert.Equal(t, 0.5, progressBonus(nil, "sugar"))
}

func TestPopularity(t *testing.T) {
	assert.Equal(t, 0.0, popularity(0, 100))
	assert.Equal(t, 0.5, popularity(50, 100))
	assert.Equal(t, 1.0, popularity(500, 100))
}
