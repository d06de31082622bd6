package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/progress"
)

// Component weights of the recommendation score.
const (
	WeightSkill      = 0.40
	WeightInterest   = 0.25
	WeightDifficulty = 0.15
	WeightDuration   = 0.10
	WeightPopularity = 0.05
	WeightProgress   = 0.05
)

// DefaultPopularityCeiling is the student count that maps to full popularity.
const DefaultPopularityCeiling = 10000

// Filter multipliers. Filtered paths are ranked lower, never dropped.
const (
	levelMismatchFactor      = 0.5
	difficultyMismatchFactor = 0.7
	categoryMismatchFactor   = 0.3
	lowRatingFactor          = 0.3
)

// Breakdown holds the unweighted match components of a score.
type Breakdown struct {
	Skill      float64 `json:"skill"`
	Interest   float64 `json:"interest"`
	Difficulty float64 `json:"difficulty"`
	Duration   float64 `json:"duration"`
	Popularity float64 `json:"popularity"`
	Progress   float64 `json:"progress"`
}

// Weighted returns the weighted sum of the components, clamped to [0,1].
func (b Breakdown) Weighted() float64 {
	return clamp01(WeightSkill*b.Skill +
		WeightInterest*b.Interest +
		WeightDifficulty*b.Difficulty +
		WeightDuration*b.Duration +
		WeightPopularity*b.Popularity +
		WeightProgress*b.Progress)
}

// Filters narrow recommendations by multiplying mismatching scores down.
// Zero values disable a filter.
type Filters struct {
	Level      catalog.Level
	Difficulty catalog.Difficulty
	Category   string
	MinRating  float64
}

// Options configures Recommend.
type Options struct {
	Limit             int // 0 = all paths
	Filters           Filters
	PopularityCeiling int
}

// Recommendation is one ranked path.
type Recommendation struct {
	Path       catalog.Path `json:"path"`
	Score      float64      `json:"score"`
	Breakdown  Breakdown    `json:"breakdown"`
	Multiplier float64      `json:"multiplier"`
	Reasons    []string     `json:"reasons"`
}

// ProgressLookup reads path rollups. *progress.Store satisfies it.
type ProgressLookup interface {
	PathProgress(pathID string) (progress.PathProgress, bool)
}

// Recommend scores every catalog path against prof and returns them sorted
// by descending score, ties by path id, capped to opts.Limit.
func Recommend(cat *catalog.Catalog, prof Profile, prog ProgressLookup, opts Options) []Recommendation {
	ceiling := opts.PopularityCeiling
	if ceiling <= 0 {
		ceiling = DefaultPopularityCeiling
	}

	var recs []Recommendation
	for _, p := range cat.Paths() {
		b := ScorePath(p, prof, prog, ceiling)
		mult := filterMultiplier(p, opts.Filters)
		recs = append(recs, Recommendation{
			Path:       p,
			Score:      clamp01(b.Weighted() * mult),
			Breakdown:  b,
			Multiplier: mult,
			Reasons:    reasons(p, prof, b),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Path.ID < recs[j].Path.ID
	})
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs
}

// ScorePath computes the match components of one path.
func ScorePath(p catalog.Path, prof Profile, prog ProgressLookup, ceiling int) Breakdown {
	b := Breakdown{
		Skill:      tierMatch(prof.SkillLevel.Rank(), p.Level.Rank()),
		Interest:   interestMatch(prof.Interests, p.Tags),
		Difficulty: 0.5,
		Duration:   0.5,
		Popularity: popularity(p.StudentCount, ceiling),
		Progress:   progressBonus(prog, p.ID),
	}
	if prof.PreferredDifficulty != "" {
		b.Difficulty = tierMatch(prof.PreferredDifficulty.Rank(), p.Difficulty.Rank())
	}
	if prof.PreferredDuration != "" {
		b.Duration = tierMatch(prof.PreferredDuration.Rank(), p.Duration().Rank())
	}
	return b
}

// tierMatch scores a candidate rank against the learner's: exact 1.0, one
// below 0.8 (review), one above 0.6 (stretch), otherwise 0.2.
func tierMatch(learner, candidate int) float64 {
	switch candidate - learner {
	case 0:
		return 1.0
	case -1:
		return 0.8
	case 1:
		return 0.6
	default:
		return 0.2
	}
}

// interestMatch is the tag overlap normalized by the larger tag set; 0.5
// when the learner has no interests yet.
func interestMatch(interests, tags []string) float64 {
	if len(interests) == 0 {
		return 0.5
	}
	want := make(map[string]bool, len(interests))
	for _, t := range interests {
		want[strings.ToLower(t)] = true
	}
	norm := normalizeTags(tags)
	overlap := 0
	for _, t := range norm {
		if want[t] {
			overlap++
		}
	}
	return float64(overlap) / float64(max(len(interests), len(norm)))
}

func popularity(students, ceiling int) float64 {
	if students <= 0 {
		return 0
	}
	return min(1, float64(students)/float64(ceiling))
}

// progressBonus favors finishing started paths: 0.9 started, 0.3 completed,
// 0.5 untouched.
func progressBonus(prog ProgressLookup, pathID string) float64 {
	if prog == nil {
		return 0.5
	}
	rec, ok := prog.PathProgress(pathID)
	switch {
	case !ok:
		return 0.5
	case rec.IsCompleted():
		return 0.3
	case rec.Status == progress.StatusInProgress || rec.CompletionPercentage > 0:
		return 0.9
	default:
		return 0.5
	}
}

func filterMultiplier(p catalog.Path, f Filters) float64 {
	mult := 1.0
	if f.Level != "" && p.Level != f.Level {
		mult *= levelMismatchFactor
	}
	if f.Difficulty != "" && p.Difficulty != f.Difficulty {
		mult *= difficultyMismatchFactor
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		mult *= categoryMismatchFactor
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		mult *= lowRatingFactor
	}
	return mult
}

// reasons explains a recommendation from its strong components. They are
// display text only and do not feed back into the score.
func reasons(p catalog.Path, prof Profile, b Breakdown) []string {
	var out []string
	switch b.Skill {
	case 1.0:
		out = append(out, fmt.Sprintf("Matches your %s skill level", prof.SkillLevel.DisplayName()))
	case 0.8:
		out = append(out, "Good review of a level you have passed")
	case 0.6:
		out = append(out, "A step up from your current level")
	}
	if prof.HasInterests() && b.Interest > 0 {
		var shared []string
		want := make(map[string]bool)
		for _, t := range prof.Interests {
			want[t] = true
		}
		for _, t := range normalizeTags(p.Tags) {
			if want[t] {
				shared = append(shared, t)
			}
		}
		out = append(out, "Covers your interests: "+strings.Join(shared, ", "))
	}
	if prof.PreferredDifficulty != "" && b.Difficulty == 1.0 {
		out = append(out, "Matches your preferred difficulty")
	}
	if prof.PreferredDuration != "" && b.Duration == 1.0 {
		out = append(out, "Fits your usual time commitment")
	}
	if b.Popularity >= 0.5 {
		out = append(out, fmt.Sprintf("Popular with %d students", p.StudentCount))
	}
	if p.Rating >= 4.5 {
		out = append(out, fmt.Sprintf("Highly rated (%.1f)", p.Rating))
	}
	switch b.Progress {
	case 0.9:
		out = append(out, "You have already started this path")
	case 0.3:
		out = append(out, "Already completed")
	}
	if len(out) == 0 {
		out = append(out, "Broadens your pastry skills")
	}
	return out
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
