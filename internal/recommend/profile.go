// Package recommend ranks learning paths against a learner profile derived
// from completed paths.
package recommend

import (
	"sort"
	"strings"

	"github.com/pastrypath/pastrypath/internal/catalog"
)

// MaxInterests caps the number of tags kept as learner interests.
const MaxInterests = 10

// Profile is derived fresh from completed paths on every request and never
// persisted.
type Profile struct {
	SkillLevel          catalog.Level          `json:"skillLevel"`
	PreferredDifficulty catalog.Difficulty     `json:"preferredDifficulty,omitempty"`
	PreferredDuration   catalog.DurationBucket `json:"preferredDuration,omitempty"`
	Interests           []string               `json:"interests"`
	CompletedPathIDs    []string               `json:"completedPathIds"`
}

// HasInterests reports whether any interest has been recorded yet.
func (p Profile) HasInterests() bool {
	return len(p.Interests) > 0
}

// BuildProfile derives a profile from the completed path ids. Unknown ids
// are ignored. With no completed paths the learner is a beginner with no
// preferences.
func BuildProfile(cat *catalog.Catalog, completedPathIDs []string) Profile {
	prof := Profile{
		SkillLevel:       catalog.LevelBeginner,
		Interests:        []string{},
		CompletedPathIDs: []string{},
	}

	difficulties := make(map[catalog.Difficulty]int)
	durations := make(map[catalog.DurationBucket]int)
	tags := make(map[string]int)

	for _, id := range completedPathIDs {
		p, err := cat.Path(id)
		if err != nil {
			continue
		}
		prof.CompletedPathIDs = append(prof.CompletedPathIDs, id)
		if p.Level.Rank() > prof.SkillLevel.Rank() {
			prof.SkillLevel = p.Level
		}
		difficulties[p.Difficulty]++
		durations[p.Duration()]++
		for _, tag := range normalizeTags(p.Tags) {
			tags[tag]++
		}
	}

	prof.PreferredDifficulty = mode(difficulties, catalog.Difficulty.Rank)
	prof.PreferredDuration = mode(durations, catalog.DurationBucket.Rank)
	prof.Interests = topTags(tags, MaxInterests)
	return prof
}

// mode returns the most frequent key; ties go to the lower rank. The zero
// value is returned for an empty map.
func mode[K comparable](counts map[K]int, rank func(K) int) K {
	var (
		best      K
		bestCount int
	)
	for k, n := range counts {
		if n > bestCount || (n == bestCount && rank(k) < rank(best)) {
			best, bestCount = k, n
		}
	}
	return best
}

func topTags(counts map[string]int, n int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// normalizeTags lowercases, trims and de-duplicates tags.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
