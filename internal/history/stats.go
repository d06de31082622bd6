package history

import (
	"cmp"
	"slices"
	"time"

	"github.com/pastrypath/pastrypath/internal/progress"
)

// Stats is the rollup of the event log and progress records.
type Stats struct {
	TotalModulesCompleted int         `json:"totalModulesCompleted"`
	TotalPathsCompleted   int         `json:"totalPathsCompleted"`
	TotalTimeSpentMinutes int         `json:"totalTimeSpentMinutes"`
	AverageScore          float64     `json:"averageScore"`
	CurrentStreak         int         `json:"currentStreak"`
	LongestStreak         int         `json:"longestStreak"`
	NextStreakMilestone   int         `json:"nextStreakMilestone"`
	LastActivity          time.Time   `json:"lastActivity,omitzero"`
	Milestones            []Milestone `json:"milestones"`
}

// ComputeStats derives totals from the progress records and streaks from
// the event log. The average score is the unweighted mean over modules that
// have a score.
func ComputeStats(events []Event, modules []progress.ModuleProgress, paths []progress.PathProgress, now time.Time) Stats {
	var s Stats

	var scoreSum float64
	scored := 0
	for _, m := range modules {
		if m.IsCompleted() {
			s.TotalModulesCompleted++
		}
		s.TotalTimeSpentMinutes += m.TimeSpentMinutes
		if m.Score != nil {
			scoreSum += *m.Score
			scored++
		}
	}
	if scored > 0 {
		s.AverageScore = scoreSum / float64(scored)
	}

	for _, p := range paths {
		if p.IsCompleted() {
			s.TotalPathsCompleted++
		}
	}

	for _, e := range events {
		if e.Timestamp.After(s.LastActivity) {
			s.LastActivity = e.Timestamp
		}
	}

	s.CurrentStreak = CalculateCurrentStreak(events, now)
	// Longest streak is not tracked historically; it mirrors the current one.
	s.LongestStreak = s.CurrentStreak
	s.NextStreakMilestone = NextStreakMilestone(s.CurrentStreak)
	s.Milestones = reachedMilestones(s)
	return s
}

// CalculateCurrentStreak counts consecutive activity days ending today.
//
// Distinct activity days are walked newest first against a cursor that
// starts at today and moves back one day per counted day. A day counts when
// it is at most one day before the cursor, so a single missed day does not
// break the streak; the walk stops at the first larger gap.
func CalculateCurrentStreak(events []Event, now time.Time) int {
	if len(events) == 0 {
		return 0
	}

	loc := now.Location()
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, e := range events {
		d := civilDay(e.Timestamp.In(loc))
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	cursor := civilDay(now)
	streak := 0
	for _, d := range days {
		if daysBetween(d, cursor) > 1 {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// civilDay maps t to midnight UTC of its calendar date in t's location, so
// day arithmetic is immune to DST shifts.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns how many whole days a is before b.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// CompletedModules replays the log and returns every module that has a
// completion event.
func CompletedModules(events []Event) map[string]bool {
	result := make(map[string]bool)
	for _, e := range events {
		if e.Type == ModuleCompleted && e.ModuleID != "" {
			result[e.ModuleID] = true
		}
	}
	return result
}

// Recent returns up to n events, newest first.
func Recent(events []Event, n int) []Event {
	result := slices.Clone(events)
	slices.SortStableFunc(result, func(a, b Event) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.Sequence, a.Sequence)
	})
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}
