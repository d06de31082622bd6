package history

import "fmt"

// MilestoneKind groups milestones by the statistic they track.
type MilestoneKind string

const (
	MilestoneModules MilestoneKind = "modules"
	MilestonePaths   MilestoneKind = "paths"
	MilestoneStreak  MilestoneKind = "streak"
	MilestoneTime    MilestoneKind = "time"
)

// Milestone is a round-number threshold the learner has reached.
type Milestone struct {
	Kind      MilestoneKind `json:"kind"`
	Threshold int           `json:"threshold"`
	Label     string        `json:"label"`
}

var milestoneLadders = []struct {
	kind       MilestoneKind
	thresholds []int
	label      string
}{
	{MilestoneModules, []int{1, 5, 10, 25, 50, 100}, "%d modules completed"},
	{MilestonePaths, []int{1, 3, 5, 10}, "%d paths completed"},
	{MilestoneStreak, []int{3, 7, 14, 30, 60, 100}, "%d-day streak"},
	{MilestoneTime, []int{60, 300, 600, 1200, 3000}, "%d minutes of practice"},
}

func reachedMilestones(s Stats) []Milestone {
	values := map[MilestoneKind]int{
		MilestoneModules: s.TotalModulesCompleted,
		MilestonePaths:   s.TotalPathsCompleted,
		MilestoneStreak:  s.CurrentStreak,
		MilestoneTime:    s.TotalTimeSpentMinutes,
	}
	result := []Milestone{}
	for _, ladder := range milestoneLadders {
		for _, th := range ladder.thresholds {
			if values[ladder.kind] < th {
				break
			}
			result = append(result, Milestone{
				Kind:      ladder.kind,
				Threshold: th,
				Label:     fmt.Sprintf(ladder.label, th),
			})
		}
	}
	return result
}

// NextStreakMilestone returns the next streak milestone above the current
// streak length.
func NextStreakMilestone(current int) int {
	thresholds := []int{3, 7, 14, 30, 60, 100}
	for _, t := range thresholds {
		if t > current {
			return t
		}
	}
	// Beyond 100, every 50 days.
	return ((current / 50) + 1) * 50
}
