package achievements

import "time"

// Kind distinguishes achievements from badges. Both evaluate the same way.
type Kind string

const (
	KindAchievement Kind = "achievement"
	KindBadge       Kind = "badge"
)

// RequirementType names the statistic a requirement measures.
type RequirementType string

const (
	ReqModulesCompleted RequirementType = "modules_completed"
	ReqPathsCompleted   RequirementType = "paths_completed"
	ReqStreakDays       RequirementType = "streak_days"
	ReqTimeSpent        RequirementType = "time_spent_minutes"
	ReqAverageScore     RequirementType = "average_score"
	ReqPoints           RequirementType = "points"
)

func (t RequirementType) valid() bool {
	switch t {
	case ReqModulesCompleted, ReqPathsCompleted, ReqStreakDays, ReqTimeSpent, ReqAverageScore, ReqPoints:
		return true
	}
	return false
}

// Requirement is one target an item must reach.
type Requirement struct {
	Type  RequirementType `json:"type" yaml:"type"`
	Value float64         `json:"value" yaml:"value"`
}

// Definition declares an achievement or badge.
type Definition struct {
	ID           string        `json:"id" yaml:"id"`
	Kind         Kind          `json:"kind" yaml:"kind"`
	Title        string        `json:"title" yaml:"title"`
	Description  string        `json:"description" yaml:"description"`
	Icon         string        `json:"icon,omitempty" yaml:"icon,omitempty"`
	Points       int           `json:"points" yaml:"points"`
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
	Dependencies []string      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Status is the learner's standing on one item.
type Status struct {
	Progress   float64    `json:"progress"`
	IsUnlocked bool       `json:"isUnlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// Item joins a definition with the learner's status.
type Item struct {
	Definition
	Status
	Rarity Rarity `json:"rarity"`
	// Gated is true while a dependency is still locked.
	Gated bool `json:"gated"`
}

// Metrics are the aggregate statistics requirements are measured against.
type Metrics struct {
	ModulesCompleted int
	PathsCompleted   int
	StreakDays       int
	TimeSpentMinutes int
	AverageScore     float64
}

// State is the persisted form of the evaluator.
type State struct {
	Items map[string]Status `json:"items"`
}
