package unlock

import "fmt"

// ConditionType identifies which gate an unlock condition represents.
type ConditionType string

const (
	ConditionModuleCompletion ConditionType = "module_completion"
	ConditionPathCompletion   ConditionType = "path_completion"
	ConditionScoreThreshold   ConditionType = "score_threshold"
	ConditionTimeSpent        ConditionType = "time_spent"
	ConditionAttempts         ConditionType = "attempts"
	ConditionCustom           ConditionType = "custom"
)

// Condition is one gate of an unlock decision. IsMet is captured when the
// check runs and does not track later progress changes.
type Condition struct {
	Type        ConditionType `json:"type"`
	TargetID    string        `json:"targetId,omitempty"`
	Value       float64       `json:"value,omitempty"`
	Actual      float64       `json:"actual,omitempty"`
	IsMet       bool          `json:"isMet"`
	Description string        `json:"description"`
}

func moduleCondition(id string, met bool) Condition {
	return Condition{
		Type:        ConditionModuleCompletion,
		TargetID:    id,
		IsMet:       met,
		Description: fmt.Sprintf("Complete module %q", id),
	}
}

func pathCondition(id string, pct float64) Condition {
	return Condition{
		Type:        ConditionPathCompletion,
		TargetID:    id,
		Value:       100,
		Actual:      pct,
		IsMet:       pct >= 100,
		Description: fmt.Sprintf("Complete path %q", id),
	}
}

// Check is the result of evaluating a module or path against its
// prerequisites. It is never persisted.
type Check struct {
	ID                       string      `json:"id"`
	IsUnlocked               bool        `json:"isUnlocked"`
	MissingPrerequisiteIDs   []string    `json:"missingPrerequisiteIds"`
	CompletedPrerequisiteIDs []string    `json:"completedPrerequisiteIds"`
	CanUnlock                bool        `json:"canUnlock"`
	Conditions               []Condition `json:"unlockConditions"`
}

// AllConditionsMet reports whether every condition of the check holds.
func (c Check) AllConditionsMet() bool {
	for _, cond := range c.Conditions {
		if !cond.IsMet {
			return false
		}
	}
	return true
}

func (c *Check) finish() {
	c.CanUnlock = len(c.MissingPrerequisiteIDs) == 0 && c.AllConditionsMet() && !c.IsUnlocked
}

// Result reports the outcome of an unlock attempt.
type Result struct {
	ID            string `json:"id"`
	NewlyUnlocked bool   `json:"newlyUnlocked"`
	Check         Check  `json:"check"`
}

// State is the persisted form of the unlock ratchet sets.
type State struct {
	Modules []string `json:"modules"`
	Paths   []string `json:"paths"`
}
