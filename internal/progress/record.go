package progress

import (
	"slices"
	"time"
)

// ModuleProgress holds the learner's progress on a single module.
type ModuleProgress struct {
	ModuleID             string     `json:"moduleId"`
	PathID               string     `json:"pathId"`
	Status               Status     `json:"status"`
	CompletionPercentage float64    `json:"completionPercentage"`
	TimeSpentMinutes     int        `json:"timeSpentMinutes"`
	Attempts             int        `json:"attempts"`
	Score                *float64   `json:"score,omitempty"`
	StartedAt            *time.Time `json:"startedAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	LastAccessedAt       time.Time  `json:"lastAccessedAt"`
}

// IsCompleted reports whether the module is completed.
func (m ModuleProgress) IsCompleted() bool {
	return m.Status == StatusCompleted
}

func (m ModuleProgress) clone() ModuleProgress {
	c := m
	c.Score = clonePtr(m.Score)
	c.StartedAt = clonePtr(m.StartedAt)
	c.CompletedAt = clonePtr(m.CompletedAt)
	return c
}

// PathProgress is the rollup of a path's module records. It is always
// recomputed from scratch, never incrementally maintained.
type PathProgress struct {
	PathID               string    `json:"pathId"`
	Status               Status    `json:"status"`
	CompletionPercentage float64   `json:"completionPercentage"`
	CompletedModuleIDs   []string  `json:"completedModuleIds"`
	CurrentModuleID      string    `json:"currentModuleId,omitempty"`
	TimeSpentMinutes     int       `json:"timeSpentMinutes"`
	Score                float64   `json:"score"`
	LastAccessedAt       time.Time `json:"lastAccessedAt"`
}

// IsCompleted reports whether the path is completed.
func (p PathProgress) IsCompleted() bool {
	return p.CompletionPercentage >= 100
}

// HasCompleted reports whether moduleID is in the completed set.
func (p PathProgress) HasCompleted(moduleID string) bool {
	_, found := slices.BinarySearch(p.CompletedModuleIDs, moduleID)
	return found
}

func (p PathProgress) clone() PathProgress {
	c := p
	c.CompletedModuleIDs = slices.Clone(p.CompletedModuleIDs)
	return c
}

// ModuleUpdate carries the fields to merge into a module record. Nil fields
// are left unchanged.
type ModuleUpdate struct {
	Status               *Status
	CompletionPercentage *float64
	TimeSpentMinutes     *int
	Attempts             *int
	Score                *float64
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v, for building ModuleUpdate literals.
func Ptr[T any](v T) *T {
	return &v
}
