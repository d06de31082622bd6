package catalog

// Level is the skill level of a path, also used as the difficulty scale of
// individual modules.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// AllLevels returns all levels from lowest to highest.
func AllLevels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Rank returns the ordinal position of the level, or -1 if unknown.
func (l Level) Rank() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	default:
		return -1
	}
}

// DisplayName returns a human-readable label for the level.
func (l Level) DisplayName() string {
	switch l {
	case LevelBeginner:
		return "Beginner"
	case LevelIntermediate:
		return "Intermediate"
	case LevelAdvanced:
		return "Advanced"
	default:
		return string(l)
	}
}

// Difficulty is the effort rating of a path.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank returns the ordinal position of the difficulty, or -1 if unknown.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return -1
	}
}

// ModuleType is the kind of content a module delivers.
type ModuleType string

const (
	ModuleLesson   ModuleType = "lesson"
	ModuleVideo    ModuleType = "video"
	ModulePractice ModuleType = "practice"
	ModuleQuiz     ModuleType = "quiz"
)

func (t ModuleType) valid() bool {
	switch t {
	case ModuleLesson, ModuleVideo, ModulePractice, ModuleQuiz:
		return true
	}
	return false
}

// DurationBucket is a coarse grouping of path durations.
type DurationBucket string

const (
	DurationShort  DurationBucket = "short"  // under 2 hours
	DurationMedium DurationBucket = "medium" // under 8 hours
	DurationLong   DurationBucket = "long"
)

// Rank returns the ordinal position of the bucket, or -1 if unknown.
func (b DurationBucket) Rank() int {
	switch b {
	case DurationShort:
		return 0
	case DurationMedium:
		return 1
	case DurationLong:
		return 2
	default:
		return -1
	}
}

// BucketFor maps a duration in minutes to its bucket.
func BucketFor(minutes int) DurationBucket {
	switch {
	case minutes < 120:
		return DurationShort
	case minutes < 480:
		return DurationMedium
	default:
		return DurationLong
	}
}

// Module is the smallest unit of content with its own progress and
// prerequisites.
type Module struct {
	ID               string     `yaml:"id" json:"id"`
	Title            string     `yaml:"title" json:"title"`
	Prerequisites    []string   `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Difficulty       Level      `yaml:"difficulty" json:"difficulty"`
	EstimatedMinutes int        `yaml:"estimated_minutes" json:"estimatedMinutes"`
	Type             ModuleType `yaml:"type" json:"type"`
}

// Path is a curated sequence of modules representing one learning journey.
type Path struct {
	ID              string     `yaml:"id" json:"id"`
	Title           string     `yaml:"title" json:"title"`
	Description     string     `yaml:"description,omitempty" json:"description,omitempty"`
	Category        string     `yaml:"category" json:"category"`
	Level           Level      `yaml:"level" json:"level"`
	Difficulty      Difficulty `yaml:"difficulty" json:"difficulty"`
	DurationMinutes int        `yaml:"duration_minutes" json:"durationMinutes"`
	Tags            []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	StudentCount    int        `yaml:"student_count" json:"studentCount"`
	Rating          float64    `yaml:"rating" json:"rating"`
	Modules         []Module   `yaml:"modules" json:"modules"`
	Prerequisites   []string   `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
}

// Duration returns the coarse duration bucket of the path.
func (p Path) Duration() DurationBucket {
	return BucketFor(p.DurationMinutes)
}

// ModuleIDs returns the ids of the path's modules in path order.
func (p Path) ModuleIDs() []string {
	ids := make([]string, len(p.Modules))
	for i, m := range p.Modules {
		ids[i] = m.ID
	}
	return ids
}
