package progress

// Status represents a module's or path's position in the completion lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusNotStarted:
		return "○"
	case StatusInProgress:
		return "◐"
	case StatusCompleted:
		return "●"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// statusFor applies the percentage threshold rule shared by modules and paths.
func statusFor(pct float64, current Status) Status {
	switch {
	case pct >= 100:
		return StatusCompleted
	case pct > 0:
		return StatusInProgress
	case current == StatusCompleted:
		return StatusNotStarted
	default:
		return current
	}
}
