package components

import (
	"github.com/pastrypath/pastrypath/internal/achievements"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

// StatusBadge renders a progress status with its icon.
func StatusBadge(s progress.Status) string {
	label := s.Icon() + " " + s.Label()
	switch s {
	case progress.StatusCompleted:
		return theme.Done.Render(label)
	case progress.StatusInProgress:
		return theme.Active.Render(label)
	default:
		return theme.Locked.Render(label)
	}
}

// LockBadge renders an unlock flag.
func LockBadge(unlocked bool) string {
	if unlocked {
		return theme.Done.Render("open")
	}
	return theme.Locked.Render("locked")
}

// RarityBadge renders a rarity tier.
func RarityBadge(r achievements.Rarity) string {
	label := r.Icon() + " " + r.DisplayName()
	switch r {
	case achievements.RarityLegendary, achievements.RarityEpic:
		return theme.Active.Render(label)
	default:
		return theme.Body.Render(label)
	}
}
