package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			stats := a.engine.Stats(cmd.Context())
			lvl := a.engine.Level()
			if ok, err := a.emit(map[string]any{"stats": stats, "level": lvl}); ok {
				return err
			}

			a.printHeader(cmd, "Statistics")
			a.println(components.Table([]string{"Metric", "Value"}, [][]string{
				{"Modules completed", fmt.Sprintf("%d", stats.TotalModulesCompleted)},
				{"Paths completed", fmt.Sprintf("%d", stats.TotalPathsCompleted)},
				{"Time spent", fmt.Sprintf("%d min", stats.TotalTimeSpentMinutes)},
				{"Average score", fmt.Sprintf("%.1f", stats.AverageScore)},
				{"Current streak", fmt.Sprintf("%d day(s)", stats.CurrentStreak)},
				{"Next streak milestone", fmt.Sprintf("%d day(s)", stats.NextStreakMilestone)},
			}))

			levelLabel := fmt.Sprintf("Level %d %s", lvl.Number, lvl.Title)
			a.println(components.NewProgressBar(levelLabel, lvl.Progress, true, 60).View())
			if lvl.NextLevelPoints > 0 {
				a.println(theme.Hint.Render(fmt.Sprintf("%d / %d points to the next level", lvl.Points, lvl.NextLevelPoints)))
			}

			if len(stats.Milestones) > 0 {
				a.println()
				a.println(theme.Title.Render("Milestones"))
				for _, m := range stats.Milestones {
					a.println("  " + theme.Done.Render("★") + " " + m.Label)
				}
			}
			return nil
		})
	},
}
