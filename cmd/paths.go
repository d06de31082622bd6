package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/engine"
	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/layout"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List learning paths with their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPaths(cmd)
	},
}

func runPaths(cmd *cobra.Command) error {
	return withApp(cmd, func(a *app) error {
		var overviews []engine.PathOverview
		for _, p := range a.engine.Catalog().TopologicalPaths() {
			ov, err := a.engine.Overview(p.ID)
			if err != nil {
				return err
			}
			overviews = append(overviews, ov)
		}
		if ok, err := a.emit(overviews); ok {
			return err
		}

		a.printHeader(cmd, "Learning paths")
		rows := make([][]string, 0, len(overviews))
		for _, ov := range overviews {
			p, _ := a.engine.Catalog().Path(ov.Path.PathID)
			rows = append(rows, []string{
				p.ID,
				p.Title,
				p.Level.DisplayName(),
				fmt.Sprintf("%d", len(p.Modules)),
				components.NewProgressBar("", ov.Path.CompletionPercentage, true, 20).View(),
				components.LockBadge(ov.IsUnlocked),
			})
		}
		a.println(components.Table([]string{"ID", "Title", "Level", "Modules", "Progress", "Access"}, rows))
		a.println(layout.RenderFooter([]layout.Hint{
			{Command: "pastrypath progress <path>", Description: "show modules of a path"},
			{Command: "pastrypath recommend", Description: "what to bake next"},
		}))
		return nil
	})
}

var progressCmd = &cobra.Command{
	Use:   "progress [path]",
	Short: "Show module progress for a path, or every path when none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runPaths(cmd)
		}
		return withApp(cmd, func(a *app) error {
			ov, err := a.engine.Overview(args[0])
			if err != nil {
				return err
			}
			if ok, err := a.emit(ov); ok {
				return err
			}

			a.printHeader(cmd, ov.Title)
			a.println(components.NewProgressBar(ov.Title, ov.Path.CompletionPercentage, true, layout.DefaultWidth).View())
			a.println()

			rows := make([][]string, 0, len(ov.Modules))
			for _, m := range ov.Modules {
				score := "-"
				if m.Score != nil {
					score = fmt.Sprintf("%.0f", *m.Score)
				}
				title := m.Title
				if m.Bookmarked {
					title += " 🔖"
				}
				rows = append(rows, []string{
					m.ModuleID,
					title,
					components.StatusBadge(m.Status),
					fmt.Sprintf("%.0f%%", m.CompletionPercentage),
					fmt.Sprintf("%dm", m.TimeSpentMinutes),
					score,
					components.LockBadge(m.IsUnlocked),
				})
			}
			a.println(components.Table([]string{"ID", "Module", "Status", "Done", "Time", "Score", "Access"}, rows))

			if ov.Path.CurrentModuleID != "" {
				a.println(theme.Hint.Render("Currently on " + ov.Path.CurrentModuleID))
			}
			return nil
		})
	},
}

// printHeader prints the framed header with points and streak.
func (a *app) printHeader(cmd *cobra.Command, title string) {
	stats := a.engine.Stats(cmd.Context())
	lvl := a.engine.Level()
	a.println(layout.RenderHeader(strings.TrimSpace(title), lvl.Points, stats.CurrentStreak, layout.DefaultWidth))
}
