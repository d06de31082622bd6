package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/engine"
	"github.com/pastrypath/pastrypath/internal/progress"
	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Record progress on a module",
}

var moduleStartCmd = &cobra.Command{
	Use:   "start <path> <module>",
	Short: "Start a module (counts an attempt)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			out, err := a.engine.StartModule(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printOutcome(out)
		})
	},
}

var moduleUpdateCmd = &cobra.Command{
	Use:   "update <path> <module>",
	Short: "Update completion, time, attempts or score of a module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u progress.ModuleUpdate
		flags := cmd.Flags()
		if flags.Changed("percent") {
			v, _ := flags.GetFloat64("percent")
			u.CompletionPercentage = &v
		}
		if flags.Changed("time") {
			v, _ := flags.GetInt("time")
			u.TimeSpentMinutes = &v
		}
		if flags.Changed("attempts") {
			v, _ := flags.GetInt("attempts")
			u.Attempts = &v
		}
		if flags.Changed("score") {
			v, _ := flags.GetFloat64("score")
			u.Score = &v
		}
		if u == (progress.ModuleUpdate{}) {
			return fmt.Errorf("nothing to update: pass --percent, --time, --attempts or --score")
		}

		return withApp(cmd, func(a *app) error {
			out, err := a.engine.UpdateModule(cmd.Context(), args[0], args[1], u)
			if err != nil {
				return err
			}
			return a.printOutcome(out)
		})
	},
}

var moduleCompleteCmd = &cobra.Command{
	Use:   "complete <path> <module>",
	Short: "Mark a module complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var score *float64
		if cmd.Flags().Changed("score") {
			v, _ := cmd.Flags().GetFloat64("score")
			score = &v
		}
		return withApp(cmd, func(a *app) error {
			out, err := a.engine.CompleteModule(cmd.Context(), args[0], args[1], score)
			if err != nil {
				return err
			}
			return a.printOutcome(out)
		})
	},
}

var moduleResetCmd = &cobra.Command{
	Use:   "reset <path> <module>",
	Short: "Mark a module not started (unlocks are kept)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			out, err := a.engine.UncompleteModule(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printOutcome(out)
		})
	},
}

var moduleTimeCmd = &cobra.Command{
	Use:   "time <path> <module> <minutes>",
	Short: "Add practice minutes to a module",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var minutes int
		if _, err := fmt.Sscanf(args[2], "%d", &minutes); err != nil {
			return fmt.Errorf("minutes must be a whole number: %q", args[2])
		}
		return withApp(cmd, func(a *app) error {
			out, err := a.engine.RecordTime(cmd.Context(), args[0], args[1], minutes)
			if err != nil {
				return err
			}
			return a.printOutcome(out)
		})
	},
}

func init() {
	moduleUpdateCmd.Flags().Float64("percent", 0, "Completion percentage (0-100)")
	moduleUpdateCmd.Flags().Int("time", 0, "Total minutes spent")
	moduleUpdateCmd.Flags().Int("attempts", 0, "Number of attempts")
	moduleUpdateCmd.Flags().Float64("score", 0, "Score (0-100)")
	moduleCompleteCmd.Flags().Float64("score", 0, "Score (0-100)")

	moduleCmd.AddCommand(moduleStartCmd)
	moduleCmd.AddCommand(moduleUpdateCmd)
	moduleCmd.AddCommand(moduleCompleteCmd)
	moduleCmd.AddCommand(moduleResetCmd)
	moduleCmd.AddCommand(moduleTimeCmd)
}

// printOutcome summarizes what an update changed.
func (a *app) printOutcome(out engine.Outcome) error {
	if ok, err := a.emit(out); ok {
		return err
	}

	a.printf("%s  %s  %.0f%%\n", theme.Title.Render(out.Module.ModuleID), components.StatusBadge(out.Module.Status), out.Module.CompletionPercentage)
	a.println(components.NewProgressBar(out.Path.PathID, out.Path.CompletionPercentage, true, 60).View())

	for _, r := range out.Unlocked {
		a.println(theme.Done.Render("🔓 Unlocked " + r.ID))
	}
	for _, it := range out.Achievements {
		a.printf("%s %s  %s  +%d pts\n", theme.Active.Render("🏅 "+it.Title), it.Icon, components.RarityBadge(it.Rarity), it.Points)
	}
	if out.Stats.CurrentStreak > 0 {
		a.println(theme.Hint.Render(fmt.Sprintf("Streak: %d day(s), next milestone at %d", out.Stats.CurrentStreak, out.Stats.NextStreakMilestone)))
	}
	return nil
}
