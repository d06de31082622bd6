package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to reset without --yes")
		}
		return withApp(cmd, func(a *app) error {
			if err := a.engine.Reset(cmd.Context()); err != nil {
				return err
			}
			a.println(theme.Done.Render("All progress, unlocks, achievements, bookmarks and history were reset."))
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
