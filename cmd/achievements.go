package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/achievements"
	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		return withApp(cmd, func(a *app) error {
			var items []achievements.Item
			for _, it := range a.engine.Achievements() {
				if kind == "" || string(it.Kind) == kind {
					items = append(items, it)
				}
			}
			if ok, err := a.emit(items); ok {
				return err
			}

			a.printHeader(cmd, "Achievements")
			rows := make([][]string, 0, len(items))
			earned := 0
			for _, it := range items {
				state := components.NewProgressBar("", it.Progress, true, 18).View()
				switch {
				case it.IsUnlocked:
					earned++
					state = theme.Done.Render("✓ earned")
					if it.UnlockedAt != nil {
						state = theme.Done.Render("✓ " + it.UnlockedAt.Local().Format("2006-01-02"))
					}
				case it.Gated:
					state = theme.Locked.Render("🔒 needs earlier awards")
				}
				rows = append(rows, []string{
					it.Icon + " " + it.Title,
					it.Description,
					components.RarityBadge(it.Rarity),
					fmt.Sprintf("%d", it.Points),
					state,
				})
			}
			a.println(components.Table([]string{"Award", "Requirement", "Rarity", "Pts", "Progress"}, rows))
			a.println(theme.Hint.Render(fmt.Sprintf("%d of %d earned", earned, len(items))))
			return nil
		})
	},
}

func init() {
	achievementsCmd.Flags().String("kind", "", "Only show this kind (achievement or badge)")
}
