package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/catalog"
	"github.com/pastrypath/pastrypath/internal/recommend"
	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest learning paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		level, _ := cmd.Flags().GetString("level")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		category, _ := cmd.Flags().GetString("category")
		minRating, _ := cmd.Flags().GetFloat64("min-rating")

		filters := recommend.Filters{
			Level:      catalog.Level(level),
			Difficulty: catalog.Difficulty(difficulty),
			Category:   category,
			MinRating:  minRating,
		}
		if level != "" && filters.Level.Rank() < 0 {
			return fmt.Errorf("unknown level %q", level)
		}
		if difficulty != "" && filters.Difficulty.Rank() < 0 {
			return fmt.Errorf("unknown difficulty %q", difficulty)
		}

		return withApp(cmd, func(a *app) error {
			recs := a.engine.Recommend(limit, filters)
			if ok, err := a.emit(recs); ok {
				return err
			}

			a.printHeader(cmd, "Recommended for you")
			rows := make([][]string, 0, len(recs))
			for i, r := range recs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					r.Path.Title,
					r.Path.Level.DisplayName(),
					fmt.Sprintf("%.2f", r.Score),
					strings.Join(r.Reasons, "; "),
				})
			}
			a.println(components.Table([]string{"#", "Path", "Level", "Score", "Why"}, rows))
			if len(recs) > 0 {
				a.println(theme.Hint.Render("Start with: pastrypath progress " + recs[0].Path.ID))
			}
			return nil
		})
	},
}

func init() {
	recommendCmd.Flags().Int("limit", 5, "Number of paths to show (0 for all)")
	recommendCmd.Flags().String("level", "", "Prefer paths of this level")
	recommendCmd.Flags().String("difficulty", "", "Prefer paths of this difficulty")
	recommendCmd.Flags().String("category", "", "Prefer paths of this category")
	recommendCmd.Flags().Float64("min-rating", 0, "Prefer paths rated at least this")
}
