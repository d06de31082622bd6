package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/history"
	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the completion event log",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent completion events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		eventType, _ := cmd.Flags().GetString("type")
		if eventType != "" && !history.EventType(eventType).Valid() {
			return fmt.Errorf("unknown event type %q", eventType)
		}

		return withApp(cmd, func(a *app) error {
			var events []history.Event
			for _, e := range a.engine.RecentEvents(cmd.Context(), 0) {
				if eventType != "" && string(e.Type) != eventType {
					continue
				}
				events = append(events, e)
				if limit > 0 && len(events) == limit {
					break
				}
			}
			if ok, err := a.emit(events); ok {
				return err
			}

			if len(events) == 0 {
				a.println(theme.Hint.Render("No events found."))
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, e := range events {
				score := "-"
				if e.Score != nil {
					score = fmt.Sprintf("%.0f", *e.Score)
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", e.Sequence),
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					string(e.Type),
					e.PathID,
					e.ModuleID,
					score,
				})
			}
			a.println(components.Table([]string{"Seq", "Time", "Type", "Path", "Module", "Score"}, rows))
			a.println(theme.Hint.Render(fmt.Sprintf("%d events", len(events))))
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every completion event (progress records are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear history without --yes")
		}
		return withApp(cmd, func(a *app) error {
			if err := a.engine.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			a.println(theme.Done.Render("History cleared."))
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of events to show (0 for all)")
	historyListCmd.Flags().String("type", "", "Only show events of this type (e.g. module_completed)")
	historyClearCmd.Flags().Bool("yes", false, "Confirm deletion")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
