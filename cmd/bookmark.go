package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/ui/components"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarked modules",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <module> [note...]",
	Short: "Bookmark a module",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			b, err := a.engine.AddBookmark(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if ok, err := a.emit(b); ok {
				return err
			}
			a.println(theme.Done.Render("🔖 Bookmarked " + b.ModuleID))
			return nil
		})
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <module>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if a.engine.RemoveBookmark(cmd.Context(), args[0]) {
				a.println(theme.Done.Render("Removed bookmark " + args[0]))
			} else {
				a.println(theme.Hint.Render(args[0] + " was not bookmarked"))
			}
			return nil
		})
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			list := a.engine.Bookmarks()
			if ok, err := a.emit(list); ok {
				return err
			}
			if len(list) == 0 {
				a.println(theme.Hint.Render("No bookmarks yet."))
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, b := range list {
				rows = append(rows, []string{b.ModuleID, b.PathID, b.Note, b.CreatedAt.Local().Format("2006-01-02")})
			}
			a.println(components.Table([]string{"Module", "Path", "Note", "Saved"}, rows))
			return nil
		})
	},
}

func init() {
	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
	bookmarkCmd.AddCommand(bookmarkListCmd)
}
