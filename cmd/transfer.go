package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/engine"
	"github.com/pastrypath/pastrypath/internal/ui/theme"
)

func parseKind(s string) (engine.Kind, error) {
	k := engine.Kind(s)
	if !slices.Contains(engine.Kinds(), k) {
		return "", fmt.Errorf("unknown kind %q: want progress, bookmarks or events", s)
	}
	return k, nil
}

var exportCmd = &cobra.Command{
	Use:       "export <progress|bookmarks|events>",
	Short:     "Export a collection as JSON",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"progress", "bookmarks", "events"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		outPath, _ := cmd.Flags().GetString("output")

		return withApp(cmd, func(a *app) error {
			data, err := a.engine.Export(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprintln(a.out, string(data))
				return err
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Exported", kind, "to", outPath)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:       "import <progress|bookmarks|events> <file>",
	Short:     "Replace a collection with the contents of an export",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"progress", "bookmarks", "events"},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		if err := engine.ValidateImport(kind, data); err != nil {
			return err
		}

		return withApp(cmd, func(a *app) error {
			if !a.engine.Import(cmd.Context(), kind, data) {
				return fmt.Errorf("import of %s failed; existing data is unchanged", kind)
			}
			a.println(theme.Done.Render(fmt.Sprintf("Imported %s from %s", kind, args[1])))
			return nil
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check progress records against the event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		repair, _ := cmd.Flags().GetBool("repair")
		return withApp(cmd, func(a *app) error {
			r := a.engine.Reconcile(cmd.Context(), repair)
			if ok, err := a.emit(r); ok {
				return err
			}
			if r.Consistent() {
				a.println(theme.Done.Render("Progress records and event log agree."))
			} else {
				a.println(theme.Failure.Render(fmt.Sprintf("%d completed module(s) have no completion event", len(r.MissingEvents))))
				for _, id := range r.MissingEvents {
					a.println("  " + id)
				}
			}
			if len(r.Reverted) > 0 {
				a.println(theme.Hint.Render(fmt.Sprintf("%d module(s) were completed and later reverted", len(r.Reverted))))
			}
			if r.Repaired > 0 {
				a.println(theme.Done.Render(fmt.Sprintf("Recorded %d missing event(s).", r.Repaired)))
			}
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	reconcileCmd.Flags().Bool("repair", false, "Record the missing completion events")
}
