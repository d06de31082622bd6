package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/ui/theme"
	"github.com/pastrypath/pastrypath/internal/unlock"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check or apply prerequisite unlocks",
}

var unlockCheckCmd = &cobra.Command{
	Use:   "check <path> [module]",
	Short: "Show which prerequisites of a path or module are met",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			var (
				check unlock.Check
				err   error
			)
			if len(args) == 2 {
				if _, _, err = a.engine.Catalog().ModuleInPath(args[0], args[1]); err != nil {
					return err
				}
				check, err = a.engine.CheckModule(args[1])
			} else {
				check, err = a.engine.CheckPath(args[0])
			}
			if err != nil {
				return err
			}
			if ok, err := a.emit(check); ok {
				return err
			}
			a.printCheck(check)
			return nil
		})
	},
}

var unlockApplyCmd = &cobra.Command{
	Use:   "apply [path] [module]",
	Short: "Unlock a path or module, or everything reachable when no id is given",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx := cmd.Context()
			var results []unlock.Result
			switch len(args) {
			case 0:
				results = a.engine.AutoUnlock(ctx)
			case 1:
				res, err := a.engine.UnlockPath(ctx, args[0])
				if err != nil {
					return err
				}
				results = append(results, res)
			default:
				if _, _, err := a.engine.Catalog().ModuleInPath(args[0], args[1]); err != nil {
					return err
				}
				res, err := a.engine.UnlockModule(ctx, args[1])
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			if ok, err := a.emit(results); ok {
				return err
			}

			if len(results) == 0 {
				a.println(theme.Hint.Render("Nothing new to unlock."))
			}
			for _, r := range results {
				switch {
				case r.NewlyUnlocked:
					a.println(theme.Done.Render("🔓 Unlocked " + r.ID))
				case r.Check.IsUnlocked:
					a.println(theme.Subtitle.Render(r.ID + " is already unlocked"))
				default:
					a.println(theme.Failure.Render("🔒 " + r.ID + " is still locked"))
					a.printCheck(r.Check)
				}
			}
			return nil
		})
	},
}

func init() {
	unlockCmd.AddCommand(unlockCheckCmd)
	unlockCmd.AddCommand(unlockApplyCmd)
}

func (a *app) printCheck(c unlock.Check) {
	state := theme.Failure.Render("locked")
	switch {
	case c.IsUnlocked:
		state = theme.Done.Render("unlocked")
	case c.CanUnlock:
		state = theme.Active.Render("ready to unlock")
	}
	a.println(theme.Title.Render(c.ID) + "  " + state)

	for _, id := range c.CompletedPrerequisiteIDs {
		a.println("  " + theme.Done.Render("✓") + " " + id)
	}
	for _, id := range c.MissingPrerequisiteIDs {
		a.println("  " + theme.Failure.Render("✗") + " " + id)
	}
	for _, cond := range c.Conditions {
		if cond.Type == unlock.ConditionModuleCompletion || cond.Type == unlock.ConditionPathCompletion {
			continue
		}
		mark := theme.Failure.Render("✗")
		if cond.IsMet {
			mark = theme.Done.Render("✓")
		}
		a.println("  " + mark + " " + cond.Description)
	}
}
