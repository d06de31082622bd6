package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pastrypath/pastrypath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pastrypath",
	Short: "Track your pastry learning journey",
	Long: "PastryPath tracks progress through pastry learning paths, unlocks modules as " +
		"prerequisites are met, and awards achievements along the way.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPaths(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PASTRYPATH_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a pastrypath.yaml config file")
	rootCmd.PersistentFlags().String("catalog", "", "Path to a catalog YAML file (defaults to the built-in catalog)")
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: sqlite, redis or memory")
	rootCmd.PersistentFlags().Bool("json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(bookmarkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then PASTRYPATH_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
