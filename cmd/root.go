package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/testdrill/internal/assessment"
	"github.com/abhisek/testdrill/internal/config"
	"github.com/abhisek/testdrill/internal/logging"
	"github.com/abhisek/testdrill/internal/store"
)

// cfg is loaded once per invocation before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "testdrill",
	Short: "Timed tests on quadratic equations and theory",
	Long: "testdrill runs graded tests: students solve quadratic equations and answer theory " +
		"questions under a time and error limit, teachers import tests and read statistics.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TESTDRILL_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(trainerCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg = config.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return logging.Init(cfg.Log.Level, cfg.Log.Format)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then TESTDRILL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store selected by flags and environment.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openEngine opens the store and builds an engine on it. The caller closes
// the returned backend.
func openEngine(cmd *cobra.Command) (*assessment.Engine, store.Backend, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	return assessment.NewEngine(st.Repos()), st, nil
}
