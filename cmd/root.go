package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vocardo/vocardo/internal/config"
	"github.com/vocardo/vocardo/internal/store"
	"github.com/vocardo/vocardo/internal/verify"
)

var rootCmd = &cobra.Command{
	Use:   "vocardo",
	Short: "Adaptive assessment and spaced-repetition engine",
	Long: "Vocardo schedules flashcard reviews with interchangeable algorithms,\n" +
		"selects quiz items matched to learner ability, and fuses graded answers\n" +
		"into review ratings.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VOCARDO_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(algorithmCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(flaggedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then the config file, then VOCARDO_DB, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// openEngine wires the store and engine for a CLI invocation. The
// caller must Close the returned store.
func openEngine(cmd *cobra.Command) (*verify.Engine, *store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, err
	}

	engineCfg := verify.DefaultConfig()
	if cfg.Engine.DueLimit > 0 {
		engineCfg.DueLimit = cfg.Engine.DueLimit
	}
	if cfg.Engine.MigrationThreshold > 0 {
		engineCfg.Assignment.MigrationThreshold = cfg.Engine.MigrationThreshold
	}
	if cfg.Engine.TargetRetention > 0 {
		engineCfg.Memory.TargetRetention = cfg.Engine.TargetRetention
	}

	engine := verify.NewEngine(verify.DepsFromStore(st), engineCfg, nil, newLogger())
	return engine, st, cfg, nil
}
