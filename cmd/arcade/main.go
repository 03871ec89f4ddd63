// arcade is a terminal Flappy game with a shared leaderboard.
//
// Usage:
//
//	arcade play              - Play in this terminal
//	arcade scores            - Show the leaderboard
//	arcade serve             - Start SSH server for remote play
//	arcade config            - Print the effective game config
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: 60)
//	--seed <value>   - Set RNG seed for reproducible gameplay
//	--db <path>      - Set database path (default: ~/.arcade/scores.db)
//	--config <path>  - Use a custom game config YAML
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
	"github.com/vovakirdan/tui-flappy/internal/storage"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "Flappy in your terminal",
	Long: `A terminal Flappy game with a fixed-step simulation and a shared leaderboard.

Available commands:
  play     - Play in this terminal
  scores   - View the leaderboard
  serve    - Start SSH server for remote play
  config   - Print the effective game config

Examples:
  arcade play
  arcade play --user alice --difficulty hard
  arcade serve --ssh :2222
  arcade scores`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadGameConfig loads the config file, applies the difficulty preset and
// validates the result.
func loadGameConfig(difficulty string) (config.FlappyConfig, config.DifficultyPreset, error) {
	preset, err := config.ParsePreset(difficulty)
	if err != nil {
		return config.FlappyConfig{}, "", err
	}

	cfg, err := config.LoadFlappy(flagConfig)
	if err != nil {
		return config.FlappyConfig{}, "", err
	}
	config.ApplyFlappyPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return config.FlappyConfig{}, "", err
	}
	return cfg, preset, nil
}

// openBoard picks the leaderboard backend: the remote service when a URL is
// configured, otherwise the local database. The returned store is nil for
// a remote board.
func openBoard(cfg config.LeaderboardConfig) (leaderboard.Service, *storage.Store, error) {
	if cfg.URL != "" {
		client, err := leaderboard.NewClient(cfg.URL, cfg.Timeout)
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}

// newFileLogger logs to ~/.arcade/flappy.log so output does not tear the
// alt screen. It falls back to a discarding logger.
func newFileLogger(level log.Level) (*log.Logger, func()) {
	home, err := os.UserHomeDir()
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	dir := filepath.Join(home, ".arcade")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "flappy.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "flappy",
		Level:           level,
	})
	return logger, func() { _ = f.Close() }
}
