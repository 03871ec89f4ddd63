package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-flappy/internal/config"
)

var (
	flagConfigDifficulty string
	flagConfigInit       bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective game config",
	Long: `Print the game config that 'arcade play' would use, as YAML.

The first line names the source: the --config file, a discovered file
(~/.arcade/configs/flappy.yaml, then ./configs/flappy.yaml) or the built-in
defaults.

With --init, the defaults are written to ~/.arcade/configs/flappy.yaml as a
starting point for editing. An existing file is left alone.

Examples:
  arcade config
  arcade config --difficulty hard
  arcade config --init`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&flagConfigDifficulty, "difficulty", "", "Apply a difficulty preset: easy, normal, hard")
	configCmd.Flags().BoolVar(&flagConfigInit, "init", false, "Write the default config to ~/.arcade/configs/flappy.yaml")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigInit {
		return initConfig()
	}

	cfg, _, err := loadGameConfig(flagConfigDifficulty)
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	source := config.FlappySource(flagConfig)
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Printf("# source: %s\n", source)
	_, err = os.Stdout.Write(data)
	return err
}

func initConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".arcade", "configs", "flappy.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, config.DefaultFlappyYAML(), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
