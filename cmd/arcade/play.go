package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/core"
	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
	"github.com/vovakirdan/tui-flappy/internal/platform/spectate"
	"github.com/vovakirdan/tui-flappy/internal/platform/tui"
	"github.com/vovakirdan/tui-flappy/internal/storage"
)

var (
	flagDifficulty     string
	flagUser           string
	flagSecret         string
	flagLeaderboardURL string
	flagSpectate       string
	flagSpectateBuffer int
	flagDebug          bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a game in this terminal.

Controls:
  Space/Up/W - Flap (restarts after game over)
  R          - Restart (after game over)
  Tab        - Leaderboard
  Ctrl+S     - Screenshot
  Q/Ctrl+C   - Quit

Without --user you play as a guest: scores stay local to the session.
Scores go to the local database unless --leaderboard-url (or the config's
leaderboard.url) points at a remote service.

Difficulty options:
  easy   - Wider gaps, slower scrolling
  normal - Default tuning
  hard   - Narrower gaps, faster scrolling

Examples:
  arcade play
  arcade play --user alice
  arcade play --difficulty hard --config ./my-flappy.yaml
  arcade play --user alice --secret s3cret --leaderboard-url https://scores.example.com
  arcade play --spectate :8090`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	playCmd.Flags().StringVar(&flagUser, "user", "", "Leaderboard identity (3-20 letters or digits); empty plays as guest")
	playCmd.Flags().StringVar(&flagSecret, "secret", "", "Secret sent with score submissions")
	playCmd.Flags().StringVar(&flagLeaderboardURL, "leaderboard-url", "", "Remote leaderboard base URL (overrides config)")
	playCmd.Flags().IntVar(&flagSpectateBuffer, "spectate-buffer", 16, "Frames a slow spectator may fall behind before frames are dropped")
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Serve a websocket spectator feed on this address (e.g. :8090)")
	playCmd.Flags().BoolVar(&flagDebug, "debug", false, "Write debug logs to ~/.arcade/flappy.log")
}

func runPlay(_ *cobra.Command, _ []string) error {
	if err := leaderboard.ValidateIdentity(flagUser); err != nil {
		return err
	}

	cfg, preset, err := loadGameConfig(flagDifficulty)
	if err != nil {
		return err
	}
	if flagLeaderboardURL != "" {
		cfg.Leaderboard.URL = flagLeaderboardURL
	}

	level := log.InfoLevel
	if flagDebug {
		level = log.DebugLevel
	}
	logger, closeLog := newFileLogger(level)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, closeReporter := newReporter(ctx, cfg.Leaderboard, logger)
	defer closeReporter()

	var sinks []flappy.Sink
	if flagSpectate != "" {
		hub := spectate.NewHub(spectate.WithHubLogger(logger), spectate.WithBuffer(flagSpectateBuffer))
		srv := spectate.NewServer(flagSpectate, hub, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				logger.Error("spectator server stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		sinks = append(sinks, hub)
	}

	var reloads <-chan config.Reload
	if path := config.FlappySource(flagConfig); path != "" {
		watcher, err := config.NewWatcher(path)
		if err != nil {
			logger.Warn("config hot reload disabled", "path", path, "err", err)
		} else {
			defer watcher.Close()
			reloads = watcher.Reloads
			logger.Debug("watching config", "path", watcher.Path())
		}
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	err = tui.Run(ctx, tui.Options{
		Config: cfg,
		Preset: preset,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		Reporter: reporter,
		Logger:   logger,
		Sinks:    sinks,
		Reloads:  reloads,
	})
	if err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

// newReporter connects the player to a leaderboard. Failure to reach one is
// not fatal: the run continues as a guest. The returned func flushes pending
// reports and releases the backend.
func newReporter(ctx context.Context, cfg config.LeaderboardConfig, logger *log.Logger) (*leaderboard.Reporter, func()) {
	opts := []leaderboard.ReporterOption{
		leaderboard.WithTopN(cfg.TopN),
		leaderboard.WithTimeout(cfg.Timeout),
		leaderboard.WithReporterLogger(logger),
	}

	var (
		board leaderboard.Service
		store *storage.Store
		err   error
	)
	identity := flagUser
	if identity != "" {
		board, store, err = openBoard(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: leaderboard unavailable, playing as guest: %v\n", err)
			logger.Warn("leaderboard unavailable", "err", err)
			identity = ""
		}
	}

	reporter := leaderboard.NewReporter(board, identity, flagSecret, opts...)
	if !reporter.Guest() {
		best := reporter.Seed(ctx)
		logger.Info("player ready", "identity", identity, "best", best)
	}

	return reporter, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		reporter.Close(closeCtx)
		if store != nil {
			_ = store.Close()
		}
	}
}
