package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
	"github.com/vovakirdan/tui-flappy/internal/platform/spectate"
	"github.com/vovakirdan/tui-flappy/internal/platform/tui"
)

var (
	flagSSHAddr         string
	flagHostKey         string
	flagIdleTimeout     int
	flagServeDifficulty string
	flagServeSpectate   string
	flagServeBuffer     int
	flagServeURL        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own game. The SSH user name is the
leaderboard identity; names that are not 3-20 letters or digits play as
guests. Scores are stored per-server (all users share the same leaderboard)
unless --leaderboard-url points at a remote service.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Examples:
  arcade serve                           # Listen on :23234 with auto-generated key
  arcade serve --ssh :2222               # Listen on port 2222
  arcade serve --host-key ./my_host_key  # Use specific host key
  arcade serve --db ./scores.db          # Use specific database
  arcade serve --spectate :8090          # Stream every game to websocket viewers

Users can connect with:
  ssh alice@localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeDifficulty, "difficulty", "", "Difficulty preset for every session: easy, normal, hard")
	serveCmd.Flags().StringVar(&flagServeSpectate, "spectate", "", "Serve a websocket spectator feed on this address (e.g. :8090)")
	serveCmd.Flags().IntVar(&flagServeBuffer, "spectate-buffer", 16, "Frames a slow spectator may fall behind before frames are dropped")
	serveCmd.Flags().StringVar(&flagServeURL, "leaderboard-url", "", "Remote leaderboard base URL (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	game, _, err := loadGameConfig(flagServeDifficulty)
	if err != nil {
		return err
	}
	if flagServeURL != "" {
		game.Leaderboard.URL = flagServeURL
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Game = game
	cfg.TickRate = flagFPS

	if flagServeSpectate != "" {
		logger := log.WithPrefix("spectate")
		hub := spectate.NewHub(spectate.WithHubLogger(logger), spectate.WithBuffer(flagServeBuffer))
		srv := spectate.NewServer(flagServeSpectate, hub, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				logger.Error("spectator server stopped", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		cfg.Sinks = []flappy.Sink{hub}
	}

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting arcade SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh <name>@localhost -p %s\n", portOf(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}

func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return port
}
