package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-flappy/internal/config"
	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
	"github.com/vovakirdan/tui-flappy/internal/platform/tui"
	"github.com/vovakirdan/tui-flappy/internal/storage"
)

var (
	flagScoresUser  string
	flagScoresLimit int
	flagScoresPlain bool
	flagScoresURL   string
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the leaderboard: each player's best score, highest first.

In a terminal this opens an interactive table; with --plain or when the
output is piped it prints text instead. With --user, the player's recent
runs and stats from the local database are shown too.

Examples:
  arcade scores
  arcade scores --user alice
  arcade scores --plain --limit 20
  arcade scores --leaderboard-url https://scores.example.com
  arcade scores --user alice --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresUser, "user", "", "Highlight this player and show their runs")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of leaderboard rows")
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print plain text instead of the interactive table")
	scoresCmd.Flags().StringVar(&flagScoresURL, "leaderboard-url", "", "Remote leaderboard base URL (overrides config)")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the local runs of --user (all runs when --user is empty)")
}

func runScores(cmd *cobra.Command, _ []string) error {
	if err := leaderboard.ValidateIdentity(flagScoresUser); err != nil {
		return err
	}

	cfg, err := config.LoadFlappy(flagConfig)
	if err != nil {
		return err
	}
	if flagScoresURL != "" {
		cfg.Leaderboard.URL = flagScoresURL
	}

	board, store, err := openBoard(cfg.Leaderboard)
	if err != nil {
		return fmt.Errorf("opening leaderboard: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	if flagScoresClear {
		if store == nil {
			return fmt.Errorf("--clear only applies to the local database")
		}
		if err := store.ClearScores(cmd.Context(), flagScoresUser); err != nil {
			return err
		}
		fmt.Println("Scores cleared.")
		return nil
	}

	if !flagScoresPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(board, store, flagScoresUser, width, height)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return printScores(ctx, os.Stdout, board, store, flagScoresUser, flagScoresLimit)
}

// printScores writes the leaderboard, and the player's local history when
// identity is set, as plain text.
func printScores(ctx context.Context, w io.Writer, board leaderboard.Service, store *storage.Store, identity string, limit int) error {
	entries, err := board.TopScores(ctx, limit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Fprintln(w, "Leaderboard")
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Play 'arcade play --user <name>' to set the first high score!")
	} else {
		fmt.Fprintf(w, "  %-4s  %-20s  %-8s  %s\n", "Rank", "Player", "Score", "Date")
		fmt.Fprintf(w, "  %-4s  %-20s  %-8s  %s\n", "----", "------", "-----", "----")
		for i, e := range entries {
			marker := " "
			if e.Identity == identity {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %-4d  %-20s  %-8d  %s\n", marker, i+1, e.Identity, e.Score, formatTime(e.At))
		}
	}

	if identity == "" {
		return nil
	}

	best, err := board.BestScore(ctx, identity)
	if err != nil {
		return fmt.Errorf("retrieving best score: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Best for %s: %d\n", identity, best)

	if store == nil {
		return nil
	}
	stats, err := store.Stats(ctx, identity)
	if err != nil {
		return fmt.Errorf("retrieving stats: %w", err)
	}
	if stats.Runs == 0 {
		return nil
	}
	fmt.Fprintf(w, "Runs: %d   Average: %.1f   Last played: %s\n", stats.Runs, stats.AvgScore, formatTime(stats.LastPlayed))

	runs, err := store.RecentRuns(ctx, identity, 5)
	if err != nil {
		return fmt.Errorf("retrieving recent runs: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent runs")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-8d  %s\n", r.Score, formatTime(r.CreatedAt))
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
