// Package leaderboard reports finished runs to a score service and keeps
// the standings shown after game over. The simulation never talks to it
// directly; it only receives GameOver events.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Schema is the wire schema version spoken by Client.
const Schema = "leaderboard.v1"

var (
	// ErrSchema reports a response that does not match the leaderboard.v1 schema.
	ErrSchema = errors.New("leaderboard: response does not match " + Schema)
	// ErrUnauthorized reports rejected credentials.
	ErrUnauthorized = errors.New("leaderboard: unauthorized")
)

// Entry is one row of the leaderboard: an identity's best score.
type Entry struct {
	Identity string
	Score    int
	At       time.Time // When the score was set; zero if the service omits it
}

// Service is a score store, remote or local.
type Service interface {
	// SubmitScore records score for identity. Implementations keep only
	// the best score per identity for ranking purposes.
	SubmitScore(ctx context.Context, identity, secret string, score int) error
	// BestScore returns the identity's best score, 0 when it has none.
	BestScore(ctx context.Context, identity string) (int, error)
	// TopScores returns up to n entries ordered by score, highest first.
	TopScores(ctx context.Context, n int) ([]Entry, error)
}

// RunRecorder is implemented by services that keep a history of every
// finished run, not only new bests. Reporter records each run through it
// when the service supports it.
type RunRecorder interface {
	RecordRun(ctx context.Context, runID, identity string, score int) error
}

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

// ValidateIdentity checks an identity against the service's naming rules:
// 3 to 20 ASCII letters or digits. The empty identity is the guest and is
// always valid.
func ValidateIdentity(identity string) error {
	if identity == "" || identityPattern.MatchString(identity) {
		return nil
	}
	return fmt.Errorf("leaderboard: identity %q must be 3-20 letters or digits", identity)
}
