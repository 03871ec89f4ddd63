package leaderboard

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultTopN    = 3
	defaultTimeout = 5 * time.Second
	queueSize      = 8
)

// Standings is what the game-over screen shows for a run.
type Standings struct {
	RunID     string  // Run the standings were fetched for
	Rows      []Entry // Top entries, highest first
	Best      int     // Player's best score, including the finished run
	Available bool    // Rows came from the service
	Pending   bool    // A fetch for RunID is still in flight
	Err       error   // Last service failure, if any
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithTopN sets how many rows are fetched at game over.
func WithTopN(n int) ReporterOption {
	return func(r *Reporter) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithTimeout bounds each service call.
func WithTimeout(d time.Duration) ReporterOption {
	return func(r *Reporter) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithReporterLogger sets the logger for service failures.
func WithReporterLogger(l *log.Logger) ReporterOption {
	return func(r *Reporter) {
		if l != nil {
			r.logger = l
		}
	}
}

type report struct {
	runID  string
	score  int
	submit bool
}

// Reporter submits finished runs and fetches standings on its own
// goroutine, so game over never waits on the network.
type Reporter struct {
	svc      Service
	identity string
	secret   string
	topN     int
	timeout  time.Duration
	logger   *log.Logger

	jobs      chan report
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once

	mu        sync.Mutex
	closed    bool
	best      int
	standings Standings
}

// NewReporter starts a reporter for identity. An empty identity is a guest:
// nothing is sent and the best score is tracked locally. svc may be nil,
// which behaves like a guest.
func NewReporter(svc Service, identity, secret string, opts ...ReporterOption) *Reporter {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reporter{
		svc:      svc,
		identity: identity,
		secret:   secret,
		topN:     defaultTopN,
		timeout:  defaultTimeout,
		logger:   log.New(io.Discard),
		jobs:     make(chan report, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.run()
	return r
}

// Guest reports whether the reporter runs without a service identity.
func (r *Reporter) Guest() bool {
	return r.identity == "" || r.svc == nil
}

// Identity returns the player identity, empty for guests.
func (r *Reporter) Identity() string {
	return r.identity
}

// Seed loads the player's best score from the service. A failure leaves
// the best at 0 and is logged, never returned.
func (r *Reporter) Seed(ctx context.Context) int {
	if r.Guest() {
		return r.Best()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	best, err := r.svc.BestScore(ctx, r.identity)
	if err != nil {
		r.logger.Warn("best score unavailable", "identity", r.identity, "err", err)
		r.mu.Lock()
		r.standings.Err = err
		r.mu.Unlock()
		return r.Best()
	}

	r.mu.Lock()
	if best > r.best {
		r.best = best
	}
	r.standings.Best = r.best
	r.mu.Unlock()

	r.logger.Debug("best score seeded", "identity", r.identity, "best", best)
	return r.Best()
}

// Best returns the best score known so far.
func (r *Reporter) Best() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.best
}

// GameOver records a finished run. A score above the best is submitted;
// the top entries are fetched either way. It never blocks: when the queue
// is full the report is dropped and logged.
func (r *Reporter) GameOver(runID string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	submit := score > r.best
	if submit {
		r.best = score
	}
	r.standings = Standings{RunID: runID, Best: r.best}

	if r.Guest() || r.closed {
		return
	}

	select {
	case r.jobs <- report{runID: runID, score: score, submit: submit}:
		r.standings.Pending = true
	default:
		r.logger.Warn("report queue full, dropping run", "run", runID, "score", score)
	}
}

// Standings returns a copy of the latest standings.
func (r *Reporter) Standings() Standings {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.standings
	s.Rows = append([]Entry(nil), s.Rows...)
	return s
}

// Close stops accepting reports, finishes queued ones and waits for the
// worker. Calls still in flight when ctx expires are cancelled.
func (r *Reporter) Close(ctx context.Context) {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.jobs)
		r.mu.Unlock()

		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			r.cancel()
			<-done
		}
		r.cancel()
	})
}

func (r *Reporter) run() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.handle(job)
	}
}

func (r *Reporter) handle(job report) {
	var firstErr error

	if rec, ok := r.svc.(RunRecorder); ok {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		err := rec.RecordRun(ctx, job.runID, r.identity, job.score)
		cancel()
		if err != nil {
			r.logger.Warn("run record failed", "run", job.runID, "score", job.score, "err", err)
			firstErr = err
		}
	}

	if job.submit {
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		err := r.svc.SubmitScore(ctx, r.identity, r.secret, job.score)
		cancel()
		if err != nil {
			r.logger.Warn("score submit failed", "run", job.runID, "score", job.score, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			r.logger.Info("new best submitted", "identity", r.identity, "score", job.score)
		}
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	rows, err := r.svc.TopScores(ctx, r.topN)
	cancel()
	if err != nil {
		r.logger.Warn("leaderboard fetch failed", "run", job.runID, "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.standings.RunID != job.runID {
		// A newer run finished first; its standings win.
		return
	}
	r.standings.Pending = false
	r.standings.Err = firstErr
	if err == nil {
		r.standings.Rows = rows
		r.standings.Available = true
	}
}
