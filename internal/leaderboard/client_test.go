package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// fakeBoard is an in-memory leaderboard.v1 server.
type fakeBoard struct {
	mu      sync.Mutex
	best    map[string]int
	secrets map[string]string
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{best: map[string]int{}, secrets: map[string]string{}}
}

func (f *fakeBoard) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/scores", func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Schema != Schema {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if s, ok := f.secrets[req.Identity]; ok && s != req.Secret {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		f.secrets[req.Identity] = req.Secret
		if req.Score > f.best[req.Identity] {
			f.best[req.Identity] = req.Score
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/v1/scores/{identity}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "identity")
		f.mu.Lock()
		best, ok := f.best[id]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"schema": Schema, "identity": id, "best": best})
	})
	r.Get("/v1/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("n"))
		f.mu.Lock()
		entries := make([]map[string]any, 0, len(f.best))
		for id, score := range f.best {
			entries = append(entries, map[string]any{"identity": id, "score": score})
		}
		f.mu.Unlock()
		sort.Slice(entries, func(i, j int) bool {
			return entries[i]["score"].(int) > entries[j]["score"].(int)
		})
		if len(entries) > n {
			entries = entries[:n]
		}
		writeJSON(w, map[string]any{"schema": Schema, "entries": entries})
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return c
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t, newFakeBoard().routes())
	ctx := context.Background()

	for _, s := range []struct {
		id    string
		score int
	}{{"alice", 10}, {"bob", 20}, {"alice", 5}, {"carol", 15}, {"dave", 1}} {
		if err := c.SubmitScore(ctx, s.id, "pw", s.score); err != nil {
			t.Fatalf("SubmitScore(%s, %d) failed: %v", s.id, s.score, err)
		}
	}

	best, err := c.BestScore(ctx, "alice")
	if err != nil || best != 10 {
		t.Errorf("BestScore(alice) = %d, %v, expected 10", best, err)
	}
	best, err = c.BestScore(ctx, "nobody")
	if err != nil || best != 0 {
		t.Errorf("BestScore(nobody) = %d, %v, expected 0", best, err)
	}

	top, err := c.TopScores(ctx, 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	want := []string{"bob", "carol", "alice"}
	if len(top) != len(want) {
		t.Fatalf("TopScores() returned %d rows, expected %d", len(top), len(want))
	}
	for i, id := range want {
		if top[i].Identity != id {
			t.Errorf("row %d = %s, expected %s", i, top[i].Identity, id)
		}
	}
}

func TestClientUnauthorized(t *testing.T) {
	c := newTestClient(t, newFakeBoard().routes())
	ctx := context.Background()

	if err := c.SubmitScore(ctx, "alice", "right", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.SubmitScore(ctx, "alice", "wrong", 2); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("SubmitScore() with wrong secret = %v, expected ErrUnauthorized", err)
	}
}

func TestClientRejectsSchemaDeviations(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"wrong version", "/v1/leaderboard", `{"schema":"leaderboard.v2","entries":[]}`},
		{"missing schema", "/v1/leaderboard", `{"entries":[]}`},
		{"unknown field", "/v1/leaderboard", `{"schema":"leaderboard.v1","entries":[],"extra":1}`},
		{"missing entries", "/v1/leaderboard", `{"schema":"leaderboard.v1"}`},
		{"entry without score", "/v1/leaderboard", `{"schema":"leaderboard.v1","entries":[{"identity":"a"}]}`},
		{"negative score", "/v1/leaderboard", `{"schema":"leaderboard.v1","entries":[{"identity":"a","score":-1}]}`},
		{"unordered", "/v1/leaderboard", `{"schema":"leaderboard.v1","entries":[{"identity":"a","score":1},{"identity":"b","score":2}]}`},
		{"too many", "/v1/leaderboard", `{"schema":"leaderboard.v1","entries":[{"identity":"a","score":4},{"identity":"b","score":3},{"identity":"c","score":2},{"identity":"d","score":1}]}`},
		{"not json", "/v1/leaderboard", `<html>`},
		{"best missing", "/v1/scores/alice", `{"schema":"leaderboard.v1","identity":"alice"}`},
		{"best for someone else", "/v1/scores/alice", `{"schema":"leaderboard.v1","identity":"bob","best":3}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get(tc.path, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			})
			c := newTestClient(t, r)

			var err error
			if tc.path == "/v1/leaderboard" {
				_, err = c.TopScores(context.Background(), 3)
			} else {
				_, err = c.BestScore(context.Background(), "alice")
			}
			if !errors.Is(err, ErrSchema) {
				t.Errorf("error = %v, expected ErrSchema", err)
			}
		})
	}
}

func TestClientServerError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/leaderboard", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, r)

	_, err := c.TopScores(context.Background(), 3)
	if err == nil {
		t.Fatal("TopScores() should fail on 500")
	}
	if errors.Is(err, ErrSchema) {
		t.Errorf("server errors are not schema errors: %v", err)
	}
}

func TestClientRespectsContext(t *testing.T) {
	release := make(chan struct{})
	r := chi.NewRouter()
	r.Get("/v1/leaderboard", func(w http.ResponseWriter, _ *http.Request) {
		<-release
	})
	c := newTestClient(t, r)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.TopScores(ctx, 3); err == nil {
		t.Error("TopScores() should fail when the context expires")
	}
}

func TestNewClientValidatesURL(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "example.com", "://bad"} {
		if _, err := NewClient(raw, time.Second); err == nil {
			t.Errorf("NewClient(%q) should fail", raw)
		}
	}
}

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		identity string
		ok       bool
	}{
		{"", true},
		{"abc", true},
		{"Player01", true},
		{"ab", false},
		{"has space", false},
		{"dash-name", false},
		{"abcdefghijklmnopqrstu", false},
	}

	for _, tc := range tests {
		if err := ValidateIdentity(tc.identity); (err == nil) != tc.ok {
			t.Errorf("ValidateIdentity(%q) = %v, expected ok=%v", tc.identity, err, tc.ok)
		}
	}
}
