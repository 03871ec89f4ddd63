// Package spectate streams game snapshots to read-only websocket viewers.
package spectate

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-flappy/internal/games/flappy"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithInterval sets the minimum time between broadcast frames of the same
// state. State changes are always sent.
func WithInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.interval = d }
}

// WithHubLogger sets the hub's logger.
func WithHubLogger(l *log.Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

// WithBuffer sets how many frames a slow spectator may fall behind.
func WithBuffer(n int) HubOption {
	return func(h *Hub) { h.buffer = n }
}

// Hub fans snapshots out to websocket spectators. It implements
// flappy.Sink; Present never blocks on the network.
type Hub struct {
	subs     *registry
	upgrader websocket.Upgrader
	logger   *log.Logger
	interval time.Duration
	buffer   int
	now      func() time.Time

	mu        sync.Mutex
	runs      map[string]*runClock // Rate limit state per run
	lastSweep time.Time
}

// runClock is the last frame sent for one run.
type runClock struct {
	sent  time.Time
	seen  time.Time
	state flappy.State
}

// staleRun is how long a run may go unseen before its state is dropped.
const staleRun = 30 * time.Second

// NewHub creates a hub with no spectators.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:     newRegistry(),
		logger:   log.New(io.Discard),
		interval: 50 * time.Millisecond,
		buffer:   16,
		now:      time.Now,
		runs:     make(map[string]*runClock),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Spectators returns the number of connected viewers.
func (h *Hub) Spectators() int {
	return h.subs.count()
}

// Present broadcasts a snapshot to every spectator.
func (h *Hub) Present(snap flappy.Snapshot) {
	if h.subs.count() == 0 || !h.due(snap) {
		return
	}

	frame, err := encodeFrame(snap)
	if err != nil {
		h.logger.Error("encode frame", "err", err)
		return
	}
	h.subs.broadcast(frame)
}

// due reports whether snap should be sent. Each run is rate limited on
// its own, so sessions sharing a hub do not defeat each other's limit.
// State changes and a run's first frame are always sent.
func (h *Hub) due(snap flappy.Snapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.sweep(now)

	rc, ok := h.runs[snap.RunID]
	if !ok {
		rc = &runClock{}
		h.runs[snap.RunID] = rc
	}
	rc.seen = now
	if ok && snap.State == rc.state && now.Sub(rc.sent) < h.interval {
		return false
	}
	rc.sent = now
	rc.state = snap.State
	return true
}

// sweep drops runs that stopped presenting, e.g. after a restart or a
// disconnect. Called with h.mu held.
func (h *Hub) sweep(now time.Time) {
	if now.Sub(h.lastSweep) < staleRun {
		return
	}
	h.lastSweep = now
	for id, rc := range h.runs {
		if now.Sub(rc.seen) >= staleRun {
			delete(h.runs, id)
		}
	}
}

// trackedRuns returns how many runs hold rate limit state.
func (h *Hub) trackedRuns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.runs)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.subs.closeAll()
}

// ServeWS upgrades the request and streams frames until the viewer leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	sub := newSubscriber(h.buffer)
	h.subs.register(sub)
	h.logger.Info("spectator joined", "id", sub.id, "remote", r.RemoteAddr, "spectators", h.subs.count())

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)

	h.subs.unregister(sub.id)
	sub.close()
	h.logger.Info("spectator left", "id", sub.id, "spectators", h.subs.count())
}

// readLoop discards viewer messages and returns when the connection drops.
func (h *Hub) readLoop(conn *websocket.Conn, sub *subscriber) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-sub.done:
		_ = conn.Close()
		<-done
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case frame := <-sub.frames:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				sub.close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sub.close()
				return
			}
		case <-sub.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

var _ flappy.Sink = (*Hub)(nil)
