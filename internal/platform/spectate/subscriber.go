package spectate

import (
	"sync"

	"github.com/google/uuid"
)

// subscriber is one connected spectator. Frames are queued on a buffered
// channel and written by the connection's writer goroutine.
type subscriber struct {
	id       string
	frames   chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscriber(bufferSize int) *subscriber {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &subscriber{
		id:     uuid.NewString(),
		frames: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// send queues a frame without blocking.
// If the buffer is full, the oldest frame is dropped so slow spectators
// skip ahead instead of stalling the game.
func (s *subscriber) send(frame []byte) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.frames <- frame:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- frame:
		default:
		}
	}
}

// close marks the subscriber as gone. Safe to call multiple times.
func (s *subscriber) close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// registry tracks connected subscribers.
// Thread-safe for concurrent access.
type registry struct {
	mu   sync.RWMutex
	subs map[string]*subscriber
}

func newRegistry() *registry {
	return &registry{subs: make(map[string]*subscriber)}
}

func (r *registry) register(s *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.id] = s
}

func (r *registry) unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// broadcast queues frame on every subscriber.
func (r *registry) broadcast(frame []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.subs {
		s.send(frame)
	}
}

// closeAll closes every subscriber and empties the registry.
func (r *registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.subs {
		s.close()
		delete(r.subs, id)
	}
}
