package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Reload carries the outcome of re-reading a watched config file.
type Reload struct {
	Config FlappyConfig
	Err    error // Read, parse or validation failure; Config is unusable when set
}

// Watcher re-reads a config file whenever it changes on disk.
// The directory is watched rather than the file so editors that save by
// rename are still picked up.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	Reloads chan Reload
	closeCh chan struct{}
	once    sync.Once
	done    sync.WaitGroup
}

// NewWatcher starts watching path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		path:    abs,
		Reloads: make(chan Reload, 4),
		closeCh: make(chan struct{}),
	}
	w.done.Add(1)
	go w.run()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and closes Reloads.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.done.Wait()
		close(w.Reloads)
	})
	return err
}

func (w *Watcher) run() {
	defer w.done.Done()

	// Saves arrive as bursts of events; load once the burst has settled.
	var timer *time.Timer
	var settled <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			settled = timer.C
		case <-settled:
			settled = nil
			w.publish(w.load())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.publish(Reload{Err: err})
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) load() Reload {
	cfg, err := LoadFlappyFile(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	return Reload{Config: cfg, Err: err}
}

// publish never blocks; a reader that falls behind only sees the newest reloads.
func (w *Watcher) publish(r Reload) {
	select {
	case w.Reloads <- r:
	case <-w.closeCh:
	default:
		select {
		case <-w.Reloads:
		default:
		}
		select {
		case w.Reloads <- r:
		default:
		}
	}
}
