package scope

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/dashboard/state"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Watcher tells a Mirror when to re-read the durable value. Signals may be
// spurious; the mirror always compares before acting. The channel closes
// once ctx is done and the watcher's goroutine has exited.
type Watcher interface {
	Signals(ctx context.Context) <-chan struct{}
}

// signal performs a non-blocking send; one pending signal is enough.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// PollWatcher signals on a fixed interval.
type PollWatcher struct {
	Interval time.Duration
}

func (w PollWatcher) Signals(ctx context.Context) <-chan struct{} {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				signal(out)
			}
		}
	}()
	return out
}

// FileWatcher signals when the state file changes on disk, plus a safety
// poll for filesystems where notifications are unreliable. If notifications
// cannot be set up at all it degrades to polling at FallbackPoll.
type FileWatcher struct {
	Path         string
	SafetyPoll   time.Duration
	FallbackPoll time.Duration
	Logger       *logrus.Entry
}

func (w FileWatcher) Signals(ctx context.Context) <-chan struct{} {
	logger := w.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	fsw, err := w.newNotifier()
	if err != nil {
		logger.WithError(err).Warn("File notifications unavailable, falling back to polling")
		return PollWatcher{Interval: w.FallbackPoll}.Signals(ctx)
	}

	safety := w.SafetyPoll
	if safety <= 0 {
		safety = DefaultInterval
	}
	target := filepath.Base(w.Path)

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer fsw.Close()
		ticker := time.NewTicker(safety)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				// Writes land via rename of a temp file, so watch the name
				// rather than the inode.
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
					signal(out)
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("File watcher error")
			case <-ticker.C:
				signal(out)
			}
		}
	}()
	return out
}

func (w FileWatcher) newNotifier() (*fsnotify.Watcher, error) {
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// StoreWatcher forwards push notifications from a Watchable store for one key.
type StoreWatcher struct {
	Store state.Watchable
	Key   string
}

func (w StoreWatcher) Signals(ctx context.Context) <-chan struct{} {
	changes, stop := w.Store.Watch()
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case key, ok := <-changes:
				if !ok {
					return
				}
				if key == w.Key {
					signal(out)
				}
			}
		}
	}()
	return out
}

// Auto picks the most immediate watcher the store supports. Watchable
// stores push, file stores use notifications when watchFiles is set, and
// anything else is polled.
func Auto(store state.Store, key string, interval time.Duration, watchFiles bool, logger *logrus.Entry) Watcher {
	if ws, ok := store.(state.Watchable); ok {
		return StoreWatcher{Store: ws, Key: key}
	}
	if fs, ok := store.(*state.FileStore); ok && watchFiles {
		return FileWatcher{
			Path:         fs.Path(),
			SafetyPoll:   interval,
			FallbackPoll: interval,
			Logger:       logger,
		}
	}
	return PollWatcher{Interval: interval}
}
