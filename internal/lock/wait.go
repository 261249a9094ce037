package lock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bashhack/linklock/internal/common"
	"github.com/bashhack/linklock/internal/errors"
)

// RetryPolicy controls the pause between attempts in Acquire.
// Each pause is MinDelay plus a uniformly random share of Jitter.
type RetryPolicy struct {
	MinDelay time.Duration
	Jitter   time.Duration
}

// DefaultRetryPolicy waits between 10ms and 1.01s, which spreads competing
// processes apart without a coordinator.
var DefaultRetryPolicy = RetryPolicy{
	MinDelay: 10 * time.Millisecond,
	Jitter:   time.Second,
}

// NoDelay retries immediately; a filesystem watch still paces the loop when enabled.
var NoDelay = RetryPolicy{}

func (p RetryPolicy) next() time.Duration {
	d := p.MinDelay
	if p.Jitter > 0 {
		d += rand.N(p.Jitter)
	}
	if d < 0 {
		return 0
	}
	return d
}

// Acquire blocks until the lock is taken, a non-contention error occurs, or
// ctx is done. It is a polling loop around TryAcquire; the lock primitive
// itself never waits.
func (l *Locker) Acquire(ctx context.Context) error {
	var w *releaseWatcher
	if l.watch {
		var err error
		w, err = watchRelease(l.path, l.logger)
		if err != nil {
			// Polling alone is still correct, just slower to notice a release
			l.logger.Warning("Failed to watch %s, falling back to polling: %v", l.path, err)
		}
		defer func() {
			_ = w.Close()
		}()
	}

	for attempt := 1; ; attempt++ {
		err := l.TryAcquire()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errors.ErrLockHeld) {
			return err
		}

		timer := time.NewTimer(l.retry.next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.NewLockError(l.path, l.owner, contextError(ctx, attempt))
		case <-timer.C:
		case <-w.Released():
			timer.Stop()
		}
	}
}

func contextError(ctx context.Context, attempts int) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %d attempts: %w", errors.ErrTimeout, attempts, ctx.Err())
	}
	return errors.Wrapf(ctx.Err(), "acquire abandoned after %d attempts", attempts)
}

// With acquires the lock, runs fn and releases the lock, whatever fn returns.
func (l *Locker) With(ctx context.Context, fn func() error) (err error) {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if releaseErr := l.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()
	return fn()
}

// releaseWatcher signals when the lock path is removed or renamed away.
// A nil *releaseWatcher is valid and never signals.
type releaseWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	logger  common.Recorder
	ch      chan struct{}
	done    chan struct{}
}

func watchRelease(path string, log common.Recorder) (*releaseWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	rw := &releaseWatcher{
		watcher: fw,
		target:  filepath.Clean(path),
		logger:  log,
		ch:      make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go rw.watchEvents()
	return rw, nil
}

func (rw *releaseWatcher) watchEvents() {
	defer close(rw.done)
	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != rw.target {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case rw.ch <- struct{}{}:
			default:
			}
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logger.Warning("File watcher error on %s: %v", rw.target, err)
		}
	}
}

// Released returns a channel that receives after each removal of the lock path.
func (rw *releaseWatcher) Released() <-chan struct{} {
	if rw == nil {
		return nil
	}
	return rw.ch
}

// Close stops the watcher and waits for its goroutine to exit.
func (rw *releaseWatcher) Close() error {
	if rw == nil {
		return nil
	}
	err := rw.watcher.Close()
	<-rw.done
	return err
}
