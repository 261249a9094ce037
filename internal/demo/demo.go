// Package demo runs the reader/writer exercise that shows the lock at work
// across processes.
//
// A Writer stores the values 1..Count in a JSON file, one value per lock
// round, pausing between rounds. A Reader takes the same lock over and over,
// reads the file and reports every value it has not seen yet, until Count
// appears. Run one of each in separate terminals against the same paths; with
// a working lock the reader never sees a torn or half-written file.
package demo

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"time"

	"github.com/bashhack/linklock/internal/common"
	"github.com/bashhack/linklock/internal/errors"
	"github.com/bashhack/linklock/internal/lock"
)

// Content is the document stored in the content file.
type Content struct {
	Value int `json:"value"`
}

// Delay returns how long to pause. Returning zero skips the pause.
type Delay func() time.Duration

// Jitter returns a Delay of base plus a uniformly random share of spread.
func Jitter(base, spread time.Duration) Delay {
	return func() time.Duration {
		if spread <= 0 {
			return base
		}
		return base + rand.N(spread)
	}
}

// NoDelay never pauses.
func NoDelay() time.Duration { return 0 }

// Options are shared by Writer and Reader.
type Options struct {
	LockPath    string
	ContentPath string
	Count       int
	Owner       string
	Logger      common.Logger

	// Retry and Watch configure how the lock is waited for.
	Retry lock.RetryPolicy
	Watch bool
	// Timeout bounds each wait for the lock; zero waits until ctx is done.
	Timeout time.Duration
}

func (o Options) locker() (*lock.Locker, error) {
	if o.Count < 1 {
		return nil, errors.Errorf("count must be at least 1, got %d", o.Count)
	}
	if o.ContentPath == "" {
		return nil, errors.New("content path must not be empty")
	}
	return lock.New(o.LockPath, o.Owner,
		lock.WithLogger(o.Logger),
		lock.WithRetry(o.Retry),
		lock.WithWatch(o.Watch),
	)
}

// Writer writes 1..Count to the content file, one value per lock round.
type Writer struct {
	Options

	// Hold is the pause taken while holding the lock, before writing.
	// It widens the window in which a broken lock would show.
	Hold Delay
	// Pause is the pause between rounds, outside the lock.
	Pause Delay
}

// NewWriter creates a Writer with the pauses used by the command line.
func NewWriter(opts Options) *Writer {
	return &Writer{
		Options: opts,
		Hold:    Jitter(0, time.Second),
		Pause:   Jitter(200*time.Millisecond, time.Second),
	}
}

// Run writes every value and returns once Count has been written, an error
// occurs, or ctx is done. The lock is released on every path.
func (w *Writer) Run(ctx context.Context) error {
	lk, err := w.locker()
	if err != nil {
		return err
	}
	log := w.logger()

	log.InfoToUser("Running as a writer (content: %s, lock: %s)", w.ContentPath, w.LockPath)
	for i := 1; i <= w.Count; i++ {
		err := w.with(ctx, lk, func() error {
			if err := sleep(ctx, delay(w.Hold)); err != nil {
				return err
			}
			log.StatusMessage("Writing %d", i)
			return writeContent(w.ContentPath, Content{Value: i})
		})
		if err != nil {
			return errors.Wrapf(err, "writer stopped at value %d", i)
		}

		if i < w.Count {
			if err := sleep(ctx, delay(w.Pause)); err != nil {
				return errors.Wrapf(err, "writer stopped after value %d", i)
			}
		}
	}
	log.Success("Finished writing %d values", w.Count)
	return nil
}

// Reader reads the content file under the lock until it holds Count.
type Reader struct {
	Options

	// Pause is the pause between rounds, outside the lock.
	Pause Delay
}

// NewReader creates a Reader with the pause used by the command line.
func NewReader(opts Options) *Reader {
	return &Reader{
		Options: opts,
		Pause:   Jitter(10*time.Millisecond, 0),
	}
}

// Run reads until the stored value equals Count and returns the distinct
// values seen, in order. A missing content file means the writer has not
// started yet and is not an error.
func (r *Reader) Run(ctx context.Context) ([]int, error) {
	lk, err := r.locker()
	if err != nil {
		return nil, err
	}
	log := r.logger()

	log.InfoToUser("Running as a reader (content: %s, lock: %s)", r.ContentPath, r.LockPath)
	var seen []int
	for {
		var (
			c     Content
			found bool
		)
		err := r.with(ctx, lk, func() error {
			var err error
			c, found, err = readContent(r.ContentPath)
			return err
		})
		if err != nil {
			return seen, errors.Wrap(err, "reader stopped")
		}

		if found && (len(seen) == 0 || seen[len(seen)-1] != c.Value) {
			log.StatusMessage("Read %d", c.Value)
			seen = append(seen, c.Value)
		}
		if found && c.Value == r.Count {
			log.Success("Finished reading, reached %d", r.Count)
			return seen, nil
		}

		if err := sleep(ctx, delay(r.Pause)); err != nil {
			return seen, errors.Wrap(err, "reader stopped")
		}
	}
}

// with runs fn under the lock, bounding only the wait by Timeout.
func (o Options) with(ctx context.Context, lk *lock.Locker, fn func() error) error {
	acquireCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	return lk.With(acquireCtx, fn)
}

func (o Options) logger() common.Logger {
	if o.Logger == nil {
		return discard{}
	}
	return o.Logger
}

func writeContent(path string, c Content) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode content")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func readContent(path string) (Content, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Content{}, false, nil
	}
	if err != nil {
		return Content{}, false, errors.Wrapf(err, "failed to read %s", path)
	}

	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return Content{}, false, errors.Wrapf(err, "malformed content in %s", path)
	}
	return c, true, nil
}

func delay(d Delay) time.Duration {
	if d == nil {
		return 0
	}
	return d()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type discard struct{}

func (discard) Info(string, ...interface{})          {}
func (discard) Warning(string, ...interface{})       {}
func (discard) Error(string, ...interface{})         {}
func (discard) InfoToUser(string, ...interface{})    {}
func (discard) WarningToUser(string, ...interface{}) {}
func (discard) Success(string, ...interface{})       {}
func (discard) StatusMessage(string, ...interface{}) {}
