package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ErrStopped is returned by Do when the loop exits before running the task.
var ErrStopped = errors.New("loop: stopped")

// Loop is a single-goroutine task loop. Tasks are queued without bound and
// executed one per iteration by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	running bool
	logger  *slog.Logger

	// OnPanic, if set, is called with the recovered value after a task panics.
	OnPanic func(v any)
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// New creates an idle loop. Call Run to start executing tasks.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Defer queues fn. Safe to call from any goroutine, including from a task.
func (l *Loop) Defer(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Dispatch is an alias of Defer for callers outside the loop goroutine.
func (l *Loop) Dispatch(fn func()) {
	l.Defer(fn)
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run executes tasks until ctx is cancelled. Tasks still queued when the
// context ends are discarded. Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errors.New("loop: already running")
	}
	l.running = true
	l.mu.Unlock()
	defer close(l.done)

	for {
		fn, ok := l.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.run(fn)
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
			if l.OnPanic != nil {
				l.OnPanic(r)
			}
		}
	}()
	fn()
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from a task running on the same loop.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Defer(func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("loop: task panic: %v", r)
			}
		}()
		result <- fn()
	})

	select {
	case err := <-result:
		return err
	case <-l.done:
		// The task may have completed just before the loop stopped.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
