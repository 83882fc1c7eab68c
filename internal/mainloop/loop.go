package mainloop

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ErrClosed is returned by Post once the loop has stopped.
var ErrClosed = errors.New("main loop is closed")

// Loop is a single-consumer queue of functions.
type Loop struct {
	// mu protects queue and closed.
	mu sync.Mutex
	// queue holds functions waiting to run, in posting order.
	queue []func()
	// closed is set once Run returned or Close was called.
	closed bool
	// wake has room for one pending wake-up of Run.
	wake chan struct{}
	// done is closed by Close.
	done chan struct{}
	// closeOnce guards done.
	closeOnce sync.Once
}

// New returns a loop ready to accept posts. Functions run once Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn to run on the loop goroutine. It never blocks.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}

	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return nil
}

// Dispatch hands fn to the loop; it satisfies the scheduler's Dispatcher.
func (l *Loop) Dispatch(fn func()) error {
	return l.Post(fn)
}

// Run executes posted functions on the calling goroutine until ctx is done
// or Close is called. Functions still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "main-loop")

	defer l.shutdown()

	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}

			l.invoke(ctx, fn)

			if ctx.Err() != nil || l.isDone() {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Close stops Run after the function currently running, if any.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})

	l.shutdown()
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

// invoke runs fn, turning a panic into a log line so the loop survives it.
func (l *Loop) invoke(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorKV(ctx, "Posted function panicked", "panic", r)
		}
	}()

	fn()
}

func (l *Loop) isDone() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.queue = nil
}
