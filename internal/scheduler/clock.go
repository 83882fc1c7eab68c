package scheduler

import "time"

// Clock reads the current wall-clock time.
type Clock interface {
	Now() (time.Time, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() (time.Time, error)

// Now calls f.
func (f ClockFunc) Now() (time.Time, error) {
	return f()
}

// SystemClock reads the local time of the machine.
type SystemClock struct{}

// Now returns time.Now in the local location.
func (SystemClock) Now() (time.Time, error) {
	return time.Now(), nil
}

// Dispatcher runs functions on the consumer's execution context.
// Dispatch must not block on the function finishing.
type Dispatcher interface {
	Dispatch(fn func()) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func()) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(fn func()) error {
	return f(fn)
}

// Inline runs the trigger on the polling goroutine itself.
// Useful for headless hosts that have no main loop.
//
//nolint:gochecknoglobals // Stateless adapter.
var Inline Dispatcher = DispatcherFunc(func(fn func()) error {
	fn()

	return nil
})
