package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// DefaultInterval is the time between two clock reads.
const DefaultInterval = time.Second

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDispatcher sets where the trigger runs. Defaults to Inline.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(s *Scheduler) {
		if dispatcher != nil {
			s.dispatcher = dispatcher
		}
	}
}

// WithInterval sets the polling interval.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// Scheduler fires a trigger once when the wall clock reaches the armed time.
type Scheduler struct {
	// onTrigger is called on the dispatcher's context, once per fired arming.
	// It must not call Cancel or Reset synchronously.
	onTrigger func()
	// clock is read on every tick.
	clock Clock
	// dispatcher delivers the trigger to the consumer.
	dispatcher Dispatcher
	// interval is the time between ticks.
	interval time.Duration

	// mu protects the fields below.
	mu sync.Mutex
	// state is the lifecycle state.
	state alarm.State
	// handle is the current arming, zero when Idle.
	handle alarm.Handle
	// armedAt is when the current arming was made.
	armedAt time.Time
	// firedAt is the clock reading that matched.
	firedAt time.Time
	// delivered is set once onTrigger has been called for the current arming.
	delivered bool
	// stop is closed to end the current worker.
	stop chan struct{}
	// done is closed by the current worker on exit.
	done chan struct{}

	// gate is held for the whole of a delivery, so Cancel can wait one out.
	gate sync.Mutex
}

// New creates an idle scheduler calling onTrigger when an armed alarm fires.
func New(onTrigger func(), opts ...Option) *Scheduler {
	if onTrigger == nil {
		onTrigger = func() {}
	}

	s := &Scheduler{
		onTrigger:  onTrigger,
		clock:      SystemClock{},
		dispatcher: Inline,
		interval:   DefaultInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ArmString parses an HH:MM string and arms the scheduler with it.
func (s *Scheduler) ArmString(ctx context.Context, value string) (alarm.Handle, error) {
	t, err := alarm.ParseTime(value)
	if err != nil {
		return alarm.Handle{}, err
	}

	return s.Arm(ctx, t)
}

// Arm starts polling for t. It fails with alarm.ErrAlreadyArmed while another
// arming is pending, leaving that one untouched. A fired alarm that was not
// reset yet is replaced.
func (s *Scheduler) Arm(ctx context.Context, t alarm.Time) (alarm.Handle, error) {
	if _, err := alarm.NewTime(t.Hour, t.Minute); err != nil {
		return alarm.Handle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == alarm.Armed {
		return alarm.Handle{}, fmt.Errorf("pending alarm at %s: %w", s.handle.Time, alarm.ErrAlreadyArmed)
	}

	s.stopWorkerLocked()

	handle := alarm.NewHandle(t)

	s.state = alarm.Armed
	s.handle = handle
	s.armedAt = time.Now()
	s.firedAt = time.Time{}
	s.delivered = false
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	// The worker outlives the request that armed it.
	ctx = logger.WithName(context.WithoutCancel(ctx), "scheduler")
	ctx = logger.WithKV(ctx, "handle", handle.ID.String(), "alarm_time", t.String())

	go s.poll(ctx, handle, s.stop, s.done)

	logger.InfoKV(ctx, "Alarm armed", "interval", s.interval.String())

	return handle, nil
}

// Cancel disarms the arming identified by h. Canceling a stale handle or an
// idle scheduler is a no-op. Once Cancel returns, no trigger for h starts.
func (s *Scheduler) Cancel(h alarm.Handle) {
	s.mu.Lock()

	if h.IsZero() || h != s.handle || s.state == alarm.Idle {
		s.mu.Unlock()
		return
	}

	s.resetLocked()
	s.mu.Unlock()

	s.waitDelivery()
}

// Reset moves the scheduler to Idle whatever its state.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.waitDelivery()
}

// Close resets the scheduler and waits for the polling goroutine to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	done := s.done
	s.resetLocked()
	s.mu.Unlock()

	s.waitDelivery()

	if done != nil {
		<-done
	}
}

// Status returns a snapshot of the scheduler.
func (s *Scheduler) Status() alarm.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return alarm.Status{
		State:   s.state,
		Handle:  s.handle,
		ArmedAt: s.armedAt,
		FiredAt: s.firedAt,
	}
}

// poll reads the clock now and on every tick until the alarm fires or stop is closed.
func (s *Scheduler) poll(ctx context.Context, h alarm.Handle, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if s.tick(ctx, h) {
			return
		}

		select {
		case <-stop:
			logger.Debug(ctx, "Polling stopped")
			return
		case <-ticker.C:
		}
	}
}

// tick performs one clock check and reports whether polling is over.
func (s *Scheduler) tick(ctx context.Context, h alarm.Handle) bool {
	now, err := s.clock.Now()
	if err != nil {
		logger.WarnKV(ctx, "Clock read failed, retrying on next tick", "error", err)
		return false
	}

	if !h.Time.Matches(now) {
		return false
	}

	s.mu.Lock()

	if s.state != alarm.Armed || s.handle != h {
		s.mu.Unlock()
		return true
	}

	s.state = alarm.Fired
	s.firedAt = now
	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm time reached", "now", now.Format(time.RFC3339))

	if err = s.dispatcher.Dispatch(func() { s.deliver(ctx, h) }); err != nil {
		logger.ErrorKV(ctx, "Unable to hand the trigger over", "error", err)
	}

	return true
}

// deliver runs onTrigger if h is still the fired, undelivered arming.
func (s *Scheduler) deliver(ctx context.Context, h alarm.Handle) {
	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()

	current := s.state == alarm.Fired && s.handle == h && !s.delivered
	if current {
		s.delivered = true
	}

	s.mu.Unlock()

	if !current {
		logger.Info(ctx, "Trigger dropped, the alarm was canceled")
		return
	}

	s.onTrigger()
}

func (s *Scheduler) waitDelivery() {
	s.gate.Lock()
	//nolint:staticcheck // Empty critical section waits for an in-flight delivery.
	s.gate.Unlock()
}

func (s *Scheduler) resetLocked() {
	s.stopWorkerLocked()

	s.state = alarm.Idle
	s.handle = alarm.Handle{}
	s.armedAt = time.Time{}
	s.firedAt = time.Time{}
	s.delivered = false
	s.done = nil
}

func (s *Scheduler) stopWorkerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
