package alarmclock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// alarmPresenter is what the service needs from the presenter.
type alarmPresenter interface {
	SetMedia(media domain.Media)
	OnTrigger()
	Stop() error
	Active() bool
}

// service encapsulates the alarm clock business logic.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// scheduler owns the armed time and the polling goroutine.
	scheduler *scheduler.Scheduler
	// presenter shows the alarm when it fires.
	presenter alarmPresenter
	// defaults is the configured media used for empty slots.
	defaults domain.Media
	// onIdle is called after a cancel or dismissal brought the alarm back to idle.
	onIdle func()

	// mu makes arming and recording its media one step, so a trigger
	// delivered right after arming sees the media of that arming.
	mu sync.Mutex
	// media is what the current arming presents.
	media domain.Media
}

// newService creates a service presenting through p.
func newService(p alarmPresenter, defaults domain.Media, opts ...scheduler.Option) *service {
	s := &service{
		presenter: p,
		defaults:  defaults,
		onIdle:    func() {},
	}

	s.scheduler = scheduler.New(s.trigger, opts...)

	return s
}

// Arm arms the alarm; empty media slots fall back to the configured defaults.
func (s *service) Arm(ctx context.Context, actor *domain.Actor, t domain.Time, media domain.Media) (domain.Status, error) {
	if err := media.Validate(); err != nil {
		return domain.Status{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.scheduler.Arm(ctx, t); err != nil {
		logger.WarnKV(ctx, "Arm rejected", "time", t.String(), "actor", actor.String(), "error", err)

		return domain.Status{}, err
	}

	s.media = media.Merge(s.defaults)

	// Arming replaces a fired alarm, so whatever it still plays goes too.
	// A trigger of the new arming waits for mu and cannot be stopped here.
	s.stopPresentation(ctx)

	logger.InfoKV(ctx, "Alarm set", "time", t.String(), "actor", actor.String())

	return s.scheduler.Status(), nil
}

// Cancel disarms the alarm with handleID, or the current one for uuid.Nil.
// Canceling an alarm that already fired dismisses it.
func (s *service) Cancel(ctx context.Context, handleID uuid.UUID) (domain.Status, error) {
	current := s.scheduler.Status()

	if current.State == domain.Idle || (handleID != uuid.Nil && handleID != current.Handle.ID) {
		logger.DebugKV(ctx, "Nothing to cancel", "handle", handleID.String())

		return current, nil
	}

	// The alarm may fire between the snapshot and here; Cancel covers both
	// states and the presentation is stopped either way.
	s.scheduler.Cancel(current.Handle)
	s.stopPresentation(ctx)

	logger.InfoKV(ctx, "Alarm canceled", "time", current.Handle.Time.String())

	status := s.scheduler.Status()
	if status.State == domain.Idle {
		s.onIdle()
	}

	return status, nil
}

// Status returns the current scheduler status.
func (s *service) Status(context.Context) domain.Status {
	return s.scheduler.Status()
}

// Dismiss stops a ringing alarm. A pending alarm that has not fired is left armed.
func (s *service) Dismiss(ctx context.Context) (domain.Status, error) {
	current := s.scheduler.Status()
	if current.State == domain.Armed {
		if !s.presenter.Active() {
			logger.Info(ctx, "Alarm has not fired yet, nothing to dismiss")
		}

		s.stopPresentation(ctx)

		return s.scheduler.Status(), nil
	}

	// Reset first: a trigger still queued for the loop is dropped.
	s.scheduler.Reset()
	s.stopPresentation(ctx)

	if current.State == domain.Fired {
		logger.Info(ctx, "Alarm dismissed")
		s.onIdle()
	}

	return s.scheduler.Status(), nil
}

// stopPresentation stops the presenter if it is showing an alarm.
func (s *service) stopPresentation(ctx context.Context) {
	if !s.presenter.Active() {
		return
	}

	if err := s.presenter.Stop(); err != nil {
		logger.WarnKV(ctx, "Stopping the presentation failed", "error", err)
	}
}

// Close stops the scheduler and any presentation.
func (s *service) Close() {
	s.scheduler.Close()

	//nolint:errcheck // Failures are logged by the presenter.
	_ = s.presenter.Stop()
}

// trigger runs on the main loop when the alarm fires.
func (s *service) trigger() {
	s.mu.Lock()
	media := s.media
	s.mu.Unlock()

	s.presenter.SetMedia(media)
	s.presenter.OnTrigger()
}
