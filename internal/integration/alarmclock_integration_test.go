package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/alarmclock"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// reservePort returns a free local TCP address.
func reservePort(t *testing.T) string {
	t.Helper()

	var lc net.ListenConfig

	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startAlarmClock runs the alarm clock with a control API on addr.
// Returns a stop function that waits for Run to return.
func startAlarmClock(t *testing.T, addr string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	notify := false

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			ControlAddress: addr,
			Timeout:        5 * time.Second,
			PollInterval:   50 * time.Millisecond,
			Notify:         &notify,
		}),
	)

	done := make(chan error, 1)

	go func() {
		done <- alarmclock.Run(ctx, &alarmclock.Options{ConfigPath: cfgPath})
	}()

	// Wait briefly for the control API to start listening.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 25*time.Millisecond)

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

// dial connects a control client to addr.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr, common.WithCallTimeout(2*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestAlarmClock_ArmStatusCancel exercises the control API against a live alarm clock.
func TestAlarmClock_ArmStatusCancel(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	stop := startAlarmClock(t, addr)
	defer stop()

	ctx := context.Background()
	c := dial(t, addr)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Idle, status.State)

	// Two hours ahead never matches during the test.
	target := domain.TimeOf(time.Now().Add(2 * time.Hour))

	status, err = c.Arm(ctx, &api.ArmRequest{
		Time:  target,
		Actor: &domain.Actor{Hostname: "test-host", Username: "test-user"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.Armed, status.State)
	require.Equal(t, target, status.Handle.Time)
	require.NotEqual(t, uuid.Nil, status.Handle.ID)

	// A second arm is rejected and leaves the first one in place.
	_, err = c.Arm(ctx, &api.ArmRequest{Time: target})
	require.ErrorIs(t, err, domain.ErrAlreadyArmed)

	current, err := c.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, status.Handle, current.Handle)

	// Canceling a stale handle is a no-op.
	current, err = c.Cancel(ctx, uuid.New())
	require.NoError(t, err)
	require.Equal(t, domain.Armed, current.State)

	current, err = c.Cancel(ctx, status.Handle.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Idle, current.State)
}

// TestAlarmClock_FiresAndDismisses arms the current minute and waits for the alarm to ring.
func TestAlarmClock_FiresAndDismisses(t *testing.T) {
	t.Parallel()

	// Keep clear of the minute boundary so the armed minute is still current on the first check.
	if now := time.Now(); now.Second() >= 55 {
		time.Sleep(time.Duration(61-now.Second()) * time.Second)
	}

	addr := reservePort(t)

	stop := startAlarmClock(t, addr)
	defer stop()

	ctx := context.Background()
	c := dial(t, addr)

	armed, err := c.Arm(ctx, &api.ArmRequest{Time: domain.TimeOf(time.Now())})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := c.Status(ctx)

		return err == nil && status.State == domain.Fired && status.Handle == armed.Handle
	}, 3*time.Second, 20*time.Millisecond)

	status, err := c.Dismiss(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Idle, status.State)

	// A dismissed alarm clock accepts a new alarm.
	_, err = c.Arm(ctx, &api.ArmRequest{Time: domain.TimeOf(time.Now().Add(2 * time.Hour))})
	require.NoError(t, err)
}

// TestAlarmClock_InvalidTimeOverTheWire checks error code mapping through a real connection.
func TestAlarmClock_InvalidTimeOverTheWire(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)

	stop := startAlarmClock(t, addr)
	defer stop()

	c := dial(t, addr)

	_, err := c.Arm(context.Background(), &api.ArmRequest{
		Time:  domain.TimeOf(time.Now().Add(time.Hour)),
		Media: domain.Media{Audio: "ring.txt"},
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedMedia)
}
