package alarmclock

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/mainloop"
	"github.com/oshokin/alarm-clock/internal/presenter"
	"github.com/oshokin/alarm-clock/internal/scheduler"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options controls the alarm-clock process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Time is the HH:MM alarm to arm at start-up, empty to wait for the control API.
	Time string
	// Media overrides the configured media for the start-up alarm.
	Media domain.Media
	// ListenAddress overrides the control API address from the settings.
	ListenAddress string
	// Input is read for interactive commands; nil disables them.
	Input io.Reader
}

// errNothingToDo is returned when neither an alarm time nor a control API is given.
var errNothingToDo = errors.New("no alarm time given and control API disabled")

// Run arms the alarm and drives the main loop on the calling goroutine until
// ctx is canceled. Without a control API it returns once the alarm has been
// dismissed or canceled.
//
//nolint:cyclop,funlen // Start-up wiring reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first, the logger depends on it.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	configureLogger(cfg.Log)

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	controlAddress := cfg.ControlAddress
	if opts.ListenAddress != "" {
		controlAddress = opts.ListenAddress
	}

	if opts.Time == "" && controlAddress == "" {
		return errNothingToDo
	}

	warnOtherInstances(ctx)

	var notifier presenter.Notifier
	if cfg.NotifyEnabled() {
		notifier = presenter.DesktopNotifier{}
	}

	loop := mainloop.New()
	defer loop.Close()

	svc := newService(
		presenter.New(ctx, cfg.Players, presenter.WithNotifier(notifier)),
		cfg.Media,
		scheduler.WithDispatcher(loop),
		scheduler.WithInterval(cfg.PollInterval),
	)
	defer svc.Close()

	if controlAddress == "" {
		// Nobody can arm a new alarm, so the first dismissal ends the process.
		svc.onIdle = loop.Close
	}

	if opts.Time != "" {
		if err = armAtStartup(ctx, svc, opts); err != nil {
			return err
		}
	}

	var grpcServer *grpc.Server

	serveErr := make(chan error, 1)

	if controlAddress != "" {
		lc := net.ListenConfig{}

		lis, err := lc.Listen(ctx, "tcp", controlAddress)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", controlAddress, err)
		}

		grpcServer = grpc.NewServer()
		api.RegisterAlarmClockServer(grpcServer, api.NewServer(svc))

		logger.InfoKV(ctx, "Control API listening", "listen_address", lis.Addr().String())

		go func() {
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serveErr <- fmt.Errorf("serve gRPC: %w", err)

				loop.Close()
			}
		}()
	}

	if opts.Input != nil {
		go readCommands(ctx, opts.Input, svc)
	}

	err = loop.Run(ctx)

	if grpcServer != nil {
		logger.Info(ctx, "Shutting down control API")
		grpcServer.GracefulStop()
	}

	select {
	case serr := <-serveErr:
		return serr
	default:
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// armAtStartup arms the alarm given on the command line.
func armAtStartup(ctx context.Context, svc *service, opts *Options) error {
	t, err := domain.ParseTime(opts.Time)
	if err != nil {
		return err
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect the current user", "error", err)
	}

	if _, err = svc.Arm(ctx, actor, t, opts.Media); err != nil {
		return fmt.Errorf("arm alarm: %w", err)
	}

	return nil
}

// configureLogger applies the log settings to the global logger.
func configureLogger(settings config.Log) {
	// Validated on load.
	level, _ := logger.ParseLogLevel(settings.Level)
	logger.SetLevel(level)

	if fileOptions := settings.FileOptions(); fileOptions != nil {
		logger.SetLogger(logger.New(&logger.Options{File: fileOptions}))
	}
}

// warnOtherInstances logs other running alarm clocks; two of them ringing at
// once is rarely what the user wants.
func warnOtherInstances(ctx context.Context) {
	pids, err := common.OtherInstances(common.ExecutableName())
	if err != nil {
		logger.DebugKV(ctx, "Unable to scan processes", "error", err)
		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "Another alarm clock is already running", "pids", pids)
	}
}

// readCommands handles interactive commands until input ends:
// an empty line or "stop" dismisses, "cancel" disarms, "status" prints the state.
func readCommands(ctx context.Context, input io.Reader, svc *service) {
	scanner := bufio.NewScanner(input)

	for scanner.Scan() {
		switch command := strings.ToLower(strings.TrimSpace(scanner.Text())); command {
		case "", "stop", "dismiss":
			_, _ = svc.Dismiss(ctx) //nolint:errcheck // Dismiss logs its own failures.
		case "cancel":
			_, _ = svc.Cancel(ctx, uuid.Nil) //nolint:errcheck // Cancel logs its own failures.
		case "status":
			st := svc.Status(ctx)
			logger.InfoKV(ctx, "Alarm status", "state", st.State.String(), "time", st.Handle.Time.String())
		default:
			logger.WarnKV(ctx, "Unknown command, use stop, cancel or status", "command", command)
		}
	}
}
