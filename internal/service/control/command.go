package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Action is the command sent to the alarm clock.
type Action string

const (
	// ActionArm arms the alarm.
	ActionArm Action = "arm"
	// ActionCancel disarms the alarm.
	ActionCancel Action = "cancel"
	// ActionStatus prints the alarm state.
	ActionStatus Action = "status"
	// ActionDismiss stops a ringing alarm.
	ActionDismiss Action = "dismiss"
)

// Options configures one alarm-ctl invocation.
type Options struct {
	// ConfigPath to the YAML settings file, defaults to the standard filename if empty.
	ConfigPath string
	// ServerAddress overrides the control address from config when specified.
	ServerAddress string
	// Action selects the command.
	Action Action
	// Time is the HH:MM value for ActionArm.
	Time string
	// Media overrides the alarm clock's configured media for ActionArm.
	Media domain.Media
	// HandleID selects the arming for ActionCancel; empty means the current one.
	HandleID string
	// Output receives the resulting status.
	Output io.Writer
}

var (
	// errNoControlAddress is returned when no address is configured or given.
	errNoControlAddress = errors.New("no control address configured")
	// errUnknownAction is returned for unsupported actions.
	errUnknownAction = errors.New("unknown action")
)

// Run sends one command to the alarm clock and prints the resulting status.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-ctl")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	serverAddress := cfg.ControlAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	if serverAddress == "" {
		return errNoControlAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Sending command", "server_address", serverAddress, "action", opts.Action)

	status, err := execute(ctx, client, opts)
	if err != nil {
		return err
	}

	if opts.Output != nil {
		_, err = fmt.Fprintln(opts.Output, FormatStatus(status))
	}

	return err
}

func execute(ctx context.Context, client *common.Client, opts *Options) (domain.Status, error) {
	switch opts.Action {
	case ActionArm:
		t, err := domain.ParseTime(opts.Time)
		if err != nil {
			return domain.Status{}, err
		}

		if err = opts.Media.Validate(); err != nil {
			return domain.Status{}, err
		}

		actor, err := common.DetectActor()
		if err != nil {
			logger.WarnKV(ctx, "Unable to detect the current user", "error", err)
		}

		return client.Arm(ctx, &api.ArmRequest{
			Time:  t,
			Media: opts.Media,
			Actor: actor,
		})
	case ActionCancel:
		handleID := uuid.Nil

		if opts.HandleID != "" {
			parsed, err := uuid.Parse(opts.HandleID)
			if err != nil {
				return domain.Status{}, fmt.Errorf("parse handle id: %w", err)
			}

			handleID = parsed
		}

		return client.Cancel(ctx, handleID)
	case ActionStatus:
		return client.Status(ctx)
	case ActionDismiss:
		return client.Dismiss(ctx)
	default:
		return domain.Status{}, fmt.Errorf("%q: %w", opts.Action, errUnknownAction)
	}
}

// FormatStatus renders a status as a single human-readable line.
func FormatStatus(status domain.Status) string {
	switch status.State {
	case domain.Armed:
		return fmt.Sprintf("armed for %s (handle %s, since %s)",
			status.Handle.Time, status.Handle.ID, status.ArmedAt.Format(time.RFC3339))
	case domain.Fired:
		return fmt.Sprintf("ringing since %s (alarm %s, handle %s)",
			status.FiredAt.Format(time.RFC3339), status.Handle.Time, status.Handle.ID)
	default:
		return "idle"
	}
}
