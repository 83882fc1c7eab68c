package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/control"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the configuration file path.
	configPath string
	// serverAddress overrides the control address from the settings.
	serverAddress string
	// media overrides the alarm clock's media for arm.
	media alarm.Media

	// rootCmd represents the base command for controlling a running alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-ctl",
		Short: "Control a running alarm clock.",
		Long: `Sends commands to an alarm clock started with a control address.

The server address is taken from the configuration file unless --server is given.`,
		SilenceUsage: true,
	}
)

// Execute runs the alarm-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newActionCommand builds a subcommand sending action to the alarm clock.
func newActionCommand(action control.Action, use, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &control.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Action:        action,
				Output:        cmd.OutOrStdout(),
			}

			switch action {
			case control.ActionArm:
				options.Time = args[0]
				options.Media = media
			case control.ActionCancel:
				if len(args) > 0 {
					options.HandleID = args[0]
				}
			case control.ActionStatus, control.ActionDismiss:
			}

			return control.Run(ctx, options)
		},
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "alarm clock control address")

	armCmd := newActionCommand(control.ActionArm, "arm HH:MM", "Arm the alarm for the given time.", cobra.ExactArgs(1))
	armCmd.Flags().StringVar(&media.Image, "image", "", "background image (.jpg, .png)")
	armCmd.Flags().StringVar(&media.Video, "video", "", "video played once (.mp4, .avi)")
	armCmd.Flags().StringVar(&media.Audio, "audio", "", "audio looped until dismissed (.mp3, .wav)")

	rootCmd.AddCommand(
		armCmd,
		newActionCommand(control.ActionCancel, "cancel [handle-id]", "Disarm the pending alarm.", cobra.MaximumNArgs(1)),
		newActionCommand(control.ActionStatus, "status", "Print the alarm state.", cobra.NoArgs),
		newActionCommand(control.ActionDismiss, "dismiss", "Stop the ringing alarm.", cobra.NoArgs),
	)
}
