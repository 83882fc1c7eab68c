package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/alarmclock"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// listenAddress overrides the control API address.
	listenAddress string
	// media overrides the configured media for the alarm given as argument.
	media alarm.Media
	// noInput disables interactive commands on stdin.
	noInput bool

	// rootCmd represents the base command for running the alarm clock.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock [HH:MM]",
		Short: "Ring an alarm at the given time.",
		Long: `Waits for the given wall-clock time (24-hour HH:MM) and then rings the alarm:
a desktop notification, the background image, the video and the looping audio
configured in the settings file or given as flags.

Press Enter (or type "stop") to dismiss a ringing alarm, "cancel" to disarm a
pending one and "status" to print the current state.

When a control address is configured (or --listen is given), the alarm clock keeps
running and accepts commands from alarm-ctl. Otherwise it exits after the alarm
is dismissed or canceled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Usage errors are reported before the alarm starts.
			cmd.SilenceUsage = true

			options := &alarmclock.Options{
				ConfigPath:    configPath,
				Media:         media,
				ListenAddress: listenAddress,
			}

			if len(args) > 0 {
				options.Time = args[0]
			}

			if !noInput {
				options.Input = cmd.InOrStdin()
			}

			return alarmclock.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "control API listen address, overrides the settings")
	rootCmd.Flags().StringVar(&media.Image, "image", "", "background image (.jpg, .png)")
	rootCmd.Flags().StringVar(&media.Video, "video", "", "video played once (.mp4, .avi)")
	rootCmd.Flags().StringVar(&media.Audio, "audio", "", "audio looped until dismissed (.mp3, .wav)")
	rootCmd.Flags().BoolVar(&noInput, "no-input", false, "do not read commands from stdin")
}
