package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Config holds the settings of the alarm clock binaries.
type Config struct {
	// ControlAddress is the gRPC address of the control API. Empty disables it.
	ControlAddress string `yaml:"control_addr"`
	// Timeout is the duration of a single control API call.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is how often the scheduler reads the clock.
	// Values above DefaultPollInterval are lowered to it, so the alarm
	// rings within a second of its minute.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Media is presented when the alarm fires unless overridden on arming.
	Media alarm.Media `yaml:"media"`
	// Players holds the command templates used to present each media kind.
	Players Players `yaml:"players"`
	// Notify enables a desktop notification when the alarm fires.
	Notify *bool `yaml:"notify,omitempty"`
	// Log configures logging.
	Log Log `yaml:"log"`
}

// Players maps every media kind to an argv template.
// The "{file}" placeholder is replaced by the media path.
type Players struct {
	Image []string `yaml:"image"`
	Video []string `yaml:"video"`
	Audio []string `yaml:"audio"`
}

// Command returns the argv template for kind.
func (p Players) Command(kind alarm.MediaKind) []string {
	switch kind {
	case alarm.MediaImage:
		return p.Image
	case alarm.MediaVideo:
		return p.Video
	case alarm.MediaAudio:
		return p.Audio
	default:
		return nil
	}
}

// Log configures the logger.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File enables a rotating log file when set.
	File string `yaml:"file"`
	// MaxSizeMB is the rotation size of the log file.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is how many rotated log files are kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays is how long rotated log files are kept.
	MaxAgeDays int `yaml:"max_age_days"`
}

// FileOptions converts the file settings for the logger, nil when disabled.
func (l Log) FileOptions() *logger.FileOptions {
	if l.File == "" {
		return nil
	}

	return &logger.FileOptions{
		Path:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}

const (
	// DefaultConfigFilename is the default filename for alarm clock settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultTimeout is the default duration for control API calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is how often the clock is read by default.
	DefaultPollInterval = 1 * time.Second

	// DefaultLogMaxSizeMB is the default rotation size of the log file.
	DefaultLogMaxSizeMB = 10

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPlaceholderMissing is returned when a player template never references the file.
	errPlaceholderMissing = errors.New(`player command must contain "{file}"`)
	// errUnknownLogLevel is returned for log levels zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// FilePlaceholder is substituted with the media path in player commands.
const FilePlaceholder = "{file}"

// Default returns the settings used when no configuration file exists.
func Default() *Config {
	cfg := new(Config)

	// Defaults cannot fail validation.
	_ = Validate(cfg)

	return cfg
}

// DefaultPlayers returns mpv based commands for every media kind:
// the image stays on screen, the video plays once and the audio loops.
func DefaultPlayers() Players {
	return Players{
		Image: []string{"mpv", "--fullscreen", "--image-display-duration=inf", FilePlaceholder},
		Video: []string{"mpv", "--fullscreen", FilePlaceholder},
		Audio: []string{"mpv", "--no-video", "--loop-file=inf", FilePlaceholder},
	}
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default location yields Default().
func Load(path string) (*Config, error) {
	isDefaultPath := path == ""
	if isDefaultPath {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if isDefaultPath && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for unset fields.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ControlAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.ControlAddress); err != nil {
			return fmt.Errorf("invalid control address: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.PollInterval <= 0 || settings.PollInterval > DefaultPollInterval {
		settings.PollInterval = DefaultPollInterval
	}

	if err := settings.Media.Validate(); err != nil {
		return fmt.Errorf("invalid media: %w", err)
	}

	defaults := DefaultPlayers()

	for _, player := range []struct {
		command  *[]string
		fallback []string
		kind     alarm.MediaKind
	}{
		{&settings.Players.Image, defaults.Image, alarm.MediaImage},
		{&settings.Players.Video, defaults.Video, alarm.MediaVideo},
		{&settings.Players.Audio, defaults.Audio, alarm.MediaAudio},
	} {
		if len(*player.command) == 0 {
			*player.command = player.fallback
			continue
		}

		if !containsPlaceholder(*player.command) {
			return fmt.Errorf("%s player: %w", player.kind, errPlaceholderMissing)
		}
	}

	if settings.Notify == nil {
		enabled := true
		settings.Notify = &enabled
	}

	if _, ok := logger.ParseLogLevel(settings.Log.Level); !ok {
		return fmt.Errorf("%q: %w", settings.Log.Level, errUnknownLogLevel)
	}

	if settings.Log.File != "" && settings.Log.MaxSizeMB <= 0 {
		settings.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}

	return nil
}

// NotifyEnabled reports whether desktop notifications are on.
func (c *Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}

func containsPlaceholder(command []string) bool {
	for _, arg := range command {
		if strings.Contains(arg, FilePlaceholder) {
			return true
		}
	}

	return false
}
