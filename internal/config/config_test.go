package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty settings get defaults.
	settings := new(Config)

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultPollInterval, settings.PollInterval)
	require.Equal(t, DefaultPlayers(), settings.Players)
	require.True(t, settings.NotifyEnabled())

	// Bad control address.
	settings = &Config{
		ControlAddress: "bad:address",
	}

	require.Error(t, Validate(settings))

	// Unsupported media.
	settings = &Config{
		Media: alarm.Media{Audio: "song.flac"},
	}

	require.ErrorIs(t, Validate(settings), alarm.ErrUnsupportedMedia)

	// Player command without the file placeholder.
	settings = &Config{
		Players: Players{Audio: []string{"mpv", "--loop"}},
	}

	require.ErrorIs(t, Validate(settings), errPlaceholderMissing)

	// Placeholder embedded in an argument.
	settings = &Config{
		Players: Players{Image: []string{"viewer", "--open={file}"}},
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, []string{"viewer", "--open={file}"}, settings.Players.Image)

	// Slow polling is capped so the alarm rings within a second.
	settings = &Config{
		PollInterval: time.Minute,
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultPollInterval, settings.PollInterval)

	// Unknown log level.
	settings = &Config{
		Log: Log{Level: "verbose"},
	}

	require.ErrorIs(t, Validate(settings), errUnknownLogLevel)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	notify := false
	settings := &Config{
		ControlAddress: "127.0.0.1:50061",
		PollInterval:   500 * time.Millisecond,
		Media: alarm.Media{
			Image: "/pictures/sunrise.png",
			Audio: "/music/rooster.mp3",
		},
		Notify: &notify,
		Log: Log{
			Level: "debug",
			File:  filepath.Join(dir, "alarm.log"),
		},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ControlAddress, loaded.ControlAddress)
	require.Equal(t, settings.PollInterval, loaded.PollInterval)
	require.Equal(t, settings.Media, loaded.Media)
	require.False(t, loaded.NotifyEnabled())
	require.Equal(t, DefaultLogMaxSizeMB, loaded.Log.FileOptions().MaxSizeMB)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_Missing distinguishes an explicit missing path from the default one.
func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Nil(t, Log{}.FileOptions())
}
