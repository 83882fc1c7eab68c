package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers ensures loggers travel through the context with their fields.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "scheduler")
	ctx = WithKV(ctx, "handle", "abc")

	InfoKV(ctx, "Alarm armed", "time", "07:30")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "scheduler", entries[0].LoggerName)
	require.Equal(t, "Alarm armed", entries[0].Message)
	require.Equal(t, "abc", entries[0].ContextMap()["handle"])
	require.Equal(t, "07:30", entries[0].ContextMap()["time"])
}

// TestNew_FileSink checks that a file sink receives log lines.
func TestNew_FileSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alarm-clock.log")

	l := New(&Options{File: &FileOptions{Path: path, MaxSizeMB: 1}})
	l.Warnw("Clock read failed", "attempt", 1)
	_ = l.Sync() //nolint:errcheck // Syncing stdout fails when it is a pipe.

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "Clock read failed")
}
