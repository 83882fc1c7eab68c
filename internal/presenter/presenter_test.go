package presenter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

var errNoDisplay = errors.New("no display")

// fakeProcess records whether it was stopped.
type fakeProcess struct {
	// stopped counts Stop calls.
	stopped int
}

// Stop marks the process as stopped.
func (f *fakeProcess) Stop() error {
	f.stopped++

	return nil
}

// fakeLauncher records launched commands instead of running them.
type fakeLauncher struct {
	mu sync.Mutex
	// commands holds the argv of every launch.
	commands [][]string
	// processes holds the started fake processes.
	processes []*fakeProcess
	// failFor makes launches of this program fail.
	failFor string
}

// Launch records argv and returns a fake process.
func (f *fakeLauncher) Launch(_ context.Context, argv []string) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if argv[0] == f.failFor {
		return nil, errNoDisplay
	}

	f.commands = append(f.commands, argv)
	p := new(fakeProcess)
	f.processes = append(f.processes, p)

	return p, nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	// titles holds the title of every notification.
	titles []string
}

// Notify records the title.
func (f *fakeNotifier) Notify(title, _ string) error {
	f.titles = append(f.titles, title)

	return nil
}

func testPlayers() config.Players {
	return config.Players{
		Image: []string{"viewer", "--full", config.FilePlaceholder},
		Video: []string{"video", config.FilePlaceholder},
		Audio: []string{"audio", "--loop", config.FilePlaceholder},
	}
}

func memFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("data"), 0o600))
	}

	return fs
}

// TestPresenter_StartsAllMediaAndStops verifies every configured media gets a
// player and Stop tears them all down once.
func TestPresenter_StartsAllMediaAndStops(t *testing.T) {
	t.Parallel()

	var (
		launcher = new(fakeLauncher)
		notifier = new(fakeNotifier)
		media    = alarm.Media{Image: "/m/bg.png", Video: "/m/clip.mp4", Audio: "/m/song.mp3"}
	)

	p := New(context.Background(), testPlayers(),
		WithFs(memFs(t, media.Image, media.Video, media.Audio)),
		WithLauncher(launcher),
		WithNotifier(notifier),
		WithMedia(media),
	)

	p.OnTrigger()

	require.True(t, p.Active())
	require.Equal(t, []string{notificationTitle}, notifier.titles)
	require.Equal(t, [][]string{
		{"viewer", "--full", "/m/bg.png"},
		{"video", "/m/clip.mp4"},
		{"audio", "--loop", "/m/song.mp3"},
	}, launcher.commands)

	require.NoError(t, p.Stop())
	require.False(t, p.Active())

	for _, process := range launcher.processes {
		require.Equal(t, 1, process.stopped)
	}

	// Stopping twice does nothing.
	require.NoError(t, p.Stop())

	for _, process := range launcher.processes {
		require.Equal(t, 1, process.stopped)
	}
}

// TestPresenter_SkipsMissingAndFailingMedia keeps presenting what it can.
func TestPresenter_SkipsMissingAndFailingMedia(t *testing.T) {
	t.Parallel()

	launcher := &fakeLauncher{failFor: "viewer"}

	p := New(context.Background(), testPlayers(),
		WithFs(memFs(t, "/m/bg.png", "/m/song.mp3")),
		WithLauncher(launcher),
		WithNotifier(nil),
	)

	p.SetMedia(alarm.Media{Image: "/m/bg.png", Video: "/m/missing.mp4", Audio: "/m/song.mp3"})
	require.Equal(t, "/m/missing.mp4", p.Media().Video)

	p.OnTrigger()

	require.True(t, p.Active())
	require.Equal(t, [][]string{{"audio", "--loop", "/m/song.mp3"}}, launcher.commands)
	require.NoError(t, p.Stop())
}

// TestPresenter_NotificationOnly works without any media.
func TestPresenter_NotificationOnly(t *testing.T) {
	t.Parallel()

	var (
		launcher = new(fakeLauncher)
		notifier = new(fakeNotifier)
	)

	p := New(context.Background(), testPlayers(), WithFs(afero.NewMemMapFs()), WithLauncher(launcher), WithNotifier(notifier))

	p.OnTrigger()

	require.True(t, p.Active())
	require.Len(t, notifier.titles, 1)
	require.Empty(t, launcher.commands)
	require.NoError(t, p.Stop())
}

// TestExpand substitutes every placeholder occurrence.
func TestExpand(t *testing.T) {
	t.Parallel()

	got := expand([]string{"player", "--title={file}", config.FilePlaceholder}, "/a b/c.mp3")
	require.Equal(t, []string{"player", "--title=/a b/c.mp3", "/a b/c.mp3"}, got)
}

// TestExecLauncher_EmptyCommand rejects commands without a program.
func TestExecLauncher_EmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := ExecLauncher{}.Launch(context.Background(), nil)
	require.ErrorIs(t, err, errEmptyCommand)
}
