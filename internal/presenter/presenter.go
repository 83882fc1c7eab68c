package presenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// notificationTitle is the title of the desktop alert.
const notificationTitle = "Alarm!"

// Option configures a Presenter.
type Option func(*Presenter)

// WithFs sets the filesystem media files are looked up on.
func WithFs(fs afero.Fs) Option {
	return func(p *Presenter) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// WithNotifier sets the desktop notifier; nil disables notifications.
func WithNotifier(n Notifier) Option {
	return func(p *Presenter) {
		p.notifier = n
	}
}

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(p *Presenter) {
		if l != nil {
			p.launcher = l
		}
	}
}

// WithMedia sets the initial media.
func WithMedia(m alarm.Media) Option {
	return func(p *Presenter) {
		p.media = m
	}
}

// Presenter plays the alarm media until stopped.
type Presenter struct {
	// ctx bounds the lifetime of started players and carries the logger.
	//nolint:containedctx // OnTrigger takes no arguments, the players need a parent context.
	ctx context.Context
	// fs is where media files are checked.
	fs afero.Fs
	// players holds the command templates per media kind.
	players config.Players
	// notifier raises the desktop alert, nil when disabled.
	notifier Notifier
	// launcher starts players.
	launcher Launcher

	// mu protects the fields below.
	mu sync.Mutex
	// media is what the next trigger presents.
	media alarm.Media
	// running holds the players started by the current presentation.
	running []Process
	// active is set from OnTrigger until Stop.
	active bool
}

// New creates a presenter using players to show media.
func New(ctx context.Context, players config.Players, opts ...Option) *Presenter {
	p := &Presenter{
		ctx:      logger.WithName(ctx, "presenter"),
		fs:       afero.NewOsFs(),
		players:  players,
		notifier: DesktopNotifier{},
		launcher: ExecLauncher{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SetMedia changes what the next trigger presents.
func (p *Presenter) SetMedia(m alarm.Media) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.media = m
}

// Media returns what the next trigger presents.
func (p *Presenter) Media() alarm.Media {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.media
}

// Active reports whether an alarm is being presented.
func (p *Presenter) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.active
}

// OnTrigger presents the alarm. Failures are logged, never returned:
// a missing player must not keep the user from being woken up by the rest.
func (p *Presenter) OnTrigger() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		_ = p.stopLocked() //nolint:errcheck // Failures are logged inside.
	}

	p.active = true

	ctx := p.ctx
	media := p.media

	logger.InfoKV(ctx, "Presenting alarm", "image", media.Image, "video", media.Video, "audio", media.Audio)

	if p.notifier != nil {
		message := fmt.Sprintf("It is %s.", time.Now().Format("15:04"))
		if err := p.notifier.Notify(notificationTitle, message); err != nil {
			logger.WarnKV(ctx, "Desktop notification failed", "error", err)
		}
	}

	if media.IsEmpty() {
		logger.Info(ctx, "No media configured, notification only")
		return
	}

	for _, kind := range []alarm.MediaKind{alarm.MediaImage, alarm.MediaVideo, alarm.MediaAudio} {
		path := media.Path(kind)
		if path == "" {
			continue
		}

		process, err := p.start(ctx, kind, path)
		if err != nil {
			logger.WarnKV(ctx, "Unable to present media", "kind", kind, "path", path, "error", err)
			continue
		}

		p.running = append(p.running, process)
	}
}

// Stop stops every player started by the last trigger. It is idempotent.
func (p *Presenter) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return nil
	}

	err := p.stopLocked()

	logger.Info(p.ctx, "Alarm presentation stopped")

	return err
}

// errMediaMissing is returned when a media file does not exist.
var errMediaMissing = errors.New("media file not found")

func (p *Presenter) start(ctx context.Context, kind alarm.MediaKind, path string) (Process, error) {
	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat media: %w", err)
	}

	if !exists {
		return nil, errMediaMissing
	}

	argv := expand(p.players.Command(kind), path)

	process, err := p.launcher.Launch(p.ctx, argv)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Player started", "kind", kind, "command", strings.Join(argv, " "))

	return process, nil
}

func (p *Presenter) stopLocked() error {
	var errs []error

	for _, process := range p.running {
		if err := process.Stop(); err != nil {
			logger.WarnKV(p.ctx, "Unable to stop player", "error", err)
			errs = append(errs, err)
		}
	}

	p.running = nil
	p.active = false

	return errors.Join(errs...)
}

// expand substitutes the media path into a player command template.
func expand(template []string, path string) []string {
	argv := make([]string, len(template))

	for i, arg := range template {
		argv[i] = strings.ReplaceAll(arg, config.FilePlaceholder, path)
	}

	return argv
}
