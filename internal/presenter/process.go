package presenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Process is a running media player.
type Process interface {
	// Stop kills the player if it is still running and waits for it to exit.
	Stop() error
}

// Launcher starts media players.
type Launcher interface {
	Launch(ctx context.Context, argv []string) (Process, error)
}

// errEmptyCommand is returned when a player command has no program.
var errEmptyCommand = errors.New("empty player command")

// ExecLauncher starts players as child processes.
// The processes are killed when the context passed to Launch is done.
type ExecLauncher struct{}

// Launch starts argv without waiting for it; the OS takes over the rest.
func (ExecLauncher) Launch(ctx context.Context, argv []string) (Process, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errEmptyCommand
	}

	//nolint:gosec // The player command comes from the user's own settings file.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	p := &execProcess{
		cmd:  cmd,
		done: make(chan struct{}),
	}

	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// execProcess tracks a started command.
type execProcess struct {
	// cmd is the started command.
	cmd *exec.Cmd
	// done is closed once the command exited.
	done chan struct{}
	// err is the exit error, valid after done is closed.
	err error
}

// Stop kills the process unless it already exited on its own.
func (p *execProcess) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill pid %d: %w", p.cmd.Process.Pid, err)
	}

	<-p.done

	return nil
}
