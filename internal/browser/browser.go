// Package browser opens URLs with the host's default handler.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// DefaultTimeout bounds a launcher command.
const DefaultTimeout = 5 * time.Second

// ErrDisabled is returned by Noop.
var ErrDisabled = errors.New("browser launch disabled")

// Opener displays a URL to the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Runner executes a command and waits for it to exit.
type Runner func(ctx context.Context, name string, args ...string) error

// System opens URLs through the platform launcher (open, xdg-open, rundll32).
type System struct {
	goos    string
	timeout time.Duration
	run     Runner
}

// NewSystem returns a System opener for the running platform.
func NewSystem(timeout time.Duration) *System {
	return newSystem(runtime.GOOS, timeout, execRunner)
}

func newSystem(goos string, timeout time.Duration, run Runner) *System {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &System{goos: goos, timeout: timeout, run: run}
}

// Open launches the platform handler for url and waits at most the configured timeout.
func (s *System) Open(ctx context.Context, url string) error {
	name, args := Command(s.goos, url)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.run(ctx, name, args...); err != nil {
		return fmt.Errorf("open %s with %s: %w", url, name, err)
	}
	return nil
}

// Command returns the launcher invocation for goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func execRunner(ctx context.Context, name string, args ...string) error {
	// #nosec G204 -- launcher name is fixed per platform; the URL is passed as a single argument.
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Noop never opens anything.
type Noop struct{}

// Open always returns ErrDisabled.
func (Noop) Open(context.Context, string) error {
	return ErrDisabled
}
