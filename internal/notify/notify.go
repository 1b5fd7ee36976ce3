// Package notify delivers the user-facing connection notifications
// ("connected", "disconnected — reconnecting", "stopped"). Delivery is best
// effort: a notifier that cannot reach the desktop logs and moves on.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const commandTimeout = 5 * time.Second

// Notifier delivers one user-facing notification.
type Notifier interface {
	Notify(title, body string)
}

// Func adapts a function to the Notifier interface.
type Func func(title, body string)

func (f Func) Notify(title, body string) { f(title, body) }

// Log returns a notifier that only writes structured log lines. It is the
// default presentation and the fallback on platforms without a desktop
// notification command.
func Log() Notifier {
	return Func(func(title, body string) {
		slog.Info("notification", "title", title, "body", body)
	})
}

// Desktop returns a notifier for the current platform: osascript on macOS,
// notify-send on Linux, log-only elsewhere. Command failures are logged and
// swallowed.
func Desktop() Notifier {
	switch runtime.GOOS {
	case "darwin":
		return commandNotifier{run: runOsascript}
	case "linux":
		return commandNotifier{run: runNotifySend}
	default:
		return Log()
	}
}

type commandNotifier struct {
	run func(title, body string) error
}

func (n commandNotifier) Notify(title, body string) {
	if err := n.run(title, body); err != nil {
		slog.Warn("desktop notification failed", "title", title, "err", err)
	}
}

func runOsascript(title, body string) error {
	script := fmt.Sprintf("display notification %q with title %q",
		sanitize(body), sanitize(title))
	return runCommand("osascript", "-e", script)
}

func runNotifySend(title, body string) error {
	return runCommand("notify-send", sanitize(title), sanitize(body))
}

// sanitize strips characters that would break the osascript string literal.
func sanitize(s string) string {
	return strings.NewReplacer(`"`, "'", "\\", "").Replace(s)
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(commandTimeout):
		_ = cmd.Process.Kill()
		return fmt.Errorf("%s timed out", name)
	}
}
