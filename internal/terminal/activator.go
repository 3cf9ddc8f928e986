package terminal

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes one external command. It exists so tests can observe
// the commands an Activator issues without touching tmux.
type Runner interface {
	Run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Activator brings a terminal pane into focus and delivers text into it.
// Every operation is best-effort: failures are logged and swallowed, never
// surfaced to the answer-delivery path.
type Activator struct {
	app    string
	runner Runner
	logger *slog.Logger
}

// NewActivator creates an Activator targeting the given terminal
// application (e.g. "Ghostty"). An empty app skips the app-activation
// step and only selects the tmux pane.
func NewActivator(app string, logger *slog.Logger) *Activator {
	return &Activator{app: app, runner: execRunner{}, logger: logger}
}

// NewActivatorWithRunner is the test constructor.
func NewActivatorWithRunner(app string, runner Runner, logger *slog.Logger) *Activator {
	return &Activator{app: app, runner: runner, logger: logger}
}

// Activate focuses the terminal application and selects the tmux window
// and pane identified by paneID ("session:window.pane" or a raw pane id).
// A missing paneID is a no-op.
func (a *Activator) Activate(paneID string) {
	if paneID == "" {
		return
	}
	if a.app != "" {
		script := fmt.Sprintf("tell application %q to activate", a.app)
		if err := a.runner.Run("osascript", "-e", script); err != nil {
			a.logger.Warn("terminal app activation failed", "app", a.app, "error", err)
		}
	}
	// Selecting the window can fail for bare pane ids; the pane select
	// still works in that case.
	if err := a.runner.Run("tmux", "select-window", "-t", paneID); err != nil {
		a.logger.Debug("tmux select-window failed", "pane", paneID, "error", err)
	}
	if err := a.runner.Run("tmux", "select-pane", "-t", paneID); err != nil {
		a.logger.Warn("tmux select-pane failed", "pane", paneID, "error", err)
	}
}

// SendKeys types text into the tmux pane followed by Enter. Used by the
// fire-and-forget ask mode to deliver the chosen answer to the agent
// waiting in the pane.
func (a *Activator) SendKeys(paneID, text string) {
	if paneID == "" || text == "" {
		return
	}
	if err := a.runner.Run("tmux", "send-keys", "-t", paneID, text, "Enter"); err != nil {
		a.logger.Warn("tmux send-keys failed", "pane", paneID, "error", err)
		return
	}
	a.logger.Info("answer delivered to pane", "pane", paneID)
}
