// Package desktop holds the interactive steps around a run: opening the
// config in an editor, asking for confirmation and showing the output
// directory in a file browser.
package desktop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Prompt is shown before a run unless it is skipped.
const Prompt = "If you have edited the config-file, Please Enter-key or [y/n]: "

// Declined is printed when the user does not confirm.
const Declined = "Please start over!!"

// ErrDeclined is returned by Confirm when the answer is not empty or "y".
var ErrDeclined = errors.New("run declined")

// ShouldPrompt reports whether the confirmation prompt is shown on goos.
// Windows never prompts.
func ShouldPrompt(goos string, skip bool) bool {
	return !skip && goos != "windows"
}

// Confirm writes Prompt to out and reads one line from in. An empty answer
// or "y" confirms; end of input counts as an empty answer. Anything else
// writes Declined and returns ErrDeclined.
func Confirm(in io.Reader, out io.Writer) error {
	if _, err := io.WriteString(out, Prompt); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading answer: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "", "y":
		return nil
	default:
		fmt.Fprintln(out, Declined)
		return ErrDeclined
	}
}

// EditorCommand returns the command that opens path for editing on goos.
func EditorCommand(goos, path string) []string {
	switch goos {
	case "windows":
		return []string{"notepad", path}
	case "darwin":
		return []string{"open", path}
	default:
		return []string{"gedit", path, "--new-window"}
	}
}

// BrowserCommand returns the command that shows dir in a file browser on
// goos. A non-empty browser overrides the platform default.
func BrowserCommand(goos, browser, dir string) []string {
	if browser != "" {
		return append(strings.Fields(browser), dir)
	}
	switch goos {
	case "windows":
		return []string{"explorer", dir}
	case "darwin":
		return []string{"open", dir}
	default:
		return []string{"nautilus", dir}
	}
}

// Launcher runs desktop commands.
type Launcher struct {
	logger *slog.Logger
	run    func(ctx context.Context, wait bool, argv []string) error
}

// NewLauncher creates a Launcher that executes commands with os/exec.
func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{logger: logger, run: execCommand}
}

// Edit opens path in the platform editor and waits for it to exit.
func (l *Launcher) Edit(ctx context.Context, goos, path string) error {
	argv := EditorCommand(goos, path)
	l.logger.Info("opening config in editor", "command", argv[0], "path", path)
	if err := l.run(ctx, true, argv); err != nil {
		return fmt.Errorf("running editor %s: %w", argv[0], err)
	}
	return nil
}

// Browse starts a file browser on dir without waiting. A failure is only
// logged; the output is already on disk.
func (l *Launcher) Browse(ctx context.Context, goos, browser, dir string) {
	argv := BrowserCommand(goos, browser, dir)
	if err := l.run(ctx, false, argv); err != nil {
		l.logger.Warn("could not open file browser", "command", argv[0], "dir", dir, "error", err)
		return
	}
	l.logger.Debug("file browser started", "command", argv[0], "dir", dir)
}

func execCommand(ctx context.Context, wait bool, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	if !wait {
		// The browser outlives the run, so it is not tied to ctx.
		cmd := exec.Command(argv[0], argv[1:]...)
		if err := cmd.Start(); err != nil {
			return err
		}
		go cmd.Wait()
		return nil
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}
