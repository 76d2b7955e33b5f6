package infra

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner abstracts command execution for testing.
type CommandRunner interface {
	Output(name string, args ...string) ([]byte, error)
}

// RealCommandRunner executes real system commands.
type RealCommandRunner struct{}

// Output executes a command and returns its stdout.
func (r *RealCommandRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// ScreenshotDirLocator resolves the user's screenshot save location.
// The capture utility's location preference is read from the screencapture
// defaults domain; absent or unreadable, the stock Desktop location applies.
type ScreenshotDirLocator struct {
	runner  CommandRunner
	homeDir string
}

// NewScreenshotDirLocator creates a locator using the real home and runner.
func NewScreenshotDirLocator() *ScreenshotDirLocator {
	home, _ := os.UserHomeDir()
	return &ScreenshotDirLocator{runner: &RealCommandRunner{}, homeDir: home}
}

// NewScreenshotDirLocatorWith creates a locator with injected collaborators
// (for testing).
func NewScreenshotDirLocatorWith(runner CommandRunner, homeDir string) *ScreenshotDirLocator {
	return &ScreenshotDirLocator{runner: runner, homeDir: homeDir}
}

// Locate returns the screenshot save directory, or empty when no candidate
// directory exists on disk.
func (l *ScreenshotDirLocator) Locate() string {
	out, err := l.runner.Output("defaults", "read", "com.apple.screencapture", "location")
	if err == nil {
		dir := l.expandHome(strings.TrimSpace(string(out)))
		if dirExists(dir) {
			return dir
		}
	}

	desktop := filepath.Join(l.homeDir, "Desktop")
	if dirExists(desktop) {
		return desktop
	}
	return ""
}

func (l *ScreenshotDirLocator) expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
