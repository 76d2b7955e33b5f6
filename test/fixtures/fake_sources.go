// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/proctorhq/proctord/internal/domain"
)

// FakeWindowProvider is a settable in-memory window source.
type FakeWindowProvider struct {
	mu      sync.Mutex
	windows []domain.WindowRecord

	PreflightErr error
	Area         float64
}

// NewFakeWindowProvider creates a provider with a 1920x1080 screen.
func NewFakeWindowProvider() *FakeWindowProvider {
	return &FakeWindowProvider{Area: 1920 * 1080}
}

func (f *FakeWindowProvider) Preflight() error {
	return f.PreflightErr
}

func (f *FakeWindowProvider) Snapshot() ([]domain.WindowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.WindowRecord, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *FakeWindowProvider) ScreenArea() float64 {
	return f.Area
}

// SetWindows replaces the visible window set for subsequent snapshots.
func (f *FakeWindowProvider) SetWindows(windows ...domain.WindowRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = windows
}

// OBSCaptureWindow returns a window that matches both the overlay and the
// recording signature categories.
func OBSCaptureWindow() domain.WindowRecord {
	return domain.WindowRecord{
		ID:               101,
		OwnerProcessName: "OBS",
		Title:            "Display Capture",
		Layer:            5,
		Bounds:           domain.Bounds{Width: 1920, Height: 1080},
		IsOnScreen:       true,
		OwnerPID:         7001,
	}
}

// CleanEditorWindow returns a window that matches nothing.
func CleanEditorWindow() domain.WindowRecord {
	return domain.WindowRecord{
		ID:               102,
		OwnerProcessName: "TextEdit",
		Title:            "notes.txt",
		Bounds:           domain.Bounds{Width: 800, Height: 600},
		IsOnScreen:       true,
		OwnerPID:         7002,
	}
}

// HighLayerWindow returns a window matching only the advisory layer rule.
func HighLayerWindow() domain.WindowRecord {
	return domain.WindowRecord{
		ID:               103,
		OwnerProcessName: "MysteryDraw",
		Title:            "canvas",
		Layer:            25,
		Bounds:           domain.Bounds{Width: 400, Height: 300},
		IsOnScreen:       true,
		OwnerPID:         7003,
	}
}

// FakeProcessLister is a settable in-memory process table.
type FakeProcessLister struct {
	mu    sync.Mutex
	names []string
}

func NewFakeProcessLister(names ...string) *FakeProcessLister {
	return &FakeProcessLister{names: names}
}

func (f *FakeProcessLister) RunningNames() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out, nil
}

// SetNames replaces the running process set.
func (f *FakeProcessLister) SetNames(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = names
}

// FakeShortcutTap delivers shortcut events on demand through Press.
type FakeShortcutTap struct {
	mu   sync.Mutex
	fire func(string)
}

func (f *FakeShortcutTap) Start(fire func(string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fire = fire
	return nil
}

func (f *FakeShortcutTap) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fire = nil
}

// Press simulates a capture shortcut keydown.
func (f *FakeShortcutTap) Press(detail string) {
	f.mu.Lock()
	fire := f.fire
	f.mu.Unlock()
	if fire != nil {
		fire(detail)
	}
}

// CountingDestructor records self-destruct spawns instead of launching one.
type CountingDestructor struct {
	mu    sync.Mutex
	paths []string
}

func (d *CountingDestructor) Spawn(installPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, installPath)
	return nil
}

// Spawns returns the recorded install paths, one per spawn.
func (d *CountingDestructor) Spawns() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out
}

// CollectingSink buffers alert records in memory.
type CollectingSink struct {
	mu      sync.Mutex
	records []domain.AlertRecord
}

func (s *CollectingSink) Emit(rec domain.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything emitted so far.
func (s *CollectingSink) Records() []domain.AlertRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AlertRecord, len(s.records))
	copy(out, s.records)
	return out
}

// FakeDesktop simulates the screenshot save directory.
type FakeDesktop struct {
	Dir string
}

// NewFakeDesktop creates an empty screenshot directory under root.
func NewFakeDesktop(root string) (*FakeDesktop, error) {
	dir := filepath.Join(root, "Desktop")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FakeDesktop{Dir: dir}, nil
}

// DropScreenshot writes a file following the capture filename convention.
func (d *FakeDesktop) DropScreenshot(name string) error {
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}
