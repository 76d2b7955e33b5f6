// Package daemon implements the detection engine and its event sources.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/proctorhq/proctord/internal/domain"
	"github.com/proctorhq/proctord/internal/signature"
)

// EngineConfig holds detection engine timing.
type EngineConfig struct {
	PollInterval        time.Duration // window snapshot/classify tick
	ProcessScanInterval time.Duration // blacklist tick
	ScreenshotDir       string        // empty disables the file source
	ScreenshotRecency   time.Duration
}

// DefaultEngineConfig returns the stock timing: 1s window tick, 5s process
// tick, 5s screenshot recency.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PollInterval:        time.Second,
		ProcessScanInterval: 5 * time.Second,
		ScreenshotRecency:   5 * time.Second,
	}
}

// Callbacks receive engine output. All of them may be invoked concurrently:
// the window tick, the blacklist tick, the keyboard tap, and the filesystem
// watcher are independent producers.
type Callbacks struct {
	// OnViolation delivers one event per matched category per window, plus
	// screenshot events from either screenshot source.
	OnViolation func(ev domain.ViolationEvent)

	// OnBlacklistedApp delivers blacklist matches on their own coarse path.
	OnBlacklistedApp func(name string)

	// OnError reports non-fatal detection failures. The engine keeps running.
	OnError func(err error)
}

// Engine owns the polling loop, fans window snapshots through the classifier,
// and merges in asynchronous screenshot and blacklist events. It does not
// decide criticality; that is the session controller's job.
type Engine struct {
	config     EngineConfig
	windows    domain.WindowProvider
	classifier *signature.Classifier
	blacklist  *BlacklistMonitor
	tap        domain.ShortcutTap
	callbacks  Callbacks
	logger     *zap.Logger

	// stopped gates event delivery: a stopped engine must drop any
	// callback that still arrives in-flight.
	stopped atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	shots   *ScreenshotWatcher
}

// NewEngine wires the engine from its event sources. tap may be nil
// (shortcut interception unavailable); an empty ScreenshotDir disables the
// file source. Either loss degrades detection, it never prevents the
// window-poll loop from operating.
func NewEngine(
	config EngineConfig,
	windows domain.WindowProvider,
	blacklist *BlacklistMonitor,
	tap domain.ShortcutTap,
	callbacks Callbacks,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		config:     config,
		windows:    windows,
		classifier: signature.NewClassifier(windows.ScreenArea()),
		blacklist:  blacklist,
		tap:        tap,
		callbacks:  callbacks,
		logger:     logger,
	}
}

// Start checks the window-listing permission once, then launches the polling
// loop and registers both screenshot sources. A permission failure aborts the
// start; a screenshot source failing to install only degrades.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine already running")
	}

	if err := e.windows.Preflight(); err != nil {
		return fmt.Errorf("window listing preflight: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.stopped.Store(false)

	if e.tap != nil {
		if err := e.tap.Start(e.emitShortcutScreenshot); err != nil {
			e.logger.Warn("keyboard shortcut source unavailable", zap.Error(err))
			e.reportError(fmt.Errorf("shortcut tap install: %w", err))
		}
	}

	if e.config.ScreenshotDir != "" {
		shots := NewScreenshotWatcher(e.config.ScreenshotDir, e.config.ScreenshotRecency,
			e.emitFileScreenshot, e.logger)
		if err := shots.Start(); err != nil {
			e.logger.Warn("screenshot file source unavailable", zap.Error(err))
			e.reportError(fmt.Errorf("screenshot watch install: %w", err))
		} else {
			e.shots = shots
		}
	}

	e.running = true
	go e.run(ctx)

	e.logger.Info("detection engine started",
		zap.Duration("poll_interval", e.config.PollInterval),
		zap.Duration("process_scan_interval", e.config.ProcessScanInterval),
		zap.String("screenshot_dir", e.config.ScreenshotDir))
	return nil
}

// Stop halts event delivery before returning: the stopped gate is flipped
// first, so no callback fires after Stop. Idempotent.
//
// Stop is reachable from the engine's own delivery goroutines (a critical
// violation stops the engine from inside a callback), and joining a source
// from its own delivery thread would deadlock. Source teardown therefore
// happens off to the side.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.stopped.Store(true)
	cancel := e.cancel
	shots := e.shots
	e.shots = nil
	e.mu.Unlock()

	cancel()
	go func() {
		if e.tap != nil {
			e.tap.Stop()
		}
		if shots != nil {
			shots.Stop()
		}
	}()

	e.logger.Info("detection engine stopped")
}

// run drives the two tickers until cancellation.
func (e *Engine) run(ctx context.Context) {
	pollTicker := time.NewTicker(e.config.PollInterval)
	processTicker := time.NewTicker(e.config.ProcessScanInterval)
	defer pollTicker.Stop()
	defer processTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pollTicker.C:
			e.pollWindows()

		case <-processTicker.C:
			e.scanProcesses()
		}
	}
}

// pollWindows captures one snapshot and classifies every window
// independently. A failed snapshot skips this tick only.
func (e *Engine) pollWindows() {
	windows, err := e.windows.Snapshot()
	if err != nil {
		e.logger.Debug("window snapshot failed, skipping tick", zap.Error(err))
		return
	}

	now := time.Now()
	for _, w := range windows {
		for _, m := range e.classifier.Classify(w) {
			e.emit(domain.ViolationEvent{
				Kind:      m.Kind,
				Details:   m.Details,
				Window:    w,
				Timestamp: now,
			})
		}
	}
}

// scanProcesses runs one blacklist pass.
func (e *Engine) scanProcesses() {
	if e.blacklist == nil {
		return
	}
	name, ok := e.blacklist.ScanOnce()
	if !ok || e.stopped.Load() {
		return
	}
	e.logger.Info("blacklisted application running", zap.String("name", name))
	if e.callbacks.OnBlacklistedApp != nil {
		e.callbacks.OnBlacklistedApp(name)
	}
}

// emitShortcutScreenshot is invoked from the keyboard tap's delivery thread.
func (e *Engine) emitShortcutScreenshot(detail string) {
	e.emit(domain.ViolationEvent{
		Kind:      domain.ViolationScreenshotDetected,
		Details:   "Screenshot shortcut pressed: " + detail,
		Window:    domain.PlaceholderScreenshotWindow(),
		Timestamp: time.Now(),
	})
}

// emitFileScreenshot is invoked from the filesystem watcher goroutine.
func (e *Engine) emitFileScreenshot(file string) {
	e.emit(domain.ViolationEvent{
		Kind:      domain.ViolationScreenshotDetected,
		Details:   "Screenshot file created: " + file,
		Window:    domain.PlaceholderScreenshotWindow(),
		Timestamp: time.Now(),
	})
}

func (e *Engine) emit(ev domain.ViolationEvent) {
	if e.stopped.Load() {
		return
	}
	if e.callbacks.OnViolation != nil {
		e.callbacks.OnViolation(ev)
	}
}

func (e *Engine) reportError(err error) {
	if e.callbacks.OnError != nil {
		e.callbacks.OnError(err)
	}
}
