package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// screenshotExtensions are the formats the capture utility writes.
var screenshotExtensions = []string{".png", ".jpg", ".jpeg", ".heic", ".pdf", ".tiff"}

// screenshotPrefixes cover the default capture filename conventions across
// OS versions ("Screenshot ..." current, "Screen Shot ..." pre-Mojave).
var screenshotPrefixes = []string{"Screenshot", "Screen Shot"}

// ScreenshotWatcher watches the screenshot save directory with fsnotify.
// On every write notification it re-lists the directory and fires once per
// entry that matches the screenshot filename convention and was modified
// within the recency window. The window is a heuristic: late checks after
// the window elapses must not re-flag old files.
type ScreenshotWatcher struct {
	dir     string
	recency time.Duration
	fire    func(file string)
	logger  *zap.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	seen    map[string]bool
}

// NewScreenshotWatcher creates a watcher for dir. fire is invoked from the
// watcher goroutine with the matched filename.
func NewScreenshotWatcher(dir string, recency time.Duration, fire func(file string), logger *zap.Logger) *ScreenshotWatcher {
	return &ScreenshotWatcher{
		dir:     dir,
		recency: recency,
		fire:    fire,
		logger:  logger,
		seen:    make(map[string]bool),
	}
}

// Start installs the filesystem watch and begins delivering events.
func (w *ScreenshotWatcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fsw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(fsw)

	w.logger.Debug("screenshot watcher started", zap.String("dir", w.dir))
	return nil
}

// Stop cancels the filesystem watch and waits for the delivery goroutine to
// drain, so no callback fires after Stop returns. Safe to call twice.
func (w *ScreenshotWatcher) Stop() {
	w.mu.Lock()
	fsw := w.watcher
	done := w.done
	w.watcher = nil
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	_ = fsw.Close()
	<-done
}

func (w *ScreenshotWatcher) loop(fsw *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.scan(time.Now())
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("screenshot watch error", zap.Error(err))
		}
	}
}

// scan re-lists the directory and fires for fresh screenshot files.
// Exported through ScanAt for tests.
func (w *ScreenshotWatcher) scan(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Debug("screenshot dir listing failed", zap.Error(err))
		return
	}

	for _, e := range entries {
		if e.IsDir() || !IsScreenshotFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > w.recency {
			continue
		}

		path := filepath.Join(w.dir, e.Name())
		w.mu.Lock()
		already := w.seen[path]
		w.seen[path] = true
		w.mu.Unlock()
		if already {
			continue
		}

		w.fire(e.Name())
	}
}

// ScanAt runs one directory pass as of the given instant.
func (w *ScreenshotWatcher) ScanAt(now time.Time) {
	w.scan(now)
}

// IsScreenshotFile reports whether name follows the capture utility's
// filename convention.
func IsScreenshotFile(name string) bool {
	prefixed := false
	for _, p := range screenshotPrefixes {
		if strings.HasPrefix(name, p) {
			prefixed = true
			break
		}
	}
	if !prefixed {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range screenshotExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
