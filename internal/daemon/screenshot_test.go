package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIsScreenshotFile(t *testing.T) {
	yes := []string{
		"Screenshot 2024-01-15 at 14.30.45.png",
		"Screen Shot 2019-05-01 at 09.00.00.jpg",
		"Screenshot.jpeg",
		"Screenshot 1.HEIC",
		"Screenshot recording.pdf",
		"Screenshot x.tiff",
	}
	for _, name := range yes {
		assert.True(t, IsScreenshotFile(name), name)
	}

	no := []string{
		"IMG_0042.png",
		"Screenshot 2024.mov",
		"Screenshot",
		"notes-Screenshot.png",
		"screenshot lower.png",
		"",
	}
	for _, name := range no {
		assert.False(t, IsScreenshotFile(name), name)
	}
}

func writeShot(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("shot"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestScreenshotWatcher_ScanFiresWithinRecencyWindow(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeShot(t, dir, "Screenshot 2024-01-15 at 14.30.45.png", now)

	var fired []string
	w := NewScreenshotWatcher(dir, 5*time.Second, func(file string) {
		fired = append(fired, file)
	}, zap.NewNop())

	w.ScanAt(now.Add(2 * time.Second))
	require.Equal(t, []string{"Screenshot 2024-01-15 at 14.30.45.png"}, fired)
}

func TestScreenshotWatcher_ScanIgnoresStaleFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeShot(t, dir, "Screenshot old.png", now.Add(-time.Minute))

	fired := 0
	w := NewScreenshotWatcher(dir, 5*time.Second, func(string) { fired++ }, zap.NewNop())

	w.ScanAt(now)
	assert.Zero(t, fired)
}

func TestScreenshotWatcher_ScanDeduplicates(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeShot(t, dir, "Screenshot dup.png", now)

	fired := 0
	w := NewScreenshotWatcher(dir, time.Minute, func(string) { fired++ }, zap.NewNop())

	w.ScanAt(now)
	w.ScanAt(now.Add(time.Second))
	w.ScanAt(now.Add(2 * time.Second))
	assert.Equal(t, 1, fired)
}

func TestScreenshotWatcher_ScanSkipsNonScreenshots(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeShot(t, dir, "IMG_0042.png", now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Screenshot folder.png"), 0755))

	fired := 0
	w := NewScreenshotWatcher(dir, time.Minute, func(string) { fired++ }, zap.NewNop())

	w.ScanAt(now)
	assert.Zero(t, fired)
}

func TestScreenshotWatcher_FsnotifyDelivery(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan string, 4)
	w := NewScreenshotWatcher(dir, time.Minute, func(file string) {
		fired <- file
	}, zap.NewNop())
	require.NoError(t, w.Start())
	defer w.Stop()

	writeShot(t, dir, "Screenshot live.png", time.Now())

	select {
	case file := <-fired:
		assert.Equal(t, "Screenshot live.png", file)
	case <-time.After(3 * time.Second):
		t.Fatal("no screenshot event delivered")
	}
}

func TestScreenshotWatcher_StartFailsOnMissingDir(t *testing.T) {
	w := NewScreenshotWatcher(filepath.Join(t.TempDir(), "absent"), time.Second, func(string) {}, zap.NewNop())
	assert.Error(t, w.Start())
}

func TestScreenshotWatcher_StopIsIdempotent(t *testing.T) {
	w := NewScreenshotWatcher(t.TempDir(), time.Second, func(string) {}, zap.NewNop())
	require.NoError(t, w.Start())

	w.Stop()
	w.Stop()
}
