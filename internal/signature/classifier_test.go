package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proctorhq/proctord/internal/domain"
)

const testScreenArea = 1920.0 * 1080.0

func kinds(matches []Match) []domain.ViolationKind {
	out := make([]domain.ViolationKind, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Kind)
	}
	return out
}

func TestClassify_CodingToolAnyCaseAnyPosition(t *testing.T) {
	c := NewClassifier(testScreenArea)

	cases := []struct {
		process string
		title   string
	}{
		{"InterviewCoder", "Coding Assistant"},
		{"interviewcoder", ""},
		{"Helper", "my LEETCODE HELPER session"},
		{"ChatGPT", "untitled"},
		{"Terminal", "solver output - run 42"},
		{"background", "prefix CHEAT suffix"},
	}

	for _, tc := range cases {
		w := domain.WindowRecord{OwnerProcessName: tc.process, Title: tc.title, IsOnScreen: true}
		assert.Contains(t, kinds(c.Classify(w)), domain.ViolationCodingInterviewTool,
			"process=%q title=%q", tc.process, tc.title)
	}
}

func TestClassify_InterviewCoderWindow(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{
		OwnerProcessName: "InterviewCoder",
		Title:            "Coding Assistant",
		IsOnScreen:       true,
	}

	assert.Contains(t, kinds(c.Classify(w)), domain.ViolationCodingInterviewTool)
}

func TestClassify_QuickTimeScreenRecording(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{
		OwnerProcessName: "QuickTime Player",
		Title:            "Screen Recording",
		IsOnScreen:       true,
	}

	assert.Contains(t, kinds(c.Classify(w)), domain.ViolationScreenRecording)
}

func TestClassify_SuspiciousOverlayNeedsLayerOrCoverage(t *testing.T) {
	c := NewClassifier(testScreenArea)

	// Keyword match alone, normal layer, small window: no overlay.
	small := domain.WindowRecord{
		OwnerProcessName: "SomeTool",
		Title:            "Screen Share Controls",
		Layer:            0,
		Bounds:           domain.Bounds{Width: 300, Height: 200},
	}
	assert.NotContains(t, kinds(c.Classify(small)), domain.ViolationSuspiciousOverlay)

	// Same keywords above the normal layer.
	elevated := small
	elevated.Layer = 3
	assert.Contains(t, kinds(c.Classify(elevated)), domain.ViolationSuspiciousOverlay)

	// Same keywords at normal layer but covering most of the screen.
	covering := small
	covering.Bounds = domain.Bounds{Width: 1920, Height: 1000}
	assert.Contains(t, kinds(c.Classify(covering)), domain.ViolationSuspiciousOverlay)
}

func TestClassify_LayerZeroNeverAnomalous(t *testing.T) {
	c := NewClassifier(testScreenArea)

	for _, process := range []string{"Unknown", "", "TotallyWeirdProc", "Dock"} {
		w := domain.WindowRecord{OwnerProcessName: process, Layer: 0}
		assert.NotContains(t, kinds(c.Classify(w)), domain.ViolationLayerAnomaly,
			"process=%q", process)
	}
}

func TestClassify_LayerAnomaly(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{OwnerProcessName: "MysteryDraw", Layer: 25}
	matches := c.Classify(w)
	require.Len(t, matches, 1)
	assert.Equal(t, domain.ViolationLayerAnomaly, matches[0].Kind)

	// System processes at high layers are exempt, case-insensitively.
	for _, system := range []string{"Dock", "WindowServer", "Spotlight", "Finder", "Notification Center"} {
		sys := domain.WindowRecord{OwnerProcessName: system, Layer: 25}
		assert.NotContains(t, kinds(c.Classify(sys)), domain.ViolationLayerAnomaly,
			"process=%q", system)
	}

	// Layer 20 is the threshold, not yet anomalous.
	border := domain.WindowRecord{OwnerProcessName: "MysteryDraw", Layer: 20}
	assert.NotContains(t, kinds(c.Classify(border)), domain.ViolationLayerAnomaly)
}

func TestClassify_TransparentOverlay(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{
		OwnerProcessName: "Borderless",
		Title:            "",
		Layer:            1,
		Bounds:           domain.Bounds{Width: 600, Height: 400},
	}
	matches := c.Classify(w)
	require.Len(t, matches, 1)
	assert.Equal(t, domain.ViolationTransparentOverlay, matches[0].Kind)

	// Any failing conjunct suppresses the match.
	titled := w
	titled.Title = "Settings"
	assert.NotContains(t, kinds(c.Classify(titled)), domain.ViolationTransparentOverlay)

	normal := w
	normal.Layer = 0
	assert.NotContains(t, kinds(c.Classify(normal)), domain.ViolationTransparentOverlay)

	narrow := w
	narrow.Bounds = domain.Bounds{Width: 480, Height: 400}
	assert.NotContains(t, kinds(c.Classify(narrow)), domain.ViolationTransparentOverlay)
}

// TestClassify_UnionOfMatches verifies the permissive semantics: one window
// can fire several categories in a single tick, one event per category.
func TestClassify_UnionOfMatches(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{
		OwnerProcessName: "OBS",
		Title:            "Display Capture",
		Layer:            5,
		Bounds:           domain.Bounds{Width: 1920, Height: 1080},
		IsOnScreen:       true,
	}

	got := kinds(c.Classify(w))
	assert.Contains(t, got, domain.ViolationSuspiciousOverlay)
	assert.Contains(t, got, domain.ViolationScreenRecording)
}

func TestClassify_CleanWindow(t *testing.T) {
	c := NewClassifier(testScreenArea)

	w := domain.WindowRecord{
		OwnerProcessName: "TextEdit",
		Title:            "notes.txt",
		Layer:            0,
		Bounds:           domain.Bounds{Width: 800, Height: 600},
	}
	assert.Empty(t, c.Classify(w))
}

func TestClassify_ZeroScreenAreaCoverage(t *testing.T) {
	c := NewClassifier(0)

	// Coverage is undefined without a screen; only the layer branch applies.
	w := domain.WindowRecord{
		OwnerProcessName: "ShareTool",
		Title:            "screen share",
		Layer:            0,
		Bounds:           domain.Bounds{Width: 5000, Height: 5000},
	}
	assert.NotContains(t, kinds(c.Classify(w)), domain.ViolationSuspiciousOverlay)
}

func TestMatchBlacklist(t *testing.T) {
	name, ok := MatchBlacklist([]string{"loginwindow", "OBS", "TeamViewer"})
	require.True(t, ok)
	assert.Equal(t, "OBS", name)

	// Exact and case-sensitive.
	_, ok = MatchBlacklist([]string{"Zoom.Us", "teamviewer", "quicktime player"})
	assert.False(t, ok)

	_, ok = MatchBlacklist(nil)
	assert.False(t, ok)
}
