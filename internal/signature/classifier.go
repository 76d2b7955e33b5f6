package signature

import (
	"fmt"
	"strings"

	"github.com/proctorhq/proctord/internal/domain"
)

// Coverage ratio above which a keyword-matched window counts as an overlay
// even on the normal layer.
const overlayCoverageThreshold = 0.7

// Layer above which a non-system window is a layer anomaly.
const layerAnomalyThreshold = 20

// Transparent-overlay geometry floor.
const (
	transparentMinWidth  = 500.0
	transparentMinHeight = 300.0
)

// Match is one violation category a window fell into.
type Match struct {
	Kind    domain.ViolationKind
	Details string
}

// Classifier maps a window record to the set of violation categories it
// matches. Pure and stateless; every rule is evaluated independently, so a
// single window can yield several matches in one tick.
type Classifier struct {
	screenArea float64
}

// NewClassifier creates a classifier for a primary screen of the given area.
func NewClassifier(screenArea float64) *Classifier {
	return &Classifier{screenArea: screenArea}
}

// Classify evaluates all category rules against one window and returns the
// union of matches. Rules operate on lowercased "title processName" text.
func (c *Classifier) Classify(w domain.WindowRecord) []Match {
	combined := strings.ToLower(w.Title) + " " + strings.ToLower(w.OwnerProcessName)

	var matches []Match

	if kw, ok := containsAny(combined, codingToolKeywords); ok {
		matches = append(matches, Match{
			Kind: domain.ViolationCodingInterviewTool,
			Details: fmt.Sprintf("Coding interview tool detected: %s - %s (keyword: %s)",
				w.OwnerProcessName, w.Title, kw),
		})
	}

	if kw, ok := containsAny(combined, overlayKeywords); ok {
		if w.Layer > 0 || c.coverage(w) > overlayCoverageThreshold {
			matches = append(matches, Match{
				Kind: domain.ViolationSuspiciousOverlay,
				Details: fmt.Sprintf("Suspicious overlay: %s - %s (keyword: %s, layer: %d, coverage: %.2f)",
					w.OwnerProcessName, w.Title, kw, w.Layer, c.coverage(w)),
			})
		}
	}

	if w.Layer > layerAnomalyThreshold && !isSystemProcess(w.OwnerProcessName) {
		matches = append(matches, Match{
			Kind: domain.ViolationLayerAnomaly,
			Details: fmt.Sprintf("Window at anomalous layer %d: %s - %s",
				w.Layer, w.OwnerProcessName, w.Title),
		})
	}

	if w.Bounds.Width > transparentMinWidth && w.Bounds.Height > transparentMinHeight &&
		w.Title == "" && w.Layer > 0 {
		matches = append(matches, Match{
			Kind: domain.ViolationTransparentOverlay,
			Details: fmt.Sprintf("Untitled elevated window %dx%d at layer %d: %s",
				int(w.Bounds.Width), int(w.Bounds.Height), w.Layer, w.OwnerProcessName),
		})
	}

	if kw, ok := containsAny(combined, recordingKeywords); ok {
		matches = append(matches, Match{
			Kind: domain.ViolationScreenRecording,
			Details: fmt.Sprintf("Screen recording/sharing detected: %s - %s (keyword: %s)",
				w.OwnerProcessName, w.Title, kw),
		})
	}

	return matches
}

// coverage is window area over primary screen area, clamped to valid input.
func (c *Classifier) coverage(w domain.WindowRecord) float64 {
	if c.screenArea <= 0 {
		return 0
	}
	return w.Bounds.Area() / c.screenArea
}

// containsAny returns the first keyword contained in text.
// No tokenization or word-boundary checks: over-inclusive on purpose.
func containsAny(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// isSystemProcess checks the layer-anomaly allow-list, case-insensitively.
func isSystemProcess(name string) bool {
	lower := strings.ToLower(name)
	for _, allowed := range systemProcessAllowList {
		if lower == allowed {
			return true
		}
	}
	return false
}

// MatchBlacklist compares running process names against the fixed blacklist.
// Exact, case-sensitive match; the first hit wins and stops the scan.
func MatchBlacklist(running []string) (string, bool) {
	for _, name := range running {
		for _, banned := range ProcessBlacklist {
			if name == banned {
				return name, true
			}
		}
	}
	return "", false
}
