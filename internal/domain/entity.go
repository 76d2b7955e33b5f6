// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// Phase is the session state machine variable.
// Transitions are one-way: Idle -> Monitoring -> Terminating.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseMonitoring
	PhaseTerminating
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMonitoring:
		return "monitoring"
	case PhaseTerminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// Session identifies one monitoring run.
type Session struct {
	ID        string
	StartedAt time.Time
}

// ViolationKind is the closed set of detectable violations.
// The string value is the stable wire identifier.
type ViolationKind string

const (
	ViolationSuspiciousOverlay   ViolationKind = "suspicious_overlay"
	ViolationLayerAnomaly        ViolationKind = "layer_anomaly"
	ViolationTransparentOverlay  ViolationKind = "transparent_overlay"
	ViolationScreenRecording     ViolationKind = "screen_recording"
	ViolationCodingInterviewTool ViolationKind = "coding_interview_tool"
	ViolationScreenshotDetected  ViolationKind = "screenshot_detected"
)

// AllViolationKinds lists every kind once, in definition order.
var AllViolationKinds = []ViolationKind{
	ViolationSuspiciousOverlay,
	ViolationLayerAnomaly,
	ViolationTransparentOverlay,
	ViolationScreenRecording,
	ViolationCodingInterviewTool,
	ViolationScreenshotDetected,
}

// Critical reports whether this kind terminates the session.
// Layer anomalies and transparent overlays are advisory: logged, never fatal.
func (k ViolationKind) Critical() bool {
	switch k {
	case ViolationSuspiciousOverlay, ViolationScreenRecording,
		ViolationCodingInterviewTool, ViolationScreenshotDetected:
		return true
	}
	return false
}

func (k ViolationKind) String() string {
	return string(k)
}

// ParseViolationKind maps a stable string identifier back to its kind.
// The mapping is total and injective over the enumeration.
func ParseViolationKind(s string) (ViolationKind, bool) {
	for _, k := range AllViolationKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Bounds is window geometry in screen coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width*height; zero for degenerate rects.
func (b Bounds) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// WindowRecord is one observed window at poll time. Immutable once built;
// a fresh set is captured every tick and records never persist across ticks.
// ID is an opaque handle, unique per window instance but not stable across
// window recreation.
type WindowRecord struct {
	ID               int
	OwnerProcessName string // may be empty or "Unknown"
	Title            string // often empty
	Layer            int    // 0 = normal desktop layer, positive = above
	Bounds           Bounds
	IsOnScreen       bool
	OwnerPID         int
}

// ViolationEvent is produced by the detection engine or screenshot watcher
// and consumed exactly once by the session controller.
type ViolationEvent struct {
	Kind      ViolationKind
	Details   string
	Window    WindowRecord
	Timestamp time.Time
}

// WindowInfo is the wire shape of a window inside an alert record.
type WindowInfo struct {
	WindowID    int    `json:"windowID"`
	ProcessName string `json:"processName"`
	WindowTitle string `json:"windowTitle"`
	WindowLayer int    `json:"windowLayer"`
	Bounds      Bounds `json:"bounds"`
	IsOnScreen  bool   `json:"isOnScreen"`
	OwnerPID    int    `json:"ownerPID"`
}

// AlertRecord is the structured record emitted to alert sinks, one per
// violation. Delivery (local log vs. remote) is the sink's concern.
type AlertRecord struct {
	SessionID     string     `json:"sessionID"`
	ViolationType string     `json:"violationTypeString"`
	Details       string     `json:"details"`
	WindowInfo    WindowInfo `json:"windowInfo"`
	Timestamp     int64      `json:"timestampUnixSeconds"`
}

// NewAlertRecord flattens a violation event into its sink representation.
func NewAlertRecord(sessionID string, ev ViolationEvent) AlertRecord {
	return AlertRecord{
		SessionID:     sessionID,
		ViolationType: ev.Kind.String(),
		Details:       ev.Details,
		WindowInfo: WindowInfo{
			WindowID:    ev.Window.ID,
			ProcessName: ev.Window.OwnerProcessName,
			WindowTitle: ev.Window.Title,
			WindowLayer: ev.Window.Layer,
			Bounds:      ev.Window.Bounds,
			IsOnScreen:  ev.Window.IsOnScreen,
			OwnerPID:    ev.Window.OwnerPID,
		},
		Timestamp: ev.Timestamp.Unix(),
	}
}

// PlaceholderScreenshotWindow synthesizes the record attached to shortcut
// screenshot events, where no real window is implicated.
func PlaceholderScreenshotWindow() WindowRecord {
	return WindowRecord{
		OwnerProcessName: "System Screenshot",
		IsOnScreen:       true,
	}
}
