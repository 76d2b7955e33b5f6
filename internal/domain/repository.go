package domain

import "errors"

// ErrPermissionDenied is returned by WindowProvider.Preflight when the OS
// denies screen-content enumeration. Fatal to starting a session; never
// retried per tick.
var ErrPermissionDenied = errors.New("screen recording permission denied")

// WindowProvider queries the OS for the set of currently visible windows.
// Implementation: CGWindowList on darwin, stub elsewhere.
type WindowProvider interface {
	// Preflight checks screen-content enumeration access once at start.
	// Returns ErrPermissionDenied (possibly wrapped) when the OS refuses.
	Preflight() error

	// Snapshot returns on-screen, non-desktop-element windows.
	// Called once per poll tick; restartable; a failed call skips the tick.
	Snapshot() ([]WindowRecord, error)

	// ScreenArea returns the primary screen area in points, for
	// coverage-ratio classification.
	ScreenArea() float64
}

// ProcessLister enumerates running process names.
// Implementation: gopsutil.
type ProcessLister interface {
	// RunningNames returns the names of all running processes.
	RunningNames() ([]string, error)
}

// ShortcutTap intercepts system-wide keyboard events and reports qualifying
// screenshot shortcuts. Implementation: CGEventTap on darwin.
type ShortcutTap interface {
	// Start installs the tap; fire is invoked from the platform's event
	// delivery thread with a short description of the shortcut.
	Start(fire func(detail string)) error

	// Stop unregisters the tap synchronously. Safe to call twice.
	Stop()
}

// SessionObserver receives lifecycle callbacks from the session controller.
// The UI shell implements this; the daemon ships a logging implementation.
type SessionObserver interface {
	OnStart(session Session)
	OnStop(session Session)
	OnFail(session Session, reason error)
	OnViolation(session Session, ev ViolationEvent)
}

// AlertSink receives one structured record per violation.
type AlertSink interface {
	Emit(rec AlertRecord) error
}

// SelfDestructor spawns the detached scrub helper against the install path.
// The parent never waits for, or inspects, the helper.
type SelfDestructor interface {
	Spawn(installPath string) error
}
