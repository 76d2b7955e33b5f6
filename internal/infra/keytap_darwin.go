//go:build darwin && cgo

package infra

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include "keytap_darwin.h"
*/
import "C"

import (
	"runtime"
	"sync"

	"github.com/proctorhq/proctord/internal/domain"
)

// The event tap callback carries no context pointer into Go, so the active
// tap is process-global. Only one tap may run at a time, which matches the
// single-session design.
var (
	tapMu   sync.Mutex
	tapFire func(detail string)
	tapOn   bool
	tapDone chan struct{}
)

//export goShortcutKeyDown
func goShortcutKeyDown(keycode C.longlong, flags C.ulonglong) {
	tapMu.Lock()
	fire := tapFire
	tapMu.Unlock()
	if fire == nil {
		return
	}

	if detail, ok := ScreenshotShortcut(int64(keycode), uint64(flags)); ok {
		fire(detail)
	}
}

// ShortcutTapImpl implements domain.ShortcutTap on a CGEventTap. The tap
// listens only; events pass through to their targets unmodified.
type ShortcutTapImpl struct{}

// NewShortcutTap creates the platform shortcut tap.
func NewShortcutTap() domain.ShortcutTap {
	return &ShortcutTapImpl{}
}

// Start installs the tap and launches the delivery run loop on a dedicated
// OS thread. fire is invoked from that thread.
func (t *ShortcutTapImpl) Start(fire func(detail string)) error {
	tapMu.Lock()
	defer tapMu.Unlock()

	if tapOn {
		return ErrTapUnavailable
	}
	if C.pdKeyTapCreate() != 0 {
		return ErrTapUnavailable
	}

	tapFire = fire
	tapOn = true
	tapDone = make(chan struct{})
	ready := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		C.pdKeyTapAttach()
		close(ready)
		C.pdKeyTapLoop()
		close(tapDone)
	}()

	<-ready
	return nil
}

// Stop disables the tap and waits for the delivery loop to exit, so no
// callback fires after Stop returns. Safe to call twice.
func (t *ShortcutTapImpl) Stop() {
	tapMu.Lock()
	if !tapOn {
		tapMu.Unlock()
		return
	}
	tapFire = nil
	tapOn = false
	done := tapDone
	tapMu.Unlock()

	C.pdKeyTapStop()
	<-done
}

// Ensure ShortcutTapImpl implements domain.ShortcutTap.
var _ domain.ShortcutTap = (*ShortcutTapImpl)(nil)
