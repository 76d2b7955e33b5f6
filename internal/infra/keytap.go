package infra

import "fmt"

// Event flag bits for the two capture modifiers (CGEventFlags layout).
const (
	flagMaskShift   = 0x00020000
	flagMaskCommand = 0x00100000
)

// Virtual keycodes of the three capture shortcuts: full screen ("3"),
// region ("4"), and the screenshot utility ("5").
const (
	keycodeFullScreen = 20
	keycodeRegion     = 21
	keycodeUtility    = 23
)

// ScreenshotShortcut reports whether a keydown is one of the designated
// capture shortcuts: both capture modifiers held plus one of the three
// keycodes. Returns a short human-readable description of the shortcut.
func ScreenshotShortcut(keycode int64, flags uint64) (string, bool) {
	const mods = flagMaskCommand | flagMaskShift
	if flags&mods != mods {
		return "", false
	}

	switch keycode {
	case keycodeFullScreen:
		return "cmd+shift+3 (full screen)", true
	case keycodeRegion:
		return "cmd+shift+4 (region)", true
	case keycodeUtility:
		return "cmd+shift+5 (screenshot utility)", true
	}
	return "", false
}

// ErrTapUnavailable is returned when the keyboard tap cannot be installed
// (missing accessibility permission or unsupported platform).
var ErrTapUnavailable = fmt.Errorf("keyboard event tap unavailable")
