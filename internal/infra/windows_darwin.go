//go:build darwin && cgo

package infra

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <stdlib.h>
#include <string.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreGraphics/CoreGraphics.h>

typedef struct {
	int32_t number;
	int32_t layer;
	int32_t pid;
	int32_t onscreen;
	double  x, y, w, h;
	char    owner[256];
	char    title[256];
} pdWindow;

static void pdCopyString(CFDictionaryRef info, CFStringRef key, char *buf, size_t n) {
	buf[0] = '\0';
	CFStringRef s = CFDictionaryGetValue(info, key);
	if (s != NULL) {
		CFStringGetCString(s, buf, n, kCFStringEncodingUTF8);
	}
}

static int32_t pdCopyInt(CFDictionaryRef info, CFStringRef key) {
	int32_t v = 0;
	CFNumberRef num = CFDictionaryGetValue(info, key);
	if (num != NULL) {
		CFNumberGetValue(num, kCFNumberSInt32Type, &v);
	}
	return v;
}

// pdCopyWindowList fills *out with a malloc'd array of on-screen,
// non-desktop-element windows. Returns the count, or -1 when the window
// server refuses the query. Caller frees *out.
static int pdCopyWindowList(pdWindow **out) {
	CFArrayRef list = CGWindowListCopyWindowInfo(
		kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
		kCGNullWindowID);
	if (list == NULL) {
		return -1;
	}

	CFIndex n = CFArrayGetCount(list);
	pdWindow *wins = calloc(n > 0 ? n : 1, sizeof(pdWindow));
	if (wins == NULL) {
		CFRelease(list);
		return -1;
	}

	CFIndex count = 0;
	for (CFIndex i = 0; i < n; i++) {
		CFDictionaryRef info = CFArrayGetValueAtIndex(list, i);
		pdWindow *w = &wins[count];

		w->number = pdCopyInt(info, kCGWindowNumber);
		w->layer  = pdCopyInt(info, kCGWindowLayer);
		w->pid    = pdCopyInt(info, kCGWindowOwnerPID);

		CFBooleanRef onscreen = CFDictionaryGetValue(info, kCGWindowIsOnscreen);
		w->onscreen = (onscreen != NULL && CFBooleanGetValue(onscreen)) ? 1 : 0;

		CFDictionaryRef boundsDict = CFDictionaryGetValue(info, kCGWindowBounds);
		if (boundsDict != NULL) {
			CGRect rect;
			if (CGRectMakeWithDictionaryRepresentation(boundsDict, &rect)) {
				w->x = rect.origin.x;
				w->y = rect.origin.y;
				w->w = rect.size.width;
				w->h = rect.size.height;
			}
		}

		pdCopyString(info, kCGWindowOwnerName, w->owner, sizeof(w->owner));
		pdCopyString(info, kCGWindowName, w->title, sizeof(w->title));

		count++;
	}

	CFRelease(list);
	*out = wins;
	return (int)count;
}

static int pdPreflightScreenCapture(void) {
	return CGPreflightScreenCaptureAccess() ? 1 : 0;
}

static double pdMainScreenArea(void) {
	CGRect bounds = CGDisplayBounds(CGMainDisplayID());
	return bounds.size.width * bounds.size.height;
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/proctorhq/proctord/internal/domain"
)

// WindowProviderImpl implements domain.WindowProvider on the CoreGraphics
// window list.
type WindowProviderImpl struct{}

// NewWindowProvider creates the platform window provider.
func NewWindowProvider() domain.WindowProvider {
	return &WindowProviderImpl{}
}

// Preflight checks screen-content enumeration access once at session start.
func (p *WindowProviderImpl) Preflight() error {
	if C.pdPreflightScreenCapture() == 0 {
		return domain.ErrPermissionDenied
	}
	return nil
}

// Snapshot returns the currently visible windows. Desktop elements are
// excluded by the query options; the on-screen flag is re-checked per entry.
func (p *WindowProviderImpl) Snapshot() ([]domain.WindowRecord, error) {
	var raw *C.pdWindow
	n := C.pdCopyWindowList(&raw)
	if n < 0 {
		return nil, fmt.Errorf("window list query refused")
	}
	defer C.free(unsafe.Pointer(raw))

	wins := unsafe.Slice(raw, int(n))
	records := make([]domain.WindowRecord, 0, int(n))
	for i := range wins {
		w := &wins[i]
		if w.onscreen == 0 {
			continue
		}
		records = append(records, domain.WindowRecord{
			ID:               int(w.number),
			OwnerProcessName: C.GoString(&w.owner[0]),
			Title:            C.GoString(&w.title[0]),
			Layer:            int(w.layer),
			Bounds: domain.Bounds{
				X:      float64(w.x),
				Y:      float64(w.y),
				Width:  float64(w.w),
				Height: float64(w.h),
			},
			IsOnScreen: true,
			OwnerPID:   int(w.pid),
		})
	}
	return records, nil
}

// ScreenArea returns the primary display area in points.
func (p *WindowProviderImpl) ScreenArea() float64 {
	return float64(C.pdMainScreenArea())
}

// Ensure WindowProviderImpl implements domain.WindowProvider.
var _ domain.WindowProvider = (*WindowProviderImpl)(nil)
