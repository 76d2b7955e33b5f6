//go:build !darwin || !cgo

package infra

import (
	"fmt"
	"runtime"

	"github.com/proctorhq/proctord/internal/domain"
)

// WindowProviderImpl is the non-darwin stub. Window enumeration requires the
// CoreGraphics backend; Preflight always fails so a session never starts on
// an unsupported platform.
type WindowProviderImpl struct{}

// NewWindowProvider creates the platform window provider.
func NewWindowProvider() domain.WindowProvider {
	return &WindowProviderImpl{}
}

func (p *WindowProviderImpl) Preflight() error {
	return fmt.Errorf("window enumeration not supported on %s: %w",
		runtime.GOOS, domain.ErrPermissionDenied)
}

func (p *WindowProviderImpl) Snapshot() ([]domain.WindowRecord, error) {
	return nil, fmt.Errorf("window enumeration not supported on %s", runtime.GOOS)
}

func (p *WindowProviderImpl) ScreenArea() float64 {
	return 0
}

// Ensure WindowProviderImpl implements domain.WindowProvider.
var _ domain.WindowProvider = (*WindowProviderImpl)(nil)
