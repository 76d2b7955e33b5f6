//go:build !darwin || !cgo

package infra

import "github.com/proctorhq/proctord/internal/domain"

// ShortcutTapImpl is the non-darwin stub: installation always fails, which
// the engine treats as a degraded (not fatal) condition.
type ShortcutTapImpl struct{}

// NewShortcutTap creates the platform shortcut tap.
func NewShortcutTap() domain.ShortcutTap {
	return &ShortcutTapImpl{}
}

func (t *ShortcutTapImpl) Start(fire func(detail string)) error {
	return ErrTapUnavailable
}

func (t *ShortcutTapImpl) Stop() {}

// Ensure ShortcutTapImpl implements domain.ShortcutTap.
var _ domain.ShortcutTap = (*ShortcutTapImpl)(nil)
