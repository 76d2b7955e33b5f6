package daemon

import (
	"go.uber.org/zap"

	"github.com/proctorhq/proctord/internal/domain"
	"github.com/proctorhq/proctord/internal/signature"
)

// BlacklistMonitor periodically compares running process names against the
// fixed application blacklist. The first match stops the scan for that tick;
// the offending name is reported through a coarse callback rather than a
// ViolationEvent.
type BlacklistMonitor struct {
	lister domain.ProcessLister
	extra  []string
	logger *zap.Logger
}

// NewBlacklistMonitor creates a monitor over the given process lister.
// extra names are appended to the built-in blacklist (config additions).
func NewBlacklistMonitor(lister domain.ProcessLister, extra []string, logger *zap.Logger) *BlacklistMonitor {
	return &BlacklistMonitor{lister: lister, extra: extra, logger: logger}
}

// ScanOnce lists running processes and returns the first blacklisted name.
// A listing failure is logged and reported as no match; the next tick retries.
func (m *BlacklistMonitor) ScanOnce() (string, bool) {
	names, err := m.lister.RunningNames()
	if err != nil {
		m.logger.Debug("process listing failed, skipping blacklist tick", zap.Error(err))
		return "", false
	}

	if name, ok := signature.MatchBlacklist(names); ok {
		return name, true
	}
	for _, name := range names {
		for _, banned := range m.extra {
			if name == banned {
				return name, true
			}
		}
	}
	return "", false
}
