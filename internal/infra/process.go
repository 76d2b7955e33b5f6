// Package infra implements infrastructure concerns (OS queries, sinks,
// self-destruct).
package infra

import (
	"github.com/shirou/gopsutil/v3/process"

	"github.com/proctorhq/proctord/internal/domain"
)

// ProcessListerImpl implements domain.ProcessLister using gopsutil.
type ProcessListerImpl struct{}

// NewProcessLister creates a new process lister.
func NewProcessLister() domain.ProcessLister {
	return &ProcessListerImpl{}
}

// RunningNames returns the names of all running processes. Processes that
// exit mid-enumeration are skipped.
func (pl *ProcessListerImpl) RunningNames() ([]string, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue // Process may have exited
		}
		names = append(names, name)
	}
	return names, nil
}

// Ensure ProcessListerImpl implements domain.ProcessLister.
var _ domain.ProcessLister = (*ProcessListerImpl)(nil)
