// procwatch/procwatch.go
package procwatch

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Lister enumerates the executable names of currently running processes.
type Lister interface {
	ProcessNames(ctx context.Context) ([]string, error)
}

// SystemLister reads the live OS process table.
type SystemLister struct{}

func (SystemLister) ProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Processes can exit between enumeration and inspection.
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Poller reports whether the trading terminal's executable is present in
// the process table. Matching is a case-insensitive substring test, so
// "tws" matches both "tws.exe" and "Tws.exe".
type Poller struct {
	name   string
	lister Lister
}

// New builds a poller for the given executable name. A nil lister means
// the live OS process table.
func New(name string, lister Lister) *Poller {
	if lister == nil {
		lister = SystemLister{}
	}
	return &Poller{name: strings.ToLower(name), lister: lister}
}

// Ready never fails: an enumeration error reads as "terminal not running".
func (p *Poller) Ready(ctx context.Context) bool {
	names, err := p.lister.ProcessNames(ctx)
	if err != nil {
		return false
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), p.name) {
			return true
		}
	}
	return false
}
