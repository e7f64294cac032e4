//go:build !windows

package runner

import (
	"os"
	"syscall"
)

// terminate asks the process to stop; the runner's wait delay kills it if it
// does not.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

func signalName(ps *os.ProcessState) string {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return ws.Signal().String()
	}
	return ""
}
