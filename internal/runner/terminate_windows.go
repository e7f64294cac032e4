//go:build windows

package runner

import "os"

// Windows has no graceful termination signal for console processes.
func terminate(p *os.Process) error {
	return p.Kill()
}

func signalName(*os.ProcessState) string {
	return "killed"
}
