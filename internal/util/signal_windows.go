//go:build windows

package util

import (
	"os"
)

// ShutdownSignals returns the signals to listen for graceful shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal attempts graceful process termination.
// On Windows there is no SIGINT delivery to child processes; the caller
// relies on the exec.Cmd WaitDelay kill instead.
func GracefulSignal(p *os.Process) error {
	return nil
}
