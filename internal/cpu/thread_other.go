//go:build !linux

package cpu

import "os"

// ThreadID returns the process id where thread ids are not available.
func ThreadID() int {
	return os.Getpid()
}
