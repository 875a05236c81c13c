//go:build linux

package cpu

import "golang.org/x/sys/unix"

// ThreadID returns the id of the OS thread running the caller.
func ThreadID() int {
	return unix.Gettid()
}
