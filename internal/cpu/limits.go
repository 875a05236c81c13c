package cpu

import "runtime"

// GetNumCPU returns the number of logical CPUs available.
func GetNumCPU() int {
	return runtime.NumCPU()
}

// FileLimit is the process limit on open file descriptors.
type FileLimit struct {
	Soft uint64
	Hard uint64
}

// Allows reports whether n more descriptors fit under the soft limit.
// A zero limit means it is unknown, and everything is allowed.
func (l FileLimit) Allows(n int) bool {
	if l.Soft == 0 || n <= 0 {
		return true
	}
	return uint64(n) <= l.Soft
}
