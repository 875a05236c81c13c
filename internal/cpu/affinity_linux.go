//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to one CPU core and returns the mask
// it had before. Must be called after runtime.LockOSThread().
func pinToCore(cpuID int) (unix.CPUSet, error) {
	var prev unix.CPUSet
	if err := unix.SchedGetaffinity(0, &prev); err != nil {
		return prev, err
	}

	numCPU := runtime.NumCPU()
	cpuID %= numCPU
	if cpuID < 0 {
		cpuID += numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	// 0 = current thread
	return prev, unix.SchedSetaffinity(0, &mask)
}

// SetupWorkerAffinity locks the goroutine to an OS thread and pins that
// thread to the core selected by workerID. The returned func restores the
// original mask and unlocks the thread; defer it.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	prev, err := pinToCore(workerID)
	if err != nil {
		return runtime.UnlockOSThread
	}

	return func() {
		_ = unix.SchedSetaffinity(0, &prev)
		runtime.UnlockOSThread()
	}
}
