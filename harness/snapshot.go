package harness

import (
	"os"
	"runtime"
)

// Snapshot is a point-in-time count of process resources that a trial
// could leak.
type Snapshot struct {
	Goroutines int
	// Open file descriptors, or -1 where they cannot be counted.
	FDs int
}

// TakeSnapshot counts live goroutines and open descriptors.
func TakeSnapshot() Snapshot {
	return Snapshot{
		Goroutines: runtime.NumGoroutine(),
		FDs:        countFDs(),
	}
}

func countFDs() int {
	var dir string
	switch runtime.GOOS {
	case "linux":
		dir = "/proc/self/fd"
	case "darwin", "freebsd":
		dir = "/dev/fd"
	default:
		return -1
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return -1
	}
	// ReadDir holds one descriptor open for the directory itself.
	return len(entries) - 1
}

// Exceeds reports whether s has more open descriptors than base by more
// than slack. Unknown counts never exceed.
func (s Snapshot) Exceeds(base Snapshot, slack int) bool {
	if s.FDs < 0 || base.FDs < 0 {
		return false
	}
	return s.FDs > base.FDs+slack
}
