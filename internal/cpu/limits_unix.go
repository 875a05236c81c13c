//go:build unix

package cpu

import "golang.org/x/sys/unix"

// OpenFileLimit reads RLIMIT_NOFILE for the current process.
func OpenFileLimit() (FileLimit, error) {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return FileLimit{}, err
	}
	return FileLimit{Soft: uint64(rl.Cur), Hard: uint64(rl.Max)}, nil // #nosec G115
}
