//go:build !unix

package cpu

import "errors"

// OpenFileLimit is not available on this platform.
func OpenFileLimit() (FileLimit, error) {
	return FileLimit{}, errors.ErrUnsupported
}
