// Package workload defines the three synthetic operations a trial runs:
// a timer wait, an HTTP round trip and a file read.
package workload

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for an unrecognised name.
var ErrUnknownKind = errors.New("workload: unknown kind")

// Kind identifies a workload.
type Kind int

const (
	KindWait Kind = iota
	KindNetwork
	KindFileRead
)

// Kinds lists every workload kind in report order.
var Kinds = []Kind{KindWait, KindNetwork, KindFileRead}

func (k Kind) String() string {
	switch k {
	case KindWait:
		return "wait"
	case KindNetwork:
		return "network"
	case KindFileRead:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the names printed by Kind.String, plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wait", "sleep", "delay":
		return KindWait, nil
	case "network", "http", "net":
		return KindNetwork, nil
	case "file", "fileread", "file-read", "read":
		return KindFileRead, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Mode is how a trial is measured.
type Mode int

const (
	// ModeThroughput repeats warm-up and measured trials and reports
	// operations per second.
	ModeThroughput Mode = iota
	// ModeSingleShot runs one warm-up and one measured trial.
	ModeSingleShot
)

func (m Mode) String() string {
	if m == ModeSingleShot {
		return "single-shot"
	}
	return "throughput"
}

// DefaultMode returns the measurement mode a kind must run in. Network
// trials are single-shot so that repeated trials do not exhaust ports.
func (k Kind) DefaultMode() Mode {
	if k == KindNetwork {
		return ModeSingleShot
	}
	return ModeThroughput
}

// Unit is one task's operation. It blocks until the operation is done.
type Unit func(ctx context.Context) error

// Workload produces the per-task units of a trial.
type Workload interface {
	Kind() Kind
	Name() string
	// Prepare allocates what task index needs (request, buffer) and
	// returns its unit. It is called when the task is created.
	Prepare(index int) Unit
}

func wrap(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
