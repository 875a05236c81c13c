// Package report renders suite results as a table, JSON or YAML.
package report

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/utkarsh5026/taskbench/bench"
)

// ErrUnknownFormat is returned for an output format other than table, json
// or yaml.
var ErrUnknownFormat = errors.New("report: unknown format")

// Format selects the renderer.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json and yaml (or yml), in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Run is one invocation of the suite together with its environment.
type Run struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	GoVersion  string
	OS         string
	Arch       string
	NumCPU     int
	GOMAXPROCS int
	Results    []bench.Result
}

// NewRun stamps results with a fresh ULID and the host description.
func NewRun(startedAt time.Time, results []bench.Result) Run {
	return Run{
		ID:         ulid.Make().String(),
		StartedAt:  startedAt,
		Duration:   time.Since(startedAt),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Results:    results,
	}
}

// Succeeded returns the results that carry timings, in order.
func (r Run) Succeeded() []bench.Result {
	out := make([]bench.Result, 0, len(r.Results))
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the results without timings, in order.
func (r Run) Failed() []bench.Result {
	var out []bench.Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}
