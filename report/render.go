package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// Render writes run to w in the given format.
func Render(w io.Writer, format Format, run Run) error {
	switch format {
	case FormatTable:
		return renderTable(w, run)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(run))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(run)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, run Run) error {
	succeeded := run.Succeeded()

	printSectionHeader(w, "TRIAL TIMES",
		fmt.Sprintf("run %s, %s %s/%s, %d CPUs", run.ID, run.GoVersion, run.OS, run.Arch, run.NumCPU))

	trials := tablewriter.NewWriter(w)
	trials.Header("Workload", "Level", "Launcher", "Mode", "Trials", "Mean", "P50", "P99", "StdDev", "Ops/sec")
	for _, r := range succeeded {
		_ = trials.Append(
			r.Workload,
			strconv.Itoa(r.Level),
			r.Launcher,
			r.Mode.String(),
			strconv.Itoa(r.Trials),
			FormatLatency(r.Trial.Mean),
			FormatLatency(r.Trial.P50),
			FormatLatency(r.Trial.P99),
			FormatLatency(r.Trial.StdDev),
			FormatNumber(int64(r.OpsPerSec)),
		)
	}
	if err := trials.Render(); err != nil {
		return fmt.Errorf("report: render trial table: %w", err)
	}

	printSectionHeader(w, "TASK LATENCY AND GC",
		"  • Task: time from start to completion of a single task",
		"  • Alloc/trial: bytes allocated per measured trial")

	tasks := tablewriter.NewWriter(w)
	tasks.Header("Workload", "Level", "Launcher", "Task P50", "Task P90", "Task Max", "GC cycles", "Alloc/trial", "Peak goroutines")
	for _, r := range succeeded {
		_ = tasks.Append(
			r.Workload,
			strconv.Itoa(r.Level),
			r.Launcher,
			FormatLatency(r.Task.P50),
			FormatLatency(r.Task.P90),
			FormatLatency(r.Task.Max),
			strconv.FormatUint(uint64(r.GC.Cycles), 10),
			FormatBytes(r.GC.AllocBytesPerTrial),
			FormatNumber(int64(r.GC.PeakGoroutines)),
		)
	}
	if err := tasks.Render(); err != nil {
		return fmt.Errorf("report: render task table: %w", err)
	}

	printFooter(w, run, len(succeeded))
	return nil
}

func printSectionHeader(w io.Writer, title string, descriptions ...string) {
	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "═══════════════════════════════════════════════════════════")
	_, _ = bold.Fprintln(w, title)
	_, _ = bold.Fprintln(w, "═══════════════════════════════════════════════════════════")
	for _, desc := range descriptions {
		_, _ = fmt.Fprintln(w, desc)
	}
	_, _ = fmt.Fprintln(w)
}

func printFooter(w io.Writer, run Run, succeeded int) {
	failed := run.Failed()
	if len(failed) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = red.Fprintln(w, "Failed cases:")
		for _, r := range failed {
			_, _ = red.Fprintf(w, "  ✗ %s x%d (%s): %v\n", r.Workload, r.Level, r.Launcher, r.Err)
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = green.Fprintf(w, "✓ %d/%d cases measured in %s\n", succeeded, len(run.Results), run.Duration.Round(time.Millisecond))
}

// FormatNumber formats an integer with comma separators.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FormatLatency formats a duration in the most appropriate unit.
func FormatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}

	ns := d.Nanoseconds()
	switch {
	case ns < 1000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.1fµs", float64(ns)/1000.0)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1_000_000.0)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1_000_000_000.0)
	}
}

// FormatBytes formats a byte count with a binary unit.
func FormatBytes(b float64) string {
	const unit = 1024.0
	if b < unit {
		return fmt.Sprintf("%.0fB", b)
	}
	div, exp := unit, 0
	for n := b / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", b/div, "KMGTP"[exp])
}
