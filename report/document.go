package report

import (
	"time"

	"github.com/utkarsh5026/taskbench/bench"
)

// document is the serialised shape of a Run for JSON and YAML output.
type document struct {
	ID         string      `json:"id" yaml:"id"`
	StartedAt  time.Time   `json:"started_at" yaml:"started_at"`
	DurationMs float64     `json:"duration_ms" yaml:"duration_ms"`
	Host       hostDoc     `json:"host" yaml:"host"`
	Results    []resultDoc `json:"results" yaml:"results"`
	Failures   []failDoc   `json:"failures,omitempty" yaml:"failures,omitempty"`
}

type hostDoc struct {
	GoVersion  string `json:"go_version" yaml:"go_version"`
	OS         string `json:"os" yaml:"os"`
	Arch       string `json:"arch" yaml:"arch"`
	NumCPU     int    `json:"num_cpu" yaml:"num_cpu"`
	GOMAXPROCS int    `json:"gomaxprocs" yaml:"gomaxprocs"`
}

type resultDoc struct {
	Workload  string   `json:"workload" yaml:"workload"`
	Level     int      `json:"level" yaml:"level"`
	Launcher  string   `json:"launcher" yaml:"launcher"`
	Mode      string   `json:"mode" yaml:"mode"`
	Warmup    int      `json:"warmup" yaml:"warmup"`
	Trials    int      `json:"trials" yaml:"trials"`
	OpsPerSec float64  `json:"ops_per_sec" yaml:"ops_per_sec"`
	Trial     statsDoc `json:"trial" yaml:"trial"`
	Task      statsDoc `json:"task" yaml:"task"`
	GC        gcDoc    `json:"gc" yaml:"gc"`
}

type statsDoc struct {
	Count    int64   `json:"count" yaml:"count"`
	MinMs    float64 `json:"min_ms" yaml:"min_ms"`
	MeanMs   float64 `json:"mean_ms" yaml:"mean_ms"`
	P50Ms    float64 `json:"p50_ms" yaml:"p50_ms"`
	P90Ms    float64 `json:"p90_ms" yaml:"p90_ms"`
	P99Ms    float64 `json:"p99_ms" yaml:"p99_ms"`
	MaxMs    float64 `json:"max_ms" yaml:"max_ms"`
	StdDevMs float64 `json:"stddev_ms" yaml:"stddev_ms"`
}

type gcDoc struct {
	Cycles               uint32  `json:"cycles" yaml:"cycles"`
	PauseTotalMs         float64 `json:"pause_total_ms" yaml:"pause_total_ms"`
	AllocBytesPerTrial   float64 `json:"alloc_bytes_per_trial" yaml:"alloc_bytes_per_trial"`
	AllocObjectsPerTrial float64 `json:"alloc_objects_per_trial" yaml:"alloc_objects_per_trial"`
	PeakGoroutines       int     `json:"peak_goroutines" yaml:"peak_goroutines"`
}

type failDoc struct {
	Workload string `json:"workload" yaml:"workload"`
	Level    int    `json:"level" yaml:"level"`
	Launcher string `json:"launcher" yaml:"launcher"`
	Error    string `json:"error" yaml:"error"`
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func newStatsDoc(s bench.Stats) statsDoc {
	return statsDoc{
		Count:    s.Count,
		MinMs:    ms(s.Min),
		MeanMs:   ms(s.Mean),
		P50Ms:    ms(s.P50),
		P90Ms:    ms(s.P90),
		P99Ms:    ms(s.P99),
		MaxMs:    ms(s.Max),
		StdDevMs: ms(s.StdDev),
	}
}

func newDocument(run Run) document {
	doc := document{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		DurationMs: ms(run.Duration),
		Host: hostDoc{
			GoVersion:  run.GoVersion,
			OS:         run.OS,
			Arch:       run.Arch,
			NumCPU:     run.NumCPU,
			GOMAXPROCS: run.GOMAXPROCS,
		},
		Results: make([]resultDoc, 0, len(run.Results)),
	}

	for _, r := range run.Succeeded() {
		doc.Results = append(doc.Results, resultDoc{
			Workload:  r.Workload,
			Level:     r.Level,
			Launcher:  r.Launcher,
			Mode:      r.Mode.String(),
			Warmup:    r.Warmup,
			Trials:    r.Trials,
			OpsPerSec: r.OpsPerSec,
			Trial:     newStatsDoc(r.Trial),
			Task:      newStatsDoc(r.Task),
			GC: gcDoc{
				Cycles:               r.GC.Cycles,
				PauseTotalMs:         ms(r.GC.PauseTotal),
				AllocBytesPerTrial:   r.GC.AllocBytesPerTrial,
				AllocObjectsPerTrial: r.GC.AllocObjectsPerTrial,
				PeakGoroutines:       r.GC.PeakGoroutines,
			},
		})
	}

	for _, r := range run.Failed() {
		doc.Failures = append(doc.Failures, failDoc{
			Workload: r.Workload,
			Level:    r.Level,
			Launcher: r.Launcher,
			Error:    r.Err.Error(),
		})
	}
	return doc
}
