// Package benchmarks holds Go benchmarks for whole trials, complementing the
// taskbench CLI with results the standard tooling (benchstat, pprof) reads.
package benchmarks

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/utkarsh5026/taskbench/asyncio"
	"github.com/utkarsh5026/taskbench/bench"
	"github.com/utkarsh5026/taskbench/harness"
	"github.com/utkarsh5026/taskbench/workload"
)

// benchLevels are the concurrency levels every trial benchmark runs at.
var benchLevels = bench.DefaultLevels

// launcherNames lists every launcher a case is measured on.
var launcherNames = []string{"goroutine", "os-thread", "pool"}

// fixture is a loopback target plus a file to read, shared by one benchmark.
type fixture struct {
	env    *bench.Env
	driver *harness.Driver
	server *httptest.Server
}

func newFixture(b *testing.B, wait time.Duration, bufferSize int) *fixture {
	b.Helper()

	srv := httptest.NewServer(asyncio.NewTargetServer())
	path := filepath.Join(b.TempDir(), "data")
	if err := os.WriteFile(path, make([]byte, bufferSize), 0o600); err != nil {
		srv.Close()
		b.Fatal(err)
	}

	cfg := bench.DefaultConfig()
	cfg.WaitDuration = wait
	cfg.URL = srv.URL
	cfg.FilePath = path
	cfg.BufferSize = bufferSize

	env, err := bench.NewEnv(context.Background(), cfg, nil)
	if err != nil {
		srv.Close()
		b.Fatal(err)
	}

	f := &fixture{env: env, driver: harness.NewDriver(slog.New(slog.DiscardHandler)), server: srv}
	b.Cleanup(func() {
		_ = env.Close(5 * time.Second)
		srv.Close()
	})
	return f
}

// runLevels runs fn as a sub-benchmark per launcher and level.
func runLevels(b *testing.B, levels []int, fn func(b *testing.B, launcher string, level int)) {
	for _, name := range launcherNames {
		for _, level := range levels {
			b.Run(fmt.Sprintf("%s/level=%d", name, level), func(b *testing.B) {
				fn(b, name, level)
			})
		}
	}
}

// runTrials measures a workload in its own mode. Throughput workloads run
// one trial per loop iteration; single-shot workloads run once.
func (f *fixture) runTrials(b *testing.B, kind workload.Kind, launcherName string, level int) []time.Duration {
	b.Helper()

	wl, err := f.env.Workload(kind)
	if err != nil {
		b.Fatal(err)
	}
	launcher, err := f.env.Launcher(launcherName)
	if err != nil {
		b.Fatal(err)
	}
	cfg := harness.TrialConfig{Level: level, Workload: wl, Mode: kind.DefaultMode(), Launcher: launcher}
	if cfg.Mode == workload.ModeSingleShot {
		return f.runSingleShot(b, cfg)
	}

	var latencies []time.Duration
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		set, err := f.driver.RunTrial(ctx, cfg)
		if err != nil {
			b.Fatal(err)
		}
		latencies = append(latencies, set.Latencies()...)
	}

	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	tasksPerSec := float64(level) / nsPerOp * 1e9
	b.ReportMetric(tasksPerSec, "tasks/sec")
	return latencies
}

// runSingleShot runs one untimed warm-up trial and one measured trial. Any
// benchtime other than 1x makes the framework call the benchmark again with
// a larger b.N, so the benchmark is skipped then.
func (f *fixture) runSingleShot(b *testing.B, cfg harness.TrialConfig) []time.Duration {
	b.Helper()
	if !singleShotBenchtime() {
		b.Skipf("%s trials are single-shot; run with -benchtime=1x", cfg.Workload.Name())
	}

	b.ResetTimer()
	shot, err := measureSingleShot(context.Background(), f.driver, cfg)
	b.StopTimer()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportMetric(float64(shot.elapsed.Nanoseconds()), "ns/trial")
	b.ReportMetric(float64(cfg.Level)/shot.elapsed.Seconds(), "tasks/sec")
	return shot.latencies
}

type singleShot struct {
	elapsed   time.Duration
	latencies []time.Duration
}

// measureSingleShot runs the warm-up trial and times the measured one.
func measureSingleShot(ctx context.Context, driver *harness.Driver, cfg harness.TrialConfig) (singleShot, error) {
	if _, err := driver.RunTrial(ctx, cfg); err != nil {
		return singleShot{}, fmt.Errorf("warm-up: %w", err)
	}

	start := time.Now()
	set, err := driver.RunTrial(ctx, cfg)
	elapsed := time.Since(start)
	if err != nil {
		return singleShot{}, err
	}
	return singleShot{elapsed: elapsed, latencies: set.Latencies()}, nil
}

func singleShotBenchtime() bool {
	f := flag.Lookup("test.benchtime")
	return f != nil && f.Value.String() == "1x"
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
