package bench

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
)

// SetupProfiling starts a CPU profile and arranges a heap profile, as
// requested by non-empty paths. The returned func stops and writes them.
func SetupProfiling(cpuProfile, memProfile string, logger *slog.Logger) (func(), error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cleanups := make([]func(), 0, 2)

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile) // #nosec G304 -- path is chosen by the operator
		if err != nil {
			return nil, fmt.Errorf("bench: create cpu profile: %w", err)
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("bench: start cpu profile: %w", err)
		}
		logger.Info("cpu profiling enabled", slog.String("path", cpuProfile))

		cleanups = append(cleanups, func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		})
	}

	if memProfile != "" {
		cleanups = append(cleanups, func() {
			f, err := os.Create(memProfile) // #nosec G304
			if err != nil {
				logger.Error("create memory profile", slog.Any("error", err))
				return
			}
			defer func() {
				if err := f.Close(); err != nil {
					logger.Error("close memory profile", slog.Any("error", err))
				}
			}()

			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				logger.Error("write memory profile", slog.Any("error", err))
				return
			}
			logger.Info("memory profile written", slog.String("path", memProfile))
		})
	}

	return func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}, nil
}
