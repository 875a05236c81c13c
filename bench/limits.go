package bench

import (
	"log/slog"
	"slices"

	"github.com/utkarsh5026/taskbench/internal/cpu"
	"github.com/utkarsh5026/taskbench/workload"
)

// descriptorHeadroom covers descriptors the process holds besides the ones
// a trial opens (stdio, listeners, profiles).
const descriptorHeadroom = 64

// checkFileLimit warns about levels whose file or network trials need more
// descriptors than RLIMIT_NOFILE allows. It never changes the plan.
func checkFileLimit(logger *slog.Logger, cfg Config) {
	limit, err := cpu.OpenFileLimit()
	if err != nil {
		logger.Debug("open file limit unavailable", slog.Any("error", err))
		return
	}

	needsFDs := slices.ContainsFunc(cfg.Kinds, func(k workload.Kind) bool {
		return k == workload.KindFileRead || k == workload.KindNetwork
	})
	if !needsFDs {
		return
	}

	for _, level := range cfg.Levels {
		if !limit.Allows(level + descriptorHeadroom) {
			logger.Warn("level may exceed the open file limit",
				slog.Int("level", level),
				slog.Uint64("soft_limit", limit.Soft),
				slog.Uint64("hard_limit", limit.Hard))
		}
	}
}
