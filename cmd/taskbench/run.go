package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/taskbench/bench"
	"github.com/utkarsh5026/taskbench/internal/config"
	"github.com/utkarsh5026/taskbench/report"
)

const envCloseTimeout = 10 * time.Second

func newRunCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark suite",
		Long: `Run every selected workload at every level on every launcher. Wait and
file cases run warm-up and measured trials; network cases always run one
warm-up and one measured trial.

Settings come from flags, TASKBENCH_* environment variables and an optional
config file, flags taking precedence.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			lvl, _ := config.ParseLogLevel(cfg.LogLevel)
			level.Set(lvl)

			return runSuite(cmd.Context(), logger, cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runSuite(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	suiteCfg, err := cfg.Suite()
	if err != nil {
		return err
	}
	if format == report.FormatTable {
		suiteCfg.Progress = os.Stderr
	}

	stopProfiling, err := bench.SetupProfiling(cfg.CPUProfile, cfg.MemProfile, logger)
	if err != nil {
		return err
	}
	defer stopProfiling()

	if cfg.ConfigFile != "" {
		logger.Info("using config file", slog.String("path", cfg.ConfigFile))
	}

	env, err := bench.NewEnv(ctx, suiteCfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := env.Close(envCloseTimeout); cerr != nil {
			logger.Error("shutting down executors", slog.Any("error", cerr))
		}
	}()

	started := time.Now()
	results, runErr := bench.NewSuite(suiteCfg, env, logger).Run(ctx)
	run := report.NewRun(started, results)

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := report.Render(out, format, run); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if cfg.Output != "" {
		_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "Report %s written to %s\n", run.ID, cfg.Output)
	}

	if runErr != nil {
		return fmt.Errorf("suite interrupted: %w", runErr)
	}
	if failed := len(run.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(run.Results))
	}
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
