// Package main provides the taskbench CLI, which measures how goroutines,
// OS-thread-locked goroutines and pooled tasks cope with timer, network and
// file workloads at increasing concurrency.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskbench",
		Short: "Concurrency microbenchmark for suspendable tasks",
		Long: `Taskbench launches N deferred tasks, starts them all, joins them all and
times the trial. Each task waits on a timer, performs an HTTP round trip or
reads a file, at concurrency levels from 1 to 4000.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger, level))
	root.AddCommand(newServeCmd(logger))
	root.AddCommand(newFixtureCmd(logger))

	return root
}
