package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/taskbench/workload"
)

func newFixtureCmd(logger *slog.Logger) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "fixture <path>",
		Short: "Write a file for the file workload to read",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := writeFixture(args[0], size); err != nil {
				return err
			}
			logger.Info("fixture written", slog.String("path", args[0]), slog.Int("bytes", size))
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", workload.DefaultBufferSize,
		"File size in bytes")

	return cmd
}

// writeFixture writes size bytes of printable, position-dependent content.
func writeFixture(path string, size int) error {
	if size < 0 {
		return fmt.Errorf("size must be >= 0, got %d", size)
	}

	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	data := make([]byte, size)
	for i := range data {
		data[i] = alphabet[(i*7+i/len(alphabet))%len(alphabet)]
	}
	return os.WriteFile(path, data, 0o600)
}
