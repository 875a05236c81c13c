package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/taskbench/asyncio"
)

const serverShutdownTimeout = 5 * time.Second

func newServeCmd(logger *slog.Logger) *cobra.Command {
	var (
		addr  string
		delay time.Duration
		body  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the loopback target for network trials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := asyncio.NewTargetServer(asyncio.WithBody(body), asyncio.WithDelay(delay))
			return serve(cmd.Context(), logger, addr, target)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:8080",
		"Listen address")
	flags.DurationVar(&delay, "delay", 0,
		"Delay before each response")
	flags.StringVar(&body, "body", asyncio.DefaultResponseBody,
		"Response body")

	return cmd
}

func serve(ctx context.Context, logger *slog.Logger, addr string, target *asyncio.TargetServer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           target,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("target server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("target server stopped", slog.Int64("requests", target.Hits()))
	return nil
}
