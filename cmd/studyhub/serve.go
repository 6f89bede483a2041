package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API and change stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.runServer(cmd.Context())
		},
	}
}

func (s *cli) runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.open(ctx, false); err != nil {
		return err
	}
	defer func() {
		if err := s.close(context.Background()); err != nil {
			s.logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	handler, err := s.app.Handler()
	if err != nil {
		return err
	}

	// Event streams never finish on their own; cancel them when shutdown begins.
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()
	httpServer := &http.Server{
		Addr:              s.app.Config.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return streamCtx
		},
	}
	httpServer.RegisterOnShutdown(cancelStreams)

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := s.logger
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", s.app.Config.HTTPAddress),
			zap.String("storage_driver", s.app.Config.StorageDriver))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
