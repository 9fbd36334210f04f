package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
	"github.com/recallio/quotakit/quota"
	"github.com/recallio/quotakit/scheduler"
	"github.com/recallio/quotakit/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quota API server with the daily reset schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		injector, err := buildInjector(configPath)
		if err != nil {
			return err
		}

		log := logger.GetLogger("quotad")

		engine, err := do.Invoke[*quota.Engine](injector)
		if err != nil {
			return err
		}
		defer engine.Close()

		sched, err := do.Invoke[*scheduler.ResetScheduler](injector)
		if err != nil {
			return err
		}
		sched.Start()

		srv, err := do.Invoke[*server.Server](injector)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Run()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutdown signal received")

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("server shutdown failed", zap.Error(err))
		}
		if err := sched.Shutdown(); err != nil {
			log.Error("scheduler shutdown failed", zap.Error(err))
		}
		// closes the redis manager through do.Shutdownable
		return injector.Shutdown()
	},
}
