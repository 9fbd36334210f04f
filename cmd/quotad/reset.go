package main

import (
	"context"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
	"github.com/recallio/quotakit/quota"
)

var resetTimeout time.Duration

var resetDailyCmd = &cobra.Command{
	Use:   "reset-daily",
	Short: "Delete all day-scoped counters once and exit",
	Long: `Runs the daily counter reset outside the schedule, for operators.
Safe to run at any time: the reset is idempotent and tolerates keys that
already expired on their own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		injector, err := buildInjector(configPath)
		if err != nil {
			return err
		}
		defer injector.Shutdown()

		engine, err := do.Invoke[*quota.Engine](injector)
		if err != nil {
			return err
		}
		defer engine.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), resetTimeout)
		defer cancel()

		deleted, err := engine.ResetDailyCounters(ctx)
		if err != nil {
			return err
		}

		logger.GetLogger("quotad").Info("daily reset complete",
			zap.Int("deleted", deleted))
		return nil
	},
}

func init() {
	resetDailyCmd.Flags().DurationVar(&resetTimeout, "timeout", time.Minute, "overall reset deadline")
}
