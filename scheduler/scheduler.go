// Package scheduler runs the recurring maintenance jobs of the quota
// service. Today that is a single job: the daily counter reset.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/recallio/quotakit/logger"
	"github.com/recallio/quotakit/quota"
)

// resetJobName identifies the daily reset job in gocron and in logs
const resetJobName = "quota-daily-reset"

// ResetScheduler owns the daily reset job. The schedule always runs in
// UTC; day-scoped counter keys are stamped in UTC too, so the job and
// the keys agree on when a day ends.
type ResetScheduler struct {
	scheduler gocron.Scheduler
	engine    *quota.Engine
	logger    *logger.CtxZapLogger
}

// NewResetScheduler creates the scheduler with the reset job registered
// at the engine's configured time of day. The job does not run until
// Start is called.
func NewResetScheduler(engine *quota.Engine, log *logger.CtxZapLogger) (*ResetScheduler, error) {
	if log == nil {
		log = logger.GetLogger("scheduler")
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	rs := &ResetScheduler{
		scheduler: s,
		engine:    engine,
		logger:    log,
	}

	reset := engine.Config().Reset
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(reset.Hour), uint(reset.Minute), 0),
		)),
		gocron.NewTask(rs.runReset),
		gocron.WithName(resetJobName),
		// a hung store must not pile up overlapping reset runs
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return rs, nil
}

// Start begins executing the schedule
func (s *ResetScheduler) Start() {
	s.scheduler.Start()
	reset := s.engine.Config().Reset
	s.logger.Info("✅ daily reset scheduled",
		zap.Int("utc_hour", reset.Hour),
		zap.Int("utc_minute", reset.Minute))
}

// RunNow triggers one reset immediately, outside the schedule. Used by
// the reset-daily CLI command and safe to call while the schedule runs;
// the reset itself is idempotent.
func (s *ResetScheduler) RunNow(ctx context.Context) (int, error) {
	return s.engine.ResetDailyCounters(ctx)
}

// Jobs returns the registered job count, for health reporting
func (s *ResetScheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

func (s *ResetScheduler) runReset() {
	ctx := context.Background()

	deleted, err := s.engine.ResetDailyCounters(ctx)
	if err != nil {
		// the next scheduled run retries; counters also expire on their
		// own TTLs, so a missed reset self-heals within a day
		s.logger.ErrorCtx(ctx, "daily reset failed", zap.Error(err))
		return
	}

	s.logger.InfoCtx(ctx, "daily reset done", zap.Int("deleted", deleted))
}

// Shutdown stops the schedule and waits for a running job to finish
func (s *ResetScheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
