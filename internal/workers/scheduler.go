package workers

import (
	"context"

	"github.com/robfig/cron/v3"

	"nftclicks-backend/internal/common/logger"
	userservice "nftclicks-backend/internal/features/user/service"
)

// quotaResetSpec fires the daily sweep at 01:00 server time.
const quotaResetSpec = "0 1 * * *"

// QuotaResetWorker runs the daily upload quota sweep on a cron schedule.
type QuotaResetWorker struct {
	cron  *cron.Cron
	users userservice.UserService
}

func NewQuotaResetWorker(users userservice.UserService) *QuotaResetWorker {
	return &QuotaResetWorker{
		cron:  cron.New(),
		users: users,
	}
}

// Start registers the schedule and begins running jobs.
func (w *QuotaResetWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(quotaResetSpec, func() {
		logger.Info().Msg("Running daily quota reset")
		if err := w.users.ResetDailyQuotas(ctx); err != nil {
			logger.Error().Err(err).Msg("Daily quota reset failed")
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	logger.Info().Str("schedule", quotaResetSpec).Msg("Quota reset worker started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (w *QuotaResetWorker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("Quota reset worker stopped")
}
