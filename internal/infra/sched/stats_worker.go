package sched

import (
	"context"
	"time"

	"telegram-reminder-bot/internal/domain/ports/scheduler"
	"telegram-reminder-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// StatsWorker periodically republishes the pending-reminder gauge so the
// metric stays honest even when no timers fire for a while.
type StatsWorker struct {
	interval time.Duration
	sched    scheduler.ReminderScheduler
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, sched scheduler.ReminderScheduler, logger *zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	statsLog := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		sched:    sched,
		log:      &statsLog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting stats worker")
	// Run once on startup, then on every tick
	w.publish()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish()
		}
	}
}

func (w *StatsWorker) publish() {
	n := w.sched.Len()
	metrics.SetRemindersPending(n)
	w.log.Debug().Int("pending", n).Msg("pending reminders")
}
