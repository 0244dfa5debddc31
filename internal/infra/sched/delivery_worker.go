package sched

import (
	"context"
	"sync"
	"time"

	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
	"telegram-reminder-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// DeliveryWorker drains the scheduler's handoff channel and performs the
// outbound send. Delivery is one attempt per reminder: a failed send is
// logged and counted, never retried.
type DeliveryWorker struct {
	deliveries  <-chan *model.Reminder
	bot         adapter.TelegramBotAdapter
	senders     int
	sendTimeout time.Duration
	log         *zerolog.Logger
}

func NewDeliveryWorker(deliveries <-chan *model.Reminder, bot adapter.TelegramBotAdapter, senders int, sendTimeout time.Duration, logger *zerolog.Logger) *DeliveryWorker {
	if senders <= 0 {
		senders = 2
	}
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	workerLog := logger.With().Str("component", "DeliveryWorker").Logger()
	return &DeliveryWorker{
		deliveries:  deliveries,
		bot:         bot,
		senders:     senders,
		sendTimeout: sendTimeout,
		log:         &workerLog,
	}
}

// Run blocks until ctx is cancelled or the deliveries channel is closed.
func (w *DeliveryWorker) Run(ctx context.Context) error {
	w.log.Info().Int("senders", w.senders).Msg("Starting delivery worker")

	var wg sync.WaitGroup
	for i := 0; i < w.senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case r, ok := <-w.deliveries:
					if !ok {
						return
					}
					w.deliver(ctx, r)
				}
			}
		}()
	}
	wg.Wait()

	w.log.Info().Msg("Stopping delivery worker")
	return ctx.Err()
}

func (w *DeliveryWorker) deliver(ctx context.Context, r *model.Reminder) {
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	drift := time.Since(r.FireAt)
	if err := w.bot.SendMessage(sendCtx, r.ChatID, "Reminder: "+r.Task); err != nil {
		r.Status = model.ReminderFailed
		metrics.IncReminderFinished("failed")
		w.log.Error().Err(err).Str("id", r.ID).Int64("chat_id", r.ChatID).Msg("reminder delivery failed")
		return
	}

	r.Status = model.ReminderDelivered
	metrics.IncReminderFinished("delivered")
	metrics.ObserveFireDrift(drift.Seconds())
	w.log.Info().Str("id", r.ID).Int64("chat_id", r.ChatID).
		Time("fire_at", r.FireAt).Dur("drift", drift).Msg("reminder delivered")
}
