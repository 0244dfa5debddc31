package main

import (
	"context"
	"log"
	"time"

	"telegram-reminder-bot/internal/application"
	"telegram-reminder-bot/internal/config"
	aiAdapters "telegram-reminder-bot/internal/infra/adapters/ai"
	tele "telegram-reminder-bot/internal/infra/adapters/telegram"
	"telegram-reminder-bot/internal/infra/logging"
	"telegram-reminder-bot/internal/infra/sched"
	"telegram-reminder-bot/internal/usecase"
)

// An offline walk through the whole pipeline: free text in, canned
// extraction, timer, console delivery. No tokens or network needed.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Console logger; the demo needs no config file
	logger := logging.New(config.LogConfig{Level: "debug", Format: "console"}, true)

	// 2. Offline stand-ins for the AI provider and Telegram
	interp := aiAdapters.NewNoopInterpreter(3 * time.Second)
	bot := tele.NewNoopBotAdapter()

	// 3. Scheduler and delivery pipeline
	timers := sched.NewTimerScheduler(sched.SystemClock(), 8, logger)
	delivery := sched.NewDeliveryWorker(timers.Deliveries(), bot, 1, 5*time.Second, logger)
	go func() { _ = delivery.Run(ctx) }()

	// 4. Same wiring the real bot uses
	uc := usecase.NewReminderUseCase(interp, timers, true, logger)
	facade := application.NewBotFacade(uc)

	// 5. Feed a few messages and watch the replies
	const chatID = 1001
	for _, text := range []string{
		"remind me to stretch",
		"remind me to drink some water",
		"what's the weather like?",
	} {
		reply, err := facade.HandleIncoming(ctx, chatID, text, time.Now())
		if err != nil {
			log.Printf("%q -> error: %v", text, err)
			continue
		}
		log.Printf("%q -> %s", text, reply)
	}

	list, err := facade.HandleList(ctx, chatID)
	if err != nil {
		log.Fatalf("list error: %v", err)
	}
	log.Printf("pending:\n%s", list)

	// 6. Give the timers time to fire, then shut down
	time.Sleep(5 * time.Second)
	timers.Stop()
	log.Printf("pending at exit: %d", timers.Len())
}
