// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-reminder-bot/internal/application"
	"telegram-reminder-bot/internal/config"
	"telegram-reminder-bot/internal/domain/ports/adapter"
	aiAdapters "telegram-reminder-bot/internal/infra/adapters/ai"
	tele "telegram-reminder-bot/internal/infra/adapters/telegram"
	"telegram-reminder-bot/internal/infra/logging"
	"telegram-reminder-bot/internal/infra/metrics"
	red "telegram-reminder-bot/internal/infra/redis"
	"telegram-reminder-bot/internal/infra/sched"
	"telegram-reminder-bot/internal/infra/web"
	"telegram-reminder-bot/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted fields)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- AI interpreters (Gemini first, OpenAI as fallback) ----
	var chain []adapter.InterpreterAdapter
	if cfg.AI.GeminiKey != "" {
		gem, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.GeminiModel, cfg.AI.MaxOutputTokens, cfg.AI.MaxPromptTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		chain = append(chain, gem)
		logger.Info().Str("model", cfg.AI.GeminiModel).Msg("interpreter: Gemini")
	}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIURL,
			cfg.AI.OpenAIModel, cfg.AI.MaxOutputTokens, cfg.AI.MaxPromptTokens)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		chain = append(chain, oa)
		logger.Info().Str("model", cfg.AI.OpenAIModel).Msg("interpreter: OpenAI")
	}
	multi, err := aiAdapters.NewMultiInterpreter(logger, chain...)
	if err != nil {
		log.Fatalf("interpreter chain: %v", err)
	}
	interp := aiAdapters.NewLimitedInterpreter(multi, cfg.AI.ConcurrentLimit)

	// ---- Scheduler ----
	timers := sched.NewTimerScheduler(sched.SystemClock(), cfg.Scheduler.QueueSize, logger)

	// ---- Use case + facade ----
	reminderUC := usecase.NewReminderUseCase(interp, timers, cfg.Runtime.Dev, logger)
	facade := application.NewBotFacade(reminderUC)

	// ---- Redis rate limiter (optional) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; per-user rate limiting disabled")
	}

	// ---- Telegram ----
	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	if mode := strings.ToLower(cfg.Bot.Mode); mode != "" && mode != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Delivery + stats workers ----
	delivery := sched.NewDeliveryWorker(timers.Deliveries(), botAdapter,
		cfg.Scheduler.Senders, cfg.Scheduler.SendTimeout.Std(), logger)
	go func() { _ = delivery.Run(ctx) }()

	stats := sched.NewStatsWorker(cfg.Scheduler.StatsInterval.Std(), timers, logger)
	go func() { _ = stats.Run(ctx) }()

	// ---- Admin / ops HTTP server ----
	var httpServer *http.Server
	if cfg.Admin.Secret != "" {
		auth := web.NewAuthManager(cfg.Admin.Secret, !cfg.Runtime.Dev, "", cfg.Admin.TokenTTL.Std())
		srv := web.NewServer(reminderUC, auth, cfg.Admin.Secret, logger)
		httpServer = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Admin.Port),
			Handler:      srv.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", httpServer.Addr).Msg("admin API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
	} else {
		logger.Info().Msg("admin.secret not set; admin API disabled")
	}

	logger.Info().Str("version", version).Str("commit", commit).Msg("reminder bot up")

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	cancel()
	botAdapter.StopPolling()
	timers.Stop()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}
}
