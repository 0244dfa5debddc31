package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-reminder-bot/internal/infra/logging"
	"telegram-reminder-bot/internal/infra/metrics"
	red "telegram-reminder-bot/internal/infra/redis"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.rateLimited("/start", r.handleStartCommand),
		"help":   r.rateLimited("/help", r.handleHelpCommand),
		"list":   r.rateLimited("/list", r.handleListCommand),
		"cancel": r.rateLimited("/cancel", r.handleCancelCommand),
	}
}

// rateLimited wraps a handler with the per-user fixed-window limiter.
// Without Redis the wrapper is a pass-through; a limiter outage fails
// open so the bot keeps answering.
func (r *RealBotAdapter) rateLimited(kind string, next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if r.rateLimiter == nil {
			return next(ctx, message)
		}
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(message.From.ID, kind), messagesPerMinute, time.Minute)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
			return next(ctx, message)
		}
		if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendMessage(ctx, message.Chat.ID, "Rate limit exceeded. Please try again later.")
		}
		return next(ctx, message)
	}
}

// handleStartCommand handles the /start command.
func (r *RealBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleStart(message.From.UserName))
}

// handleHelpCommand provides a list of commands.
func (r *RealBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendMessage(ctx, message.Chat.ID, r.facade.HandleHelp())
}

// handleListCommand handles the /list command.
func (r *RealBotAdapter) handleListCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleList(ctx, message.Chat.ID)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("list failed")
		text = "Failed to list reminders."
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleCancelCommand handles the /cancel command. The reminder id comes
// from the command arguments, as shown by /list.
func (r *RealBotAdapter) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) error {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		return r.SendMessage(ctx, message.Chat.ID, "Usage: /cancel <id>")
	}
	text, err := r.facade.HandleCancel(ctx, message.Chat.ID, id)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("cancel failed")
		text = "Failed to cancel reminder."
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}
