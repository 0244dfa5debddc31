package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-reminder-bot/internal/application"
	"telegram-reminder-bot/internal/config"
	"telegram-reminder-bot/internal/infra/logging"
	"telegram-reminder-bot/internal/infra/metrics"
	red "telegram-reminder-bot/internal/infra/redis"
)

// messagesPerMinute is the per-user ceiling enforced when Redis is wired.
const messagesPerMinute = 20

// RealBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
// It is also the outbound transport the delivery worker sends through.
type RealBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	botLog := logger.With().Str("component", "TelegramBot").Logger()
	botLog.Info().Str("account", bot.Self.UserName).Msg("authorized on Telegram")

	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           &botLog,
		updateWorkers: workers,
	}, nil
}

func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage implements the outbound adapter port.
func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.bot.Send(msg); err != nil {
		metrics.IncTelegramSendError()
		return err
	}
	return nil
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		// Edits, joins, stickers without text: nothing to do.
		return nil
	}

	// Per-update trace context for the whole extraction/scheduling flow.
	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithChatID(ctx, msg.Chat.ID)

	if msg.IsCommand() {
		name := msg.Command()
		metrics.IncTelegramUpdate("/" + name)
		handler, ok := r.commandRoutes()[name]
		if !ok {
			return r.SendMessage(ctx, msg.Chat.ID, "Unknown command. Try /help.")
		}
		return handler(ctx, msg)
	}

	metrics.IncTelegramUpdate("message")
	return r.rateLimited("message", r.handleFreeText)(ctx, msg)
}

// handleFreeText runs the extraction flow for anything that is not a command.
func (r *RealBotAdapter) handleFreeText(ctx context.Context, message *tgbotapi.Message) error {
	if strings.TrimSpace(message.Text) == "" {
		return nil
	}
	reply, err := r.facade.HandleIncoming(ctx, message.Chat.ID, message.Text, message.Time())
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("reminder flow failed")
		return r.SendMessage(ctx, message.Chat.ID, "Something went wrong on my side. Please try again.")
	}
	return r.SendMessage(ctx, message.Chat.ID, reply)
}
