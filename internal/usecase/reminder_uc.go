package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
	"telegram-reminder-bot/internal/domain/ports/scheduler"
	"telegram-reminder-bot/internal/infra/logging"
)

// ReminderUseCase is the application service behind every way a reminder
// can be created, listed or cancelled, whether it arrives from the bot or
// the admin API.
type ReminderUseCase interface {
	// HandleIncoming interprets one free-text message and, when it asks
	// for a reminder, schedules it. Returns domain.ErrNotAReminder when
	// the interpreter found nothing to schedule.
	HandleIncoming(ctx context.Context, msg model.IncomingMessage) (*model.Reminder, error)

	// Schedule creates a reminder from already-structured fields.
	Schedule(ctx context.Context, chatID int64, task string, fireAt time.Time) (*model.Reminder, error)

	// ListPending returns the chat's pending reminders ordered by fire
	// time. A zero chatID lists every chat.
	ListPending(ctx context.Context, chatID int64) ([]*model.Reminder, error)

	// Cancel stops a pending reminder. A non-zero chatID restricts the
	// cancel to reminders owned by that chat.
	Cancel(ctx context.Context, chatID int64, id string) error
}

var _ ReminderUseCase = (*reminderUC)(nil)

type reminderUC struct {
	interp adapter.InterpreterAdapter
	sched  scheduler.ReminderScheduler
	dev    bool
	log    *zerolog.Logger
}

func NewReminderUseCase(
	interp adapter.InterpreterAdapter,
	sched scheduler.ReminderScheduler,
	devMode bool,
	logger *zerolog.Logger,
) *reminderUC {
	ucLog := logger.With().Str("component", "ReminderUC").Logger()
	return &reminderUC{
		interp: interp,
		sched:  sched,
		dev:    devMode,
		log:    &ucLog,
	}
}

func (u *reminderUC) HandleIncoming(ctx context.Context, msg model.IncomingMessage) (*model.Reminder, error) {
	defer logging.TraceDuration(u.log, "ReminderUC.HandleIncoming")()

	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.ChatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	received := msg.ReceivedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}

	parsed, err := u.interp.ExtractReminder(ctx, text, received)
	if err != nil {
		if !isInterpreterVerdict(err) {
			u.log.Error().Err(err).Str("provider", u.interp.Provider()).Msg("extraction failed")
		}
		return nil, err
	}
	u.log.Debug().
		Str("task", logging.Redact(parsed.Task, u.dev)).
		Time("fire_at", parsed.FireAt).
		Msg("reminder extracted")

	return u.Schedule(ctx, msg.ChatID, parsed.Task, parsed.FireAt)
}

func (u *reminderUC) Schedule(_ context.Context, chatID int64, task string, fireAt time.Time) (*model.Reminder, error) {
	r, err := model.NewReminder("", chatID, task, fireAt)
	if err != nil {
		return nil, err
	}
	if err := u.sched.Schedule(r); err != nil {
		return nil, fmt.Errorf("schedule reminder: %w", err)
	}
	u.log.Info().Str("id", r.ID).Int64("chat_id", r.ChatID).
		Time("fire_at", r.FireAt).Msg("reminder scheduled")
	return r, nil
}

func (u *reminderUC) ListPending(_ context.Context, chatID int64) ([]*model.Reminder, error) {
	return u.sched.Pending(chatID), nil
}

func (u *reminderUC) Cancel(_ context.Context, chatID int64, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidArgument
	}
	if chatID != 0 && !u.ownsReminder(chatID, id) {
		return domain.ErrNotFound
	}
	if !u.sched.Cancel(id) {
		return domain.ErrNotFound
	}
	u.log.Info().Str("id", id).Int64("chat_id", chatID).Msg("reminder cancelled")
	return nil
}

// ownsReminder keeps one chat from cancelling another chat's reminder by
// guessing ids. The window between this check and the Cancel is benign: a
// fired reminder just yields ErrNotFound.
func (u *reminderUC) ownsReminder(chatID int64, id string) bool {
	for _, r := range u.sched.Pending(chatID) {
		if r.ID == id {
			return true
		}
	}
	return false
}

func isInterpreterVerdict(err error) bool {
	return errors.Is(err, domain.ErrNotAReminder) || errors.Is(err, domain.ErrMessageTooLong)
}
