package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/usecase"
)

// BotFacade composes the reminder use case into high-level bot commands.
// Keep the facade methods returning strings so the Telegram adapter just
// forwards them to the chat.
type BotFacade struct {
	ReminderUC usecase.ReminderUseCase
}

func NewBotFacade(reminderUC usecase.ReminderUseCase) *BotFacade {
	return &BotFacade{ReminderUC: reminderUC}
}

// HandleStart returns the welcome string.
func (b *BotFacade) HandleStart(username string) string {
	greeting := "Hello!"
	if username != "" {
		greeting = fmt.Sprintf("Hello %s!", username)
	}
	return greeting + "\nTell me what to remind you about and when, in plain words.\n" +
		"For example: \"remind me to take out the trash tomorrow at 6pm\".\n" +
		"Use /help to see all commands."
}

// HandleHelp returns the command overview.
func (b *BotFacade) HandleHelp() string {
	var sb strings.Builder
	sb.WriteString("Just write a message like \"remind me to call mom in 20 minutes\".\n\n")
	sb.WriteString("Commands:\n")
	sb.WriteString("/list - show your pending reminders\n")
	sb.WriteString("/cancel <id> - cancel a pending reminder\n")
	sb.WriteString("/help - this message\n")
	return sb.String()
}

// HandleIncoming runs free text through extraction and scheduling and turns
// the outcome into a chat reply. Interpreter verdicts become friendly
// answers; real failures come back as errors for the adapter to handle.
func (b *BotFacade) HandleIncoming(ctx context.Context, chatID int64, text string, receivedAt time.Time) (string, error) {
	if b.ReminderUC == nil {
		return "", fmt.Errorf("reminder usecase not available")
	}
	r, err := b.ReminderUC.HandleIncoming(ctx, model.IncomingMessage{
		ChatID:     chatID,
		Text:       text,
		ReceivedAt: receivedAt,
	})
	switch {
	case err == nil:
		return fmt.Sprintf("Got it! I'll remind you to %s at %s", r.Task, r.FireAt.Format(time.RFC3339)), nil
	case errors.Is(err, domain.ErrNotAReminder):
		return "I couldn't find a reminder in that. Tell me what to remind you about and when, like \"remind me to stretch in an hour\".", nil
	case errors.Is(err, domain.ErrMessageTooLong):
		return "That message is too long for me to read. Please keep it short.", nil
	default:
		return "", fmt.Errorf("handle incoming: %w", err)
	}
}

// HandleList formats the chat's pending reminders.
func (b *BotFacade) HandleList(ctx context.Context, chatID int64) (string, error) {
	if b.ReminderUC == nil {
		return "", fmt.Errorf("reminder usecase not available")
	}
	pending, err := b.ReminderUC.ListPending(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("list pending: %w", err)
	}
	if len(pending) == 0 {
		return "You have no pending reminders.", nil
	}
	var sb strings.Builder
	sb.WriteString("Your pending reminders:\n")
	for _, r := range pending {
		sb.WriteString(fmt.Sprintf("- %s at %s (id: %s)\n", r.Task, r.FireAt.Format(time.RFC3339), r.ID))
	}
	sb.WriteString("\nCancel one with: /cancel <id>")
	return sb.String(), nil
}

// HandleCancel cancels one of the chat's reminders by id.
func (b *BotFacade) HandleCancel(ctx context.Context, chatID int64, id string) (string, error) {
	if b.ReminderUC == nil {
		return "", fmt.Errorf("reminder usecase not available")
	}
	err := b.ReminderUC.Cancel(ctx, chatID, id)
	switch {
	case err == nil:
		return "Cancelled. I won't remind you about that.", nil
	case errors.Is(err, domain.ErrNotFound):
		return "No pending reminder with that id. Check /list for yours.", nil
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Usage: /cancel <id>", nil
	default:
		return "", fmt.Errorf("cancel reminder: %w", err)
	}
}
