package adapter

import (
	"context"
	"time"

	"telegram-reminder-bot/internal/domain/model"
)

// InterpreterAdapter is the port for the hosted LLM that turns free text
// into a structured reminder.
type InterpreterAdapter interface {
	// ExtractReminder asks the model to pull {task, fire time} out of text.
	// now anchors relative phrases such as "tomorrow at 2pm". Returns
	// domain.ErrNotAReminder when the text does not ask for a reminder and
	// domain.ErrMessageTooLong when the text blows the prompt token budget.
	ExtractReminder(ctx context.Context, text string, now time.Time) (*model.ParsedReminder, error)

	// Provider names the backing service ("gemini", "openai") for logs and metrics.
	Provider() string

	// ModelName reports the concrete model in use.
	ModelName() string
}
