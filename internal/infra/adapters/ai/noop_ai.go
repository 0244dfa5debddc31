package ai

import (
	"context"
	"strings"
	"time"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
)

var _ adapter.InterpreterAdapter = (*NoopInterpreter)(nil)

// NoopInterpreter is an offline stand-in for demos and tests: any message
// containing "remind" becomes a reminder a fixed delay out, everything
// else is a non-reminder. No network, no credentials.
type NoopInterpreter struct {
	delay time.Duration
}

func NewNoopInterpreter(delay time.Duration) *NoopInterpreter {
	if delay <= 0 {
		delay = time.Minute
	}
	return &NoopInterpreter{delay: delay}
}

func (n *NoopInterpreter) Provider() string  { return "noop" }
func (n *NoopInterpreter) ModelName() string { return "noop" }

func (n *NoopInterpreter) ExtractReminder(_ context.Context, text string, now time.Time) (*model.ParsedReminder, error) {
	if !strings.Contains(strings.ToLower(text), "remind") {
		return nil, domain.ErrNotAReminder
	}
	task := strings.TrimSpace(text)
	for _, prefix := range []string{"Remind me to ", "remind me to ", "Remind me ", "remind me "} {
		if strings.HasPrefix(task, prefix) {
			task = strings.TrimPrefix(task, prefix)
			break
		}
	}
	if task == "" {
		return nil, domain.ErrNotAReminder
	}
	return &model.ParsedReminder{Task: task, FireAt: now.Add(n.delay)}, nil
}
