package ai

import (
	"context"
	"time"

	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.InterpreterAdapter = (*limitedInterpreter)(nil)

// limitedInterpreter caps how many extractions run against the provider at
// once. Update workers outnumber what hosted APIs tolerate, so the surplus
// queues here instead of tripping provider-side rate limits.
type limitedInterpreter struct {
	inner adapter.InterpreterAdapter
	sem   chan struct{}
}

func NewLimitedInterpreter(inner adapter.InterpreterAdapter, maxConcurrent int) adapter.InterpreterAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedInterpreter{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedInterpreter) Provider() string  { return l.inner.Provider() }
func (l *limitedInterpreter) ModelName() string { return l.inner.ModelName() }

func (l *limitedInterpreter) ExtractReminder(ctx context.Context, text string, now time.Time) (*model.ParsedReminder, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.ExtractReminder(ctx, text, now)
}
