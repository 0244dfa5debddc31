// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/adapter"
)

var _ adapter.InterpreterAdapter = (*MultiInterpreter)(nil)

// MultiInterpreter tries each configured provider in order and falls
// through on provider failures only. A verdict about the input itself (no
// reminder found, message over budget) is a final answer; retrying it
// against the next provider would just burn quota on the same text.
type MultiInterpreter struct {
	chain []adapter.InterpreterAdapter
	log   *zerolog.Logger
}

func NewMultiInterpreter(logger *zerolog.Logger, chain ...adapter.InterpreterAdapter) (*MultiInterpreter, error) {
	available := make([]adapter.InterpreterAdapter, 0, len(chain))
	for _, a := range chain {
		if a != nil {
			available = append(available, a)
		}
	}
	if len(available) == 0 {
		return nil, domain.ErrNoInterpreter
	}
	multiLog := logger.With().Str("component", "MultiInterpreter").Logger()
	return &MultiInterpreter{chain: available, log: &multiLog}, nil
}

// Provider and ModelName report the primary, the one every extraction
// tries first.
func (m *MultiInterpreter) Provider() string  { return m.chain[0].Provider() }
func (m *MultiInterpreter) ModelName() string { return m.chain[0].ModelName() }

func (m *MultiInterpreter) ExtractReminder(ctx context.Context, text string, now time.Time) (*model.ParsedReminder, error) {
	var lastErr error
	for _, a := range m.chain {
		parsed, err := a.ExtractReminder(ctx, text, now)
		if err == nil {
			return parsed, nil
		}
		if isVerdict(err) || ctx.Err() != nil {
			return nil, err
		}
		m.log.Warn().Err(err).Str("provider", a.Provider()).Msg("interpreter failed, trying next")
		lastErr = err
	}
	return nil, lastErr
}

func isVerdict(err error) bool {
	return errors.Is(err, domain.ErrNotAReminder) || errors.Is(err, domain.ErrMessageTooLong)
}
