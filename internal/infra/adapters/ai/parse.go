package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
)

type extractionResult struct {
	Task string `json:"task"`
	Time string `json:"time"`
}

// decodeExtraction turns a raw model response into a ParsedReminder.
// Models wrap JSON in markdown fences or emit slightly broken JSON often
// enough that both get handled here: fences are stripped first, and a
// failed Unmarshal is retried once on the repaired payload.
func decodeExtraction(raw string) (*model.ParsedReminder, error) {
	payload := stripFences(raw)
	if payload == "" {
		return nil, domain.ErrNotAReminder
	}

	var res extractionResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return nil, fmt.Errorf("interpreter returned unparseable payload: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &res); err != nil {
			return nil, fmt.Errorf("interpreter returned unparseable payload: %w", err)
		}
	}

	task := strings.TrimSpace(res.Task)
	if task == "" {
		return nil, domain.ErrNotAReminder
	}
	fireAt, err := parseFireTime(res.Time)
	if err != nil {
		return nil, err
	}
	return &model.ParsedReminder{Task: task, FireAt: fireAt}, nil
}

// parseFireTime accepts RFC 3339 plus the near-misses models actually
// produce. Timestamps without a zone are taken as UTC.
func parseFireTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		// A task without a time is not schedulable; treat it like the
		// model declining to extract.
		return time.Time{}, domain.ErrNotAReminder
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized fire time %q", domain.ErrInvalidArgument, s)
}

// stripFences removes a ```json ... ``` wrapper when present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

// outcomeLabel folds an extraction error into a low-cardinality metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotAReminder):
		return "no_reminder"
	default:
		return "error"
	}
}
