//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"telegram-reminder-bot/internal/domain"
)

func TestNewReminder(t *testing.T) {
	fireAt := time.Date(2024, 5, 1, 14, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	t.Run("generates ULID when id empty", func(t *testing.T) {
		r, err := NewReminder("", 42, "buy milk", fireAt)
		if err != nil {
			t.Fatalf("NewReminder: %v", err)
		}
		if len(r.ID) != 26 {
			t.Errorf("expected 26-char ULID, got %q", r.ID)
		}
		if r.Status != ReminderPending {
			t.Errorf("expected pending status, got %q", r.Status)
		}
	})

	t.Run("normalizes fire time to UTC", func(t *testing.T) {
		r, err := NewReminder("", 42, "buy milk", fireAt)
		if err != nil {
			t.Fatalf("NewReminder: %v", err)
		}
		if r.FireAt.Location() != time.UTC {
			t.Errorf("fire time not UTC: %v", r.FireAt)
		}
		if !r.FireAt.Equal(fireAt) {
			t.Errorf("fire time changed instant: got %v want %v", r.FireAt, fireAt)
		}
	})

	t.Run("accepts negative chat ids", func(t *testing.T) {
		if _, err := NewReminder("", -100123, "team standup", fireAt); err != nil {
			t.Errorf("group chat id rejected: %v", err)
		}
	})

	t.Run("rejects invalid arguments", func(t *testing.T) {
		cases := []struct {
			name   string
			chatID int64
			task   string
			fireAt time.Time
		}{
			{"zero chat id", 0, "buy milk", fireAt},
			{"empty task", 42, "   ", fireAt},
			{"zero fire time", 42, "buy milk", time.Time{}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := NewReminder("", tc.chatID, tc.task, tc.fireAt); !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
			})
		}
	})

	t.Run("trims task whitespace", func(t *testing.T) {
		r, err := NewReminder("", 42, "  call mom  ", fireAt)
		if err != nil {
			t.Fatalf("NewReminder: %v", err)
		}
		if r.Task != "call mom" {
			t.Errorf("task not trimmed: %q", r.Task)
		}
	})
}

func TestReminderDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r, err := NewReminder("", 42, "buy milk", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	if r.Due(now) {
		t.Error("reminder due an hour early")
	}
	if !r.Due(now.Add(time.Hour)) {
		t.Error("reminder not due at its fire time")
	}
	if !r.Due(now.Add(2 * time.Hour)) {
		t.Error("reminder not due past its fire time")
	}
}
