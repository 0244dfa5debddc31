package model

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"telegram-reminder-bot/internal/domain"
)

// ReminderStatus tracks a reminder through its short life.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderDelivered ReminderStatus = "delivered"
	ReminderCancelled ReminderStatus = "cancelled"
	ReminderFailed    ReminderStatus = "failed"
)

// IncomingMessage is one inbound free-text message from the chat transport.
type IncomingMessage struct {
	ChatID     int64
	Text       string
	ReceivedAt time.Time
}

// ParsedReminder is the structured result the interpreter extracts from
// free text: what to say and when to say it.
type ParsedReminder struct {
	Task   string
	FireAt time.Time
}

// Reminder is the unit of scheduling: deliver Task to ChatID at FireAt.
// It lives only in memory, from creation until delivery or cancellation.
type Reminder struct {
	ID        string
	ChatID    int64
	Task      string
	FireAt    time.Time
	CreatedAt time.Time
	Status    ReminderStatus
}

// NewReminder validates and builds a pending reminder. An empty id gets a
// fresh ULID. Fire times are normalized to UTC. Chat ids may be negative
// (group chats) but never zero.
func NewReminder(id string, chatID int64, task string, fireAt time.Time) (*Reminder, error) {
	if id == "" {
		id = ulid.Make().String()
	}
	if chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, domain.ErrInvalidArgument
	}
	if fireAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Reminder{
		ID:        id,
		ChatID:    chatID,
		Task:      task,
		FireAt:    fireAt.UTC(),
		CreatedAt: time.Now().UTC(),
		Status:    ReminderPending,
	}, nil
}

// Due reports whether the reminder should already have fired at now.
func (r *Reminder) Due(now time.Time) bool {
	return !r.FireAt.After(now)
}
