package scheduler

import "telegram-reminder-bot/internal/domain/model"

// ReminderScheduler owns the in-memory set of pending one-shot timers.
// Implementations must be safe for concurrent use and must never block a
// caller on a timer firing.
type ReminderScheduler interface {
	// Schedule arranges exactly one delivery of r at r.FireAt. Fire times
	// at or before the current instant fire immediately. The scheduler
	// keeps its own copy of r.
	Schedule(r *model.Reminder) error

	// Cancel stops a pending reminder. It reports false when the id is
	// unknown or the timer already fired.
	Cancel(id string) bool

	// Pending snapshots pending reminders for one chat, or for all chats
	// when chatID is zero, ordered by fire time.
	Pending(chatID int64) []*model.Reminder

	// Len is the number of pending timers.
	Len() int
}
