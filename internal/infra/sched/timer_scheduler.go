package sched

import (
	"sort"
	"sync"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/domain/ports/scheduler"
	"telegram-reminder-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ scheduler.ReminderScheduler = (*TimerScheduler)(nil)

// TimerScheduler keeps every pending reminder behind one mutex and arms a
// one-shot timer per reminder. A fired reminder leaves the pending map
// under the lock before it is handed to the deliveries channel, so a timer
// can neither fire twice nor race its own Cancel.
type TimerScheduler struct {
	clock Clock
	log   *zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingTimer
	closed  bool

	deliveries chan *model.Reminder
	stopc      chan struct{}
}

type pendingTimer struct {
	reminder *model.Reminder
	timer    Timer
}

// NewTimerScheduler builds a scheduler with the given handoff buffer size.
// A nil clock means wall time.
func NewTimerScheduler(clock Clock, buffer int, logger *zerolog.Logger) *TimerScheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if buffer <= 0 {
		buffer = 64
	}
	schedLog := logger.With().Str("component", "TimerScheduler").Logger()
	return &TimerScheduler{
		clock:      clock,
		log:        &schedLog,
		pending:    make(map[string]*pendingTimer),
		deliveries: make(chan *model.Reminder, buffer),
		stopc:      make(chan struct{}),
	}
}

// Deliveries is the handoff channel consumed by the delivery worker.
func (s *TimerScheduler) Deliveries() <-chan *model.Reminder { return s.deliveries }

// Schedule arranges exactly one handoff of r at r.FireAt. Fire times at or
// before now fire immediately. The scheduler stores a private copy, so the
// caller's reminder is never mutated. Never blocks on a timer firing.
func (s *TimerScheduler) Schedule(r *model.Reminder) error {
	if r == nil || r.ID == "" {
		return domain.ErrInvalidArgument
	}
	cp := *r

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSchedulerClosed
	}
	if _, ok := s.pending[cp.ID]; ok {
		s.mu.Unlock()
		return domain.ErrAlreadyExists
	}
	delay := cp.FireAt.Sub(s.clock.Now())
	if delay < 0 {
		// Past-due reminders fire immediately rather than erroring out.
		delay = 0
	}
	entry := &pendingTimer{reminder: &cp}
	s.pending[cp.ID] = entry
	entry.timer = s.clock.AfterFunc(delay, func() { s.fire(cp.ID) })
	s.mu.Unlock()

	metrics.IncReminderScheduled()
	metrics.SetRemindersPending(s.Len())
	s.log.Debug().Str("id", cp.ID).Int64("chat_id", cp.ChatID).
		Time("fire_at", cp.FireAt).Dur("delay", delay).Msg("timer armed")
	return nil
}

func (s *TimerScheduler) fire(id string) {
	s.mu.Lock()
	entry, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		// Cancelled (or stopped) between the timer firing and this callback
		// taking the lock. Nothing to deliver.
		return
	}

	metrics.SetRemindersPending(s.Len())
	// The callback runs on the timer's goroutine, so a full buffer delays
	// this handoff without ever blocking a Schedule or Cancel call.
	select {
	case s.deliveries <- entry.reminder:
	case <-s.stopc:
	}
}

// Cancel stops a pending reminder. Returns false when the id is unknown or
// the timer already fired.
func (s *TimerScheduler) Cancel(id string) bool {
	s.mu.Lock()
	entry, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}

	entry.timer.Stop()
	metrics.IncReminderFinished("cancelled")
	metrics.SetRemindersPending(s.Len())
	s.log.Debug().Str("id", id).Msg("timer cancelled")
	return true
}

// Pending snapshots pending reminders for one chat, or for all chats when
// chatID is zero, ordered by fire time. Returned reminders are copies.
func (s *TimerScheduler) Pending(chatID int64) []*model.Reminder {
	s.mu.Lock()
	out := make([]*model.Reminder, 0, len(s.pending))
	for _, entry := range s.pending {
		if chatID != 0 && entry.reminder.ChatID != chatID {
			continue
		}
		cp := *entry.reminder
		out = append(out, &cp)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Len is the number of pending timers.
func (s *TimerScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending timer and unblocks in-flight handoffs. The
// scheduler rejects Schedule calls afterwards. Idempotent.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	n := len(s.pending)
	for id, entry := range s.pending {
		entry.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	close(s.stopc)
	metrics.SetRemindersPending(0)
	s.log.Info().Int("dropped", n).Msg("scheduler stopped")
}
