//go:build !integration

package sched

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
)

// ---- fake clock ----

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clk     *fakeClock
	at      time.Time
	fn      func()
	fired   bool
	stopped bool
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clk: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, running due callbacks synchronously in
// fire-time order. Callbacks run without the clock lock held.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// ---- helpers ----

func newTestScheduler(t *testing.T, clk Clock, buffer int) *TimerScheduler {
	t.Helper()
	nop := zerolog.Nop()
	s := NewTimerScheduler(clk, buffer, &nop)
	t.Cleanup(s.Stop)
	return s
}

func mustReminder(t *testing.T, chatID int64, task string, fireAt time.Time) *model.Reminder {
	t.Helper()
	r, err := model.NewReminder("", chatID, task, fireAt)
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	return r
}

func receiveOne(t *testing.T, ch <-chan *model.Reminder) *model.Reminder {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery within 2s")
		return nil
	}
}

func expectNone(t *testing.T, ch <-chan *model.Reminder) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected delivery: %s (%s)", r.ID, r.Task)
	default:
	}
}

// ---- tests ----

func TestTimerSchedulerFiresAtFireTime(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "buy milk", start.Add(10*time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	clk.Advance(10*time.Minute - time.Second)
	expectNone(t, s.Deliveries())
	if s.Len() != 1 {
		t.Fatalf("expected 1 pending, got %d", s.Len())
	}

	clk.Advance(time.Second)
	got := receiveOne(t, s.Deliveries())
	if got.ID != r.ID || got.Task != "buy milk" || got.ChatID != 42 {
		t.Errorf("wrong reminder delivered: %+v", got)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty pending set, got %d", s.Len())
	}
}

func TestTimerSchedulerFiresExactlyOnce(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "buy milk", start.Add(time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	clk.Advance(time.Hour)
	receiveOne(t, s.Deliveries())
	clk.Advance(time.Hour)
	expectNone(t, s.Deliveries())
}

func TestTimerSchedulerOrdersByFireTime(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	// Scheduled out of order on purpose.
	third := mustReminder(t, 1, "third", start.Add(3*time.Minute))
	first := mustReminder(t, 1, "first", start.Add(1*time.Minute))
	second := mustReminder(t, 1, "second", start.Add(2*time.Minute))
	for _, r := range []*model.Reminder{third, first, second} {
		if err := s.Schedule(r); err != nil {
			t.Fatalf("Schedule(%s): %v", r.Task, err)
		}
	}

	clk.Advance(5 * time.Minute)
	for _, want := range []string{"first", "second", "third"} {
		if got := receiveOne(t, s.Deliveries()); got.Task != want {
			t.Fatalf("wrong order: got %q want %q", got.Task, want)
		}
	}
}

func TestTimerSchedulerPastDueFiresImmediately(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "already late", start.Add(-time.Hour))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// A zero advance flushes zero-delay timers without moving the clock.
	clk.Advance(0)
	got := receiveOne(t, s.Deliveries())
	if got.ID != r.ID {
		t.Errorf("wrong reminder: %s", got.ID)
	}
}

func TestTimerSchedulerCancel(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "buy milk", start.Add(time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if !s.Cancel(r.ID) {
		t.Fatal("Cancel returned false for a pending reminder")
	}
	if s.Cancel(r.ID) {
		t.Error("second Cancel returned true")
	}
	if s.Cancel("01HUNKNOWNIDXXXXXXXXXXXXXX") {
		t.Error("Cancel of unknown id returned true")
	}

	clk.Advance(time.Hour)
	expectNone(t, s.Deliveries())
}

func TestTimerSchedulerCancelAfterFire(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "buy milk", start.Add(time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	clk.Advance(time.Minute)
	receiveOne(t, s.Deliveries())
	if s.Cancel(r.ID) {
		t.Error("Cancel returned true after the timer fired")
	}
}

func TestTimerSchedulerRejectsDuplicateID(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	r := mustReminder(t, 42, "buy milk", start.Add(time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := s.Schedule(r); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestTimerSchedulerPendingSnapshot(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	s := newTestScheduler(t, clk, 8)

	later := mustReminder(t, 42, "later", start.Add(2*time.Hour))
	soon := mustReminder(t, 42, "soon", start.Add(time.Hour))
	other := mustReminder(t, 7, "other chat", start.Add(30*time.Minute))
	for _, r := range []*model.Reminder{later, soon, other} {
		if err := s.Schedule(r); err != nil {
			t.Fatalf("Schedule(%s): %v", r.Task, err)
		}
	}

	got := s.Pending(42)
	if len(got) != 2 {
		t.Fatalf("expected 2 pending for chat 42, got %d", len(got))
	}
	if got[0].Task != "soon" || got[1].Task != "later" {
		t.Errorf("pending not ordered by fire time: %q, %q", got[0].Task, got[1].Task)
	}

	all := s.Pending(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 pending overall, got %d", len(all))
	}

	// Snapshots are copies; mutating one must not leak into the scheduler.
	got[0].Task = "mutated"
	if again := s.Pending(42); again[0].Task != "soon" {
		t.Errorf("snapshot mutation leaked into scheduler: %q", again[0].Task)
	}
}

func TestTimerSchedulerStop(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	nop := zerolog.Nop()
	s := NewTimerScheduler(clk, 8, &nop)

	r := mustReminder(t, 42, "buy milk", start.Add(time.Minute))
	if err := s.Schedule(r); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	s.Stop()
	s.Stop() // idempotent

	if err := s.Schedule(mustReminder(t, 42, "too late", start.Add(time.Minute))); !errors.Is(err, domain.ErrSchedulerClosed) {
		t.Errorf("expected ErrSchedulerClosed, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("pending set not drained on stop: %d", s.Len())
	}
	clk.Advance(time.Hour)
	expectNone(t, s.Deliveries())
}

func TestTimerSchedulerConcurrentScheduleAndCancel(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clk := newFakeClock(start)
	const n = 200
	s := newTestScheduler(t, clk, n)

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := model.NewReminder("", int64(i%5+1), fmt.Sprintf("task %d", i), start.Add(time.Duration(i)*time.Second))
			if err != nil {
				t.Errorf("NewReminder: %v", err)
				return
			}
			if err := s.Schedule(r); err != nil {
				t.Errorf("Schedule: %v", err)
				return
			}
			ids[i] = r.ID
		}(i)
	}
	wg.Wait()

	// Cancel every other reminder concurrently.
	cancelled := 0
	var mu sync.Mutex
	for i := 0; i < n; i += 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.Cancel(ids[i]) {
				mu.Lock()
				cancelled++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if cancelled != n/2 {
		t.Fatalf("expected %d cancellations, got %d", n/2, cancelled)
	}

	clk.Advance(n * time.Second)
	delivered := 0
	for {
		select {
		case <-s.Deliveries():
			delivered++
			continue
		default:
		}
		break
	}
	if delivered != n-cancelled {
		t.Errorf("expected %d deliveries, got %d", n-cancelled, delivered)
	}
}
