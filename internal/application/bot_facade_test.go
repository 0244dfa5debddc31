//go:build !integration

package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"telegram-reminder-bot/internal/application"
	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
)

type stubReminderUC struct {
	reminder *model.Reminder
	pending  []*model.Reminder
	err      error
}

func (s *stubReminderUC) HandleIncoming(context.Context, model.IncomingMessage) (*model.Reminder, error) {
	return s.reminder, s.err
}

func (s *stubReminderUC) Schedule(context.Context, int64, string, time.Time) (*model.Reminder, error) {
	return s.reminder, s.err
}

func (s *stubReminderUC) ListPending(context.Context, int64) ([]*model.Reminder, error) {
	return s.pending, s.err
}

func (s *stubReminderUC) Cancel(context.Context, int64, string) error {
	return s.err
}

func TestHandleIncomingConfirmation(t *testing.T) {
	fireAt := time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC)
	r, err := model.NewReminder("", 42, "take out the trash", fireAt)
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	f := application.NewBotFacade(&stubReminderUC{reminder: r})

	reply, err := f.HandleIncoming(context.Background(), 42, "remind me to take out the trash at 6pm", time.Now())
	if err != nil {
		t.Fatalf("HandleIncoming: %v", err)
	}
	want := "Got it! I'll remind you to take out the trash at 2024-05-02T18:00:00Z"
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
}

func TestHandleIncomingVerdictsBecomeReplies(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"not a reminder", domain.ErrNotAReminder, "couldn't find a reminder"},
		{"too long", domain.ErrMessageTooLong, "too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := application.NewBotFacade(&stubReminderUC{err: tc.err})
			reply, err := f.HandleIncoming(context.Background(), 42, "whatever", time.Now())
			if err != nil {
				t.Fatalf("verdict should not surface as error: %v", err)
			}
			if !strings.Contains(reply, tc.want) {
				t.Errorf("reply %q does not mention %q", reply, tc.want)
			}
		})
	}
}

func TestHandleIncomingRealErrorSurfaces(t *testing.T) {
	boom := errors.New("interpreter down")
	f := application.NewBotFacade(&stubReminderUC{err: boom})

	if _, err := f.HandleIncoming(context.Background(), 42, "remind me", time.Now()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestHandleList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := application.NewBotFacade(&stubReminderUC{})
		reply, err := f.HandleList(context.Background(), 42)
		if err != nil {
			t.Fatalf("HandleList: %v", err)
		}
		if reply != "You have no pending reminders." {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("lists tasks with ids", func(t *testing.T) {
		r1, err := model.NewReminder("", 42, "buy milk", time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("NewReminder: %v", err)
		}
		r2, err := model.NewReminder("", 42, "call mom", time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("NewReminder: %v", err)
		}
		f := application.NewBotFacade(&stubReminderUC{pending: []*model.Reminder{r1, r2}})

		reply, err := f.HandleList(context.Background(), 42)
		if err != nil {
			t.Fatalf("HandleList: %v", err)
		}
		for _, needle := range []string{"buy milk", "call mom", r1.ID, r2.ID, "/cancel"} {
			if !strings.Contains(reply, needle) {
				t.Errorf("reply missing %q:\n%s", needle, reply)
			}
		}
	})
}

func TestHandleCancel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := application.NewBotFacade(&stubReminderUC{})
		reply, err := f.HandleCancel(context.Background(), 42, "some-id")
		if err != nil {
			t.Fatalf("HandleCancel: %v", err)
		}
		if !strings.Contains(reply, "Cancelled") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("not found", func(t *testing.T) {
		f := application.NewBotFacade(&stubReminderUC{err: domain.ErrNotFound})
		reply, err := f.HandleCancel(context.Background(), 42, "nope")
		if err != nil {
			t.Fatalf("HandleCancel: %v", err)
		}
		if !strings.Contains(reply, "No pending reminder") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		f := application.NewBotFacade(&stubReminderUC{err: domain.ErrInvalidArgument})
		reply, err := f.HandleCancel(context.Background(), 42, "")
		if err != nil {
			t.Fatalf("HandleCancel: %v", err)
		}
		if !strings.Contains(reply, "Usage: /cancel") {
			t.Errorf("reply = %q", reply)
		}
	})
}
