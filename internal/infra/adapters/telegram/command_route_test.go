package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestCommandRoutes(t *testing.T) {
	// commandRoutes and rateLimited touch no Telegram state until a
	// handler runs, so a zero adapter is enough here.
	r := &RealBotAdapter{}
	routes := r.commandRoutes()

	for _, name := range []string{"start", "help", "list", "cancel"} {
		if _, ok := routes[name]; !ok {
			t.Fatalf("expected a route for /%s", name)
		}
	}
	if len(routes) != 4 {
		t.Fatalf("unexpected extra routes: got %d", len(routes))
	}
}

func TestRateLimitedPassThroughWithoutRedis(t *testing.T) {
	r := &RealBotAdapter{}

	called := 0
	h := r.rateLimited("/list", func(ctx context.Context, m *tgbotapi.Message) error {
		called++
		return nil
	})

	msg := &tgbotapi.Message{From: &tgbotapi.User{ID: 7}, Chat: &tgbotapi.Chat{ID: 7}}
	if err := h(context.Background(), msg); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if called != 1 {
		t.Fatalf("want handler called once, got %d", called)
	}
}
