package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-reminder-bot/internal/domain"
	"telegram-reminder-bot/internal/domain/model"
	"telegram-reminder-bot/internal/usecase"
)

type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// The expected JSON request body for creating a reminder directly,
// bypassing the language model.
type reminderCreateRequest struct {
	ChatID int64     `json:"chat_id"`
	Task   string    `json:"task"`
	FireAt time.Time `json:"fire_at"`
}

type reminderResponse struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Task      string    `json:"task"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

func toReminderResponse(r *model.Reminder) reminderResponse {
	return reminderResponse{
		ID:        r.ID,
		ChatID:    r.ChatID,
		Task:      r.Task,
		FireAt:    r.FireAt,
		CreatedAt: r.CreatedAt,
		Status:    string(r.Status),
	}
}

// remindersListHandler lists pending reminders, optionally scoped to one
// chat via the 'chat_id' query parameter.
func remindersListHandler(uc usecase.ReminderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var chatID int64
		if raw := r.URL.Query().Get("chat_id"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "Invalid chat_id", http.StatusBadRequest)
				return
			}
			chatID = parsed
		}

		reminders, err := uc.ListPending(ctx, chatID)
		if err != nil {
			http.Error(w, "Failed to list reminders", http.StatusInternalServerError)
			return
		}

		items := make([]reminderResponse, 0, len(reminders))
		for _, rem := range reminders {
			items = append(items, toReminderResponse(rem))
		}

		response := struct {
			Data  []reminderResponse `json:"data"`
			Total int                `json:"total"`
		}{
			Data:  items,
			Total: len(items),
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// remindersCreateHandler schedules a reminder from structured fields.
func remindersCreateHandler(uc usecase.ReminderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req reminderCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		reminder, err := uc.Schedule(ctx, req.ChatID, req.Task, req.FireAt)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			case errors.Is(err, domain.ErrSchedulerClosed):
				http.Error(w, "Scheduler is shutting down", http.StatusServiceUnavailable)
			default:
				http.Error(w, "Failed to create reminder", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toReminderResponse(reminder))
	}
}

// reminderDeleteHandler cancels a pending reminder by id.
func reminderDeleteHandler(uc usecase.ReminderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if err := uc.Cancel(ctx, 0, id); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "Reminder ID is required", http.StatusBadRequest)
			default:
				http.Error(w, "Failed to cancel reminder", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
