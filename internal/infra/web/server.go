package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-reminder-bot/internal/usecase"
)

// Server is the operational HTTP surface: health and metrics for the
// platform, plus a small JWT-protected admin API over the reminder store.
type Server struct {
	uc     usecase.ReminderUseCase
	auth   *AuthManager
	secret string
	log    *zerolog.Logger
}

func NewServer(uc usecase.ReminderUseCase, auth *AuthManager, adminSecret string, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		uc:     uc,
		auth:   auth,
		secret: adminSecret,
		log:    &webLog,
	}
}

// Router builds the full route tree. Health and metrics stay open;
// everything under /api/v1/reminders requires an admin session.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), RequestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/login", s.loginHandler())
	r.Post("/api/v1/auth/logout", s.logoutHandler())

	r.Route("/api/v1/reminders", func(r chi.Router) {
		r.Use(Timeout(10*time.Second), s.requireAdmin)
		r.Get("/", remindersListHandler(s.uc))
		r.Post("/", remindersCreateHandler(s.uc))
		r.Delete("/{id}", reminderDeleteHandler(s.uc))
	})

	return r
}

// requireAdmin gates the admin API behind a valid session token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || s.secret == "" {
			s.log.Error().Msg("Admin auth is not configured")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || s.secret == "" {
			s.log.Error().Msg("Admin auth is not configured")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.secret)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			s.log.Error().Err(err).Msg("minting session token failed")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}

func (s *Server) logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if s.auth != nil {
			s.auth.Clear(w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
