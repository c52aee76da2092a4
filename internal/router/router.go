package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/NicklasAaStadler/booking/internal/handlers"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the optional pieces of the router
type Config struct {
	AllowedOrigin  string
	MetricsHandler http.Handler
	Database       Pinger
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, cfg Config) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware(cfg.AllowedOrigin))

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet, http.MethodOptions)

	// Sessions
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete, http.MethodOptions)

	// Selection
	api.HandleFunc("/sessions/{id}/date", h.SelectDate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/month", h.ChangeMonth).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/floor", h.SelectFloor).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/room", h.ToggleRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/timeslot", h.SelectTimeSlot).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/participants/input", h.SetParticipantEmail).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/participants", h.AddParticipant).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/participants/{email}", h.RemoveParticipant).Methods(http.MethodDelete, http.MethodOptions)

	// Submission
	api.HandleFunc("/sessions/{id}/submit", h.Submit).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/confirm", h.Confirm).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/cancel", h.Cancel).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/dismiss", h.Dismiss).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/alert/dismiss", h.DismissAlert).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/dialogs/{dialog}/buttons/{index:[0-9]+}", h.PressDialogButton).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/dialogs/{dialog}/close", h.CloseDialog).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for live session state
	api.HandleFunc("/sessions/{id}/ws", h.WatchSession)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/ready", readyCheck(cfg.Database)).Methods(http.MethodGet)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler).Methods(http.MethodGet)
	}

	return r
}

func corsMiddleware(origin string) mux.MiddlewareFunc {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func readyCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
