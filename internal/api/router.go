package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/teamdraw/teamdraw-go/internal/api/handler"
	apimiddleware "github.com/teamdraw/teamdraw-go/internal/api/middleware"
	"github.com/teamdraw/teamdraw-go/internal/middleware"
	"github.com/teamdraw/teamdraw-go/internal/notifier"
	"github.com/teamdraw/teamdraw-go/internal/services/draw"
	"github.com/teamdraw/teamdraw-go/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Registry   *registry.Service
	DrawEngine *draw.Engine
	Notifier   *notifier.Notifier

	// AdminToken guards the admin subrouter; empty disables admin routes
	AdminToken string

	// RegistrationURL is encoded into the QR code served to attendees
	RegistrationURL string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	participantHandler := handler.NewParticipantHandler(cfg.Registry)
	adminHandler := handler.NewAdminHandler(cfg.Registry)
	drawHandler := handler.NewDrawHandler(cfg.DrawEngine)
	eventsHandler := handler.NewEventsHandler(cfg.Registry, cfg.Notifier, cfg.Logger)
	qrHandler := handler.NewQRHandler(cfg.RegistrationURL)

	// Create middleware
	adminAuthMiddleware := apimiddleware.AdminAuth(cfg.AdminToken)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes: attendees register and everybody observes
	api.HandleFunc("/participants", participantHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/participants", participantHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/participants/{id}", participantHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/stats", participantHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/draw", drawHandler.Status).Methods(http.MethodGet)
	api.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)
	api.HandleFunc("/qr", qrHandler.Get).Methods(http.MethodGet)

	// Admin routes (bearer token required)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminAuthMiddleware)
	admin.HandleFunc("/participants", adminHandler.ClearAll).Methods(http.MethodDelete)
	admin.HandleFunc("/participants/reset", adminHandler.ResetGame).Methods(http.MethodPost)
	admin.HandleFunc("/participants/{id}", adminHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/participants/{id}/status", adminHandler.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/draw/spin", drawHandler.Spin).Methods(http.MethodPost)
	admin.HandleFunc("/draw/decide", drawHandler.Decide).Methods(http.MethodPost)
	admin.HandleFunc("/draw/reset", drawHandler.ResetRound).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
