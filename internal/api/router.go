package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/spyword/internal/api/handler"
	"github.com/mcoot/spyword/internal/api/middleware"
	sharedmw "github.com/mcoot/spyword/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Sessions      handler.SessionReader
	Settings      handler.SettingsStore
	Words         handler.WordStore
	AdminAuth     middleware.SecretVerifier
	EventChannel  http.Handler
	PublicBaseURL string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.PublicBaseURL)
	adminHandler := handler.NewAdminHandler(cfg.Settings, cfg.Words)

	// Create middleware
	adminMiddleware := middleware.AdminAuth(cfg.AdminAuth)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Event channel; logged once the connection closes
	if cfg.EventChannel != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(sharedmw.Recovery(cfg.Logger, sharedmw.PlainPanicHandler))
		ws.Use(loggingMiddleware)
		ws.Handle("", cfg.EventChannel).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", sessionHandler.Health).Methods(http.MethodGet)

	// Public session routes
	api.HandleFunc("/sessions/{code}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{code}/qr.png", sessionHandler.QR).Methods(http.MethodGet)

	// Admin routes (shared secret)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminMiddleware)
	admin.HandleFunc("/settings", adminHandler.GetSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", adminHandler.UpdateSettings).Methods(http.MethodPut)
	admin.HandleFunc("/words", adminHandler.GetWords).Methods(http.MethodGet)
	admin.HandleFunc("/words", adminHandler.ReplaceWords).Methods(http.MethodPut)

	return r
}
