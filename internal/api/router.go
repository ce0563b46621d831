package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/handler"
	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/api/realtime"
	"github.com/mcoot/blackjack-go/internal/services/room"
	"github.com/mcoot/blackjack-go/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController session.ControllerInterface
	RoomController    room.ControllerInterface
	HubManager        *realtime.HubManager
	StorageType       string
	// Pinger checks storage connectivity for /health (optional)
	Pinger handler.Pinger
	// AllowedOrigins lists extra browser origins allowed to open /ws
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.SessionController)
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.HubManager)
	healthHandler := handler.NewHealthHandler(cfg.StorageType, cfg.Pinger)
	wsHandler := realtime.NewHandler(cfg.RoomController, cfg.HubManager, cfg.Logger, cfg.AllowedOrigins)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Single-player
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/game/start", sessionHandler.StartGame).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/game", sessionHandler.GetGame).Methods(http.MethodGet)
	// restart must be registered before the generic action route
	api.HandleFunc("/sessions/{id}/game/restart", sessionHandler.Restart).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/game/{action}", sessionHandler.Action).Methods(http.MethodPost)

	// Multiplayer (read-only; play happens over /ws)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/events", roomHandler.Events).Methods(http.MethodGet)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(recoveryMiddleware)
	ws.Use(loggingMiddleware)
	ws.Handle("", wsHandler).Methods(http.MethodGet)

	return r
}
