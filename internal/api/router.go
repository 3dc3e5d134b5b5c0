package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nettd/lobby-server/internal/api/handler"
	"github.com/nettd/lobby-server/internal/api/middleware"
	"github.com/nettd/lobby-server/internal/services/identity"
	"github.com/nettd/lobby-server/internal/services/room"
	"github.com/nettd/lobby-server/internal/services/session"
	"github.com/nettd/lobby-server/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityService *identity.Service
	RoomService     *room.Service
	SessionTracker  *session.Tracker
	Gateway         *ws.Gateway
}

// NewRouter creates a new router with all routes configured. The
// realtime gateway is mounted outside the API middleware chain; its
// connections are upgraded, long-lived, and traced by the gateway.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	userHandler := handler.NewUserHandler(cfg.IdentityService)
	roomHandler := handler.NewRoomHandler(cfg.RoomService)
	healthHandler := handler.NewHealthHandler(cfg.SessionTracker, cfg.RoomService)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	r.Handle("/ws", cfg.Gateway)

	return r
}
