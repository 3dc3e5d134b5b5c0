package handler

import (
	"net/http"

	"github.com/nettd/lobby-server/internal/api/response"
	"github.com/nettd/lobby-server/internal/services/room"
	"github.com/nettd/lobby-server/internal/services/session"
)

// HealthHandler reports liveness plus headline gauges
type HealthHandler struct {
	tracker *session.Tracker
	rooms   *room.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(tracker *session.Tracker, rooms *room.Service) *HealthHandler {
	return &HealthHandler{tracker: tracker, rooms: rooms}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Health{
		Status:         "ok",
		ActiveSessions: h.tracker.ActiveSessions(),
		Rooms:          len(rooms),
	})
}
