package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/nettd/lobby-server/internal/api/response"
	"github.com/nettd/lobby-server/internal/model"
	"github.com/nettd/lobby-server/internal/services/room"
)

// RoomHandler handles the read-only room registry endpoints
type RoomHandler struct {
	rooms *room.Service
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Service) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	list := response.RoomList{Rooms: make([]response.RoomSummary, 0, len(rooms))}
	for _, rm := range rooms {
		list.Rooms = append(list.Rooms, response.RoomSummaryFromModel(rm))
	}
	response.JSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(strings.ToUpper(mux.Vars(r)["code"]))
	if !model.ValidRoomCode(code) {
		WriteError(w, model.ErrMalformedRoomCode)
		return
	}

	rm, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}
