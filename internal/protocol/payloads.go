package protocol

import "github.com/nettd/lobby-server/internal/model"

// RegisterRequest creates or re-resolves an identity
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Secret   string `json:"secret"`
}

// AuthRequest binds a connection to an existing identity. A caller may
// present either a matching ID or a matching secret.
type AuthRequest struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required"`
	Secret   string `json:"secret"`
}

// IdentityResponse is returned from both register and auth
type IdentityResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// JoinRoomRequest moves the session into the named room
type JoinRoomRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

// RoomResponse is returned from joinRoom and hostRoom
type RoomResponse struct {
	RoomCode string             `json:"roomCode"`
	Members  []model.MemberInfo `json:"members"`
}

// MessageRequest posts a chat line to a room the sender belongs to
type MessageRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// MessageResponse echoes the accepted message back to the sender
type MessageResponse struct {
	Message model.ChatMessage  `json:"message"`
	Members []model.MemberInfo `json:"members"`
}

// StartMatchRequest begins the readiness phase in a hosted room
type StartMatchRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

// ReadyRequest marks the caller ready in a pending match
type ReadyRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

// AckResponse is the empty success payload for operations that carry
// no result data
type AckResponse struct {
	RoomCode string `json:"roomCode"`
}
