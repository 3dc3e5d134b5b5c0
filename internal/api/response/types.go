package response

import (
	"time"

	"github.com/nettd/lobby-server/internal/model"
)

// User represents a registered identity in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// RoomSummary is the list-view shape of a room
type RoomSummary struct {
	Code        string `json:"code"`
	Capacity    int    `json:"capacity"`
	MemberCount int    `json:"member_count"`
	MatchState  string `json:"match_state,omitempty"`
}

// RoomSummaryFromModel converts a model.Room to a RoomSummary
func RoomSummaryFromModel(r *model.Room) RoomSummary {
	s := RoomSummary{
		Code:        string(r.Code),
		Capacity:    r.Capacity,
		MemberCount: len(r.Members),
	}
	if r.Game != nil {
		s.MatchState = string(r.Game.State)
	}
	return s
}

// Room is the detail-view shape of a room. The chat log deliberately
// stays off the wire: the endpoint is unauthenticated and the log is
// server-side state.
type Room struct {
	Code       string             `json:"code"`
	Capacity   int                `json:"capacity"`
	Members    []model.MemberInfo `json:"members"`
	MatchState string             `json:"match_state,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	room := Room{
		Code:      string(r.Code),
		Capacity:  r.Capacity,
		Members:   r.MemberList(),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Game != nil {
		room.MatchState = string(r.Game.State)
	}
	return room
}

// RoomList wraps the room listing
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// Health reports service liveness and headline gauges
type Health struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	Rooms          int    `json:"rooms"`
}
