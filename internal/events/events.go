// Package events defines the broadcast events pushed to room members
// and the Publisher interface the transport layer implements.
package events

import "github.com/nettd/lobby-server/internal/model"

// Type identifies the kind of broadcast event
type Type string

const (
	// TypeMembers announces the room's updated member list after a join
	// or leave
	TypeMembers Type = "users"
	// TypeMessage carries a chat message (user or server originated)
	TypeMessage Type = "message"
	// TypeMatchStarted announces that a match entered the pending state
	TypeMatchStarted Type = "start"
	// TypeReady announces a single member's readiness change while the
	// match is still pending
	TypeReady Type = "ready"
	// TypeAllReady announces the pending -> active transition. Fired
	// exactly once per match.
	TypeAllReady Type = "allReady"
	// TypeMatchEnded announces that a match was discarded
	TypeMatchEnded Type = "end"
	// TypeRoomClosing announces that an emptied room is being destroyed
	TypeRoomClosing Type = "closing"
)

// Event is a broadcast pushed to every current member of a room.
// Members always carries the membership snapshot taken when the
// triggering operation completed, so clients converge on the same
// ordering the server observed.
type Event struct {
	Type     Type               `json:"type"`
	RoomCode model.RoomCode     `json:"roomCode"`
	Members  []model.MemberInfo `json:"users"`
	// Message is set for TypeMessage events
	Message *model.ChatMessage `json:"message,omitempty"`
}

// Publisher delivers events to every connection subscribed to a room.
// The ws hub implements it; services depend only on this interface.
type Publisher interface {
	Publish(room model.RoomCode, ev Event)
	// CloseRoom forces every connection out of the room's broadcast
	// group, after delivering any pending events
	CloseRoom(room model.RoomCode)
}

// NopPublisher discards all events. Used in tests and by callers that
// have no transport attached.
type NopPublisher struct{}

func (NopPublisher) Publish(model.RoomCode, Event) {}
func (NopPublisher) CloseRoom(model.RoomCode)      {}
