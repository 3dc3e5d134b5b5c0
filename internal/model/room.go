package model

import "time"

// RoomCode is the 4-character join code identifying a room
type RoomCode string

// Room code constraints
const (
	RoomCodeLength   = 4
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// DefaultRoomCode is the permanent lobby room every authenticated user
// lands in. It is created with the registry and never destroyed.
const DefaultRoomCode RoomCode = "MAIN"

// UnboundedCapacity marks a room with no member limit
const UnboundedCapacity = 0

// RoomMember records a user's membership in a room, in join order
type RoomMember struct {
	UserID   UserID
	Username string
	JoinedAt time.Time
}

// Room groups users for chat and matches.
// Invariants: len(Members) never exceeds Capacity when bounded; Code is
// unique across the live registry; members appear at most once, in join
// order. The room owns its chat log and, while present, its game.
type Room struct {
	Code      RoomCode
	Capacity  int // UnboundedCapacity for no limit
	Members   []RoomMember
	Chat      Chat
	Game      *Game // nil outside a match
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRoom constructs a room with an empty chat log.
// The code must already be well formed: room codes are produced by the
// registry's generator, and a malformed code here is a caller bug.
func NewRoom(code RoomCode, capacity int, chatCfg ChatConfig, now time.Time) (*Room, error) {
	if !ValidRoomCode(code) {
		return nil, ErrMalformedRoomCode
	}
	return &Room{
		Code:     code,
		Capacity: capacity,
		Members:  []RoomMember{},
		Chat: Chat{
			Config:   chatCfg,
			Messages: []ChatMessage{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsDefault reports whether this is the permanent lobby room
func (r *Room) IsDefault() bool {
	return r.Code == DefaultRoomCode
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	return r.Capacity != UnboundedCapacity && len(r.Members) >= r.Capacity
}

// HasMember reports whether the user is currently a member
func (r *Room) HasMember(id UserID) bool {
	for _, m := range r.Members {
		if m.UserID == id {
			return true
		}
	}
	return false
}

// HasMemberNamed reports whether a member with the username is present
func (r *Room) HasMemberNamed(username string) bool {
	for _, m := range r.Members {
		if m.Username == username {
			return true
		}
	}
	return false
}

// RemoveMember deletes the member with the given id, preserving join order.
// It reports whether a member was removed.
func (r *Room) RemoveMember(id UserID) bool {
	for i, m := range r.Members {
		if m.UserID == id {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberList is the read-only membership projection safe to expose to
// clients: usernames only, never ids or secrets.
func (r *Room) MemberList() []MemberInfo {
	members := make([]MemberInfo, len(r.Members))
	for i, m := range r.Members {
		members[i] = MemberInfo{Username: m.Username}
	}
	return members
}

// MemberInfo is the client-visible projection of a room member
type MemberInfo struct {
	Username string `json:"username"`
}

// ValidRoomCode reports whether a code is 4 uppercase alphanumeric characters
func ValidRoomCode(code RoomCode) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
