package model

import "time"

// UserID uniquely identifies a registered user across the system
type UserID string

// Username constraints for registration
const (
	UsernameMinLength = 3
	UsernameMaxLength = 12
)

// User represents a registered player identity.
// The identity registry owns User records for the process lifetime;
// CurrentRoom and Match are transient and reset when the user enters
// a fresh room or match.
type User struct {
	ID       UserID
	Username string
	// SecretHash is the bcrypt hash of the client's credential secret
	SecretHash string
	// CurrentRoom is the code of the room the user is in, or empty
	CurrentRoom RoomCode
	// Match holds per-match state, meaningful only while the user's
	// room has a game
	Match     MatchInfo
	CreatedAt time.Time
}

// MatchInfo is a user's per-match state, reset on every match start
type MatchInfo struct {
	Ready  bool     `json:"ready"`
	Health int      `json:"health"`
	Money  int      `json:"money"`
	Towers []string `json:"towers"`
	Units  []string `json:"units"`
}

// NewMatchInfo returns the starting per-match state for a user
func NewMatchInfo() MatchInfo {
	return MatchInfo{
		Ready:  false,
		Health: 100,
		Money:  10,
		Towers: []string{},
		Units:  []string{},
	}
}

// ValidUsername reports whether a username satisfies the length constraint
func ValidUsername(username string) bool {
	return len(username) >= UsernameMinLength && len(username) <= UsernameMaxLength
}
