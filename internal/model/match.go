package model

import "time"

// GameState is the readiness state of a room's match
type GameState string

const (
	// GameStatePending is the initial state: the match has been started
	// but members are still readying up
	GameStatePending GameState = "pending"
	// GameStateActive means every member readied up and the simulation
	// has taken over. Ending a match discards the Game rather than
	// recording a terminal state.
	GameStateActive GameState = "active"
)

// Game is a room's match readiness state machine. It exists only
// between startMatch and match end; readiness itself is derived from
// each member's MatchInfo.Ready flag.
type Game struct {
	RoomCode  RoomCode
	State     GameState
	StartedAt time.Time
}
