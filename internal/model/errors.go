package model

import "errors"

// Sentinel errors used across the application, grouped by the failure
// class the API layer maps them to.
var (
	// Validation failures (malformed input)
	ErrUsernameLength    = errors.New("username must be between 3 and 12 characters")
	ErrMalformedRoomCode = errors.New("room code must be 4 uppercase alphanumeric characters")
	ErrMessageTooLong    = errors.New("message too long")
	ErrMessageTooShort   = errors.New("message too short")

	// Conflicts (state already claimed or transitioned)
	ErrUsernameTaken   = errors.New("username already taken")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrAlreadyInRoom   = errors.New("already in room")
	ErrMatchInProgress = errors.New("match already started")
	ErrMatchNotPending = errors.New("match is no longer accepting ready signals")

	// Permission failures (acting on a room you are not part of)
	ErrNotInRoom = errors.New("not in room")

	// Authentication failures (acting before a successful authenticate)
	ErrNotAuthenticated = errors.New("not authenticated")

	// Not found
	ErrUserNotFound      = errors.New("no such user exists")
	ErrRoomNotFound      = errors.New("no such room exists")
	ErrNoMatchInProgress = errors.New("no match in progress")

	// Capacity
	ErrRoomFull = errors.New("room is full")

	// Preconditions
	ErrInsufficientPlayers = errors.New("not enough players to start")
)
