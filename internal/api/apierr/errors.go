package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nettd/lobby-server/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUsernameLength      = "USERNAME_LENGTH"
	CodeMalformedRoomCode   = "MALFORMED_ROOM_CODE"
	CodeMessageTooLong      = "MESSAGE_TOO_LONG"
	CodeMessageTooShort     = "MESSAGE_TOO_SHORT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeNoMatchInProgress   = "NO_MATCH_IN_PROGRESS"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeAlreadyLoggedIn     = "ALREADY_LOGGED_IN"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeMatchInProgress     = "MATCH_IN_PROGRESS"
	CodeMatchNotPending     = "MATCH_NOT_PENDING"
	CodeRoomFull            = "ROOM_FULL"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Describe converts an error to its wire code and message without
// writing it anywhere. The realtime gateway uses this to embed the
// same taxonomy inside operation replies.
func Describe(err error) APIError {
	return toHTTPError(err).apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Malformed request payload"}}
	}

	switch {
	case errors.Is(err, model.ErrUsernameLength):
		return &httpError{http.StatusBadRequest, APIError{CodeUsernameLength, "Username must be 3 to 12 characters"}}
	case errors.Is(err, model.ErrMalformedRoomCode):
		return &httpError{http.StatusBadRequest, APIError{CodeMalformedRoomCode, "Room code must be 4 characters A-Z or 0-9"}}
	case errors.Is(err, model.ErrMessageTooLong):
		return &httpError{http.StatusBadRequest, APIError{CodeMessageTooLong, "Message is too long"}}
	case errors.Is(err, model.ErrMessageTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeMessageTooShort, "Message is too short"}}
	case errors.Is(err, model.ErrNotAuthenticated):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
	case errors.Is(err, model.ErrNotInRoom):
		return &httpError{http.StatusForbidden, APIError{CodeNotInRoom, "Not a member of this room"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrNoMatchInProgress):
		return &httpError{http.StatusNotFound, APIError{CodeNoMatchInProgress, "No match in progress"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username is already taken"}}
	case errors.Is(err, model.ErrAlreadyLoggedIn):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyLoggedIn, "User is already logged in"}}
	case errors.Is(err, model.ErrAlreadyInRoom):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInRoom, "Already in this room"}}
	case errors.Is(err, model.ErrMatchInProgress):
		return &httpError{http.StatusConflict, APIError{CodeMatchInProgress, "A match is already in progress"}}
	case errors.Is(err, model.ErrMatchNotPending):
		return &httpError{http.StatusConflict, APIError{CodeMatchNotPending, "Match is not awaiting readiness"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players to start"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
