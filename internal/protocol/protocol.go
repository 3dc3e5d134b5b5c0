// Package protocol defines the wire schema for the realtime gateway:
// one request frame per operation, one reply frame per request, and
// broadcast event frames pushed to room members.
package protocol

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// Operation names accepted by the gateway
const (
	OpRegister   = "register"
	OpAuth       = "auth"
	OpJoinRoom   = "joinRoom"
	OpHostRoom   = "hostRoom"
	OpMessage    = "message"
	OpStartMatch = "startMatch"
	OpReady      = "ready"
)

// Request is the envelope for every client -> server frame
type Request struct {
	Op   string          `json:"op" validate:"required"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Reply is the envelope for every server -> client response frame.
// Exactly one of Data and Error is set. Broadcast events use the
// events.Event shape instead and are distinguished by their "type" key.
type Reply struct {
	Op    string     `json:"op"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the structured error returned to the originating
// connection only
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a decoded payload against its schema tags
func Validate(v any) error {
	return validate.Struct(v)
}
