package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nettd/lobby-server/internal/api/apierr"
	"github.com/nettd/lobby-server/internal/api/request"
	"github.com/nettd/lobby-server/internal/api/response"
	"github.com/nettd/lobby-server/internal/services/identity"
)

// UserHandler handles identity endpoints
type UserHandler struct {
	identity *identity.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(identityService *identity.Service) *UserHandler {
	return &UserHandler{identity: identityService}
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apierr.NewInvalidRequestError("Malformed request body"))
		return
	}

	user, err := h.identity.Register(r.Context(), req.Username, req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.UserFromModel(user))
}
