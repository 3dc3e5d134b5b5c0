package handler

import (
	"net/http"

	"github.com/nettd/lobby-server/internal/api/apierr"
)

// WriteError writes an error response using the API error mapping
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}
