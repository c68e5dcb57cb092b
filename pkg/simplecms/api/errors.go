package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var payloadErr *simplecms.InvalidPayloadError
	if errors.As(err, &payloadErr) {
		resp.Field = payloadErr.Field
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, simplecms.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, simplecms.ErrDuplicateSlug), errors.Is(err, simplecms.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, simplecms.ErrInvalidPayload):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, simplecms.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, simplecms.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}
