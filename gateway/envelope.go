package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/cardvault/go-cardvault-client/internal/errors"
)

// Envelope is the fixed response wrapper every CardVault API endpoint
// returns. Unwrapping happens in exactly one place (the gateway); a body
// that does not match this shape is a decoding error, not a guess.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
	Meta    *Meta           `json:"meta,omitempty"`
}

// Meta carries pagination hints on list responses.
type Meta struct {
	Total      int `json:"total,omitempty"`
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

// APIError is a request failure carried inside the envelope or implied by
// the HTTP status. It unwraps to the client error taxonomy so callers can
// branch with errors.Is.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Errors     []string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case e.StatusCode >= 500:
		return apperrors.ErrServer
	case e.StatusCode >= 400:
		return apperrors.ErrValidation
	}
	return apperrors.ErrInternal
}
