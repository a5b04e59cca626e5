package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/estate-client/internal/errors"
)

// Error is a non-2xx response. Message is safe to show to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap maps the status onto the client's error taxonomy.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return errors.ErrValidation
	case e.Status == http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return errors.ErrAccessDenied
	case e.Status == http.StatusNotFound:
		return errors.ErrNotFound
	case e.Status == http.StatusConflict:
		return errors.ErrConflict
	default:
		return errors.ErrServer
	}
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: extractMessage(body)}
}

// extractMessage pulls a readable message from an error body. The backend
// uses "detail" (a string, or a list of {msg} for request validation); other
// services use "message" or "error".
func extractMessage(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return errors.GenericMessage
	}

	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && strings.TrimSpace(detail) != "" {
			return detail
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}
	if strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return errors.GenericMessage
}

// DisplayMessage turns any error from a backend call into a line fit for a
// banner. It never returns an empty string.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, errors.ErrValidation):
		return err.Error()
	case errors.Is(err, errors.ErrNetwork):
		return "Unable to reach the server. Check your connection and try again."
	case errors.Is(err, errors.ErrTokenExpired), errors.Is(err, errors.ErrNotAuthenticated):
		return "Your session has expired. Please log in again."
	default:
		return errors.GenericMessage
	}
}
