package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/slemppa/storized/internal/domain"
)

// APIError is a non-2xx response from the auth or table API. Message is the
// human readable text the backend returned and is safe to show to the user.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the matching domain sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// errorEnvelope covers the GoTrue (old and new) and PostgREST error shapes.
type errorEnvelope struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, kind: kindForStatus(status)}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = firstNonEmpty(env.ErrorCode, rawCode(env.Code), env.Error)
		apiErr.Message = firstNonEmpty(env.ErrorDescription, env.Msg, env.Message, env.Error)
	}
	if apiErr.Message == "" {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			text = http.StatusText(status)
		}
		apiErr.Message = fmt.Sprintf("status %d: %s", status, text)
	}
	return apiErr
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound || status == http.StatusNotAcceptable:
		return domain.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.ErrInvalidRequest
	default:
		return domain.ErrBackend
	}
}

// rawCode renders the "code" field, which is a string in PostgREST and a
// number in GoTrue.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
