package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrNetwork wraps transport failures (DNS, refused connections, timeouts).
var ErrNetwork = errors.New("Network error")

// APIError is a non-2xx answer from the upstream. Message is the text the
// admin sees, taken from the body when the upstream provides one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Describe turns err into the inline message shown next to the action that
// failed.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNetwork) {
		return ErrNetwork.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// messageFrom extracts "message" or "error" from an error body. Validation
// errors sometimes carry a list of messages, which are joined.
func messageFrom(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if msg := textOf(payload[key]); msg != "" {
			return msg
		}
	}
	return ""
}

func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", ")
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
