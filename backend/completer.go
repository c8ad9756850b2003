package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey = errors.New("api key is not configured")
	ErrEmptyResponse = errors.New("empty response")
)

// Completer is a single upstream chat-completion provider.
type Completer interface {
	// Name is the human readable provider name used in logs and error bodies.
	Name() string
	// RequiresKey reports whether the provider needs an API key at all.
	RequiresKey() bool
	// Configured reports whether the provider has everything it needs to be called.
	Configured() bool
	// Complete sends one system instruction and one user turn and returns the
	// text of the first completion.
	Complete(ctx context.Context, systemPrompt, userMessage string, maxOutputTokens int) (string, error)
}

// UpstreamError is a failed provider call. StatusCode is zero when the
// provider never produced an HTTP status (network error, malformed body).
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	// Details is the provider's raw error payload, decoded JSON when possible.
	Details any
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// decodeDetails turns a raw error body into something JSON-encodable.
func decodeDetails(raw []byte) any {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// probeMessage digs the human readable message out of a decoded error body.
// It understands {"error": {"message": ...}}, {"error": "..."} and {"message": ...}.
func probeMessage(details any) string {
	m, ok := details.(map[string]any)
	if !ok {
		return ""
	}
	switch e := m["error"].(type) {
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	case string:
		return e
	}
	if msg, ok := m["message"].(string); ok {
		return msg
	}
	return ""
}
