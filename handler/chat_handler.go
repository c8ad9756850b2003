package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sangneko/Chat-AI/backend"
	"github.com/sangneko/Chat-AI/manager"
)

// Response texts returned to the chat frontend.
const (
	msgNoMessage      = "Không có tin nhắn được gửi."
	msgMissingConfig  = "Lỗi cấu hình máy chủ: chưa thiết lập API key cho %s."
	msgUpstreamPrefix = "Lỗi từ API %s"
	msgGeneric        = "Đã xảy ra lỗi khi xử lý yêu cầu của bạn."
)

// ChatOptions are the fixed parameters of every upstream call.
type ChatOptions struct {
	SystemPrompt    string
	MaxOutputTokens int
}

// ChatHandler relays one user message to the configured provider per request.
type ChatHandler struct {
	Provider backend.Completer
	Options  ChatOptions
	Tracker  *manager.CallTracker
}

// NewChatHandler creates a ChatHandler. tracker may be nil.
func NewChatHandler(provider backend.Completer, opts ChatOptions, tracker *manager.CallTracker) *ChatHandler {
	return &ChatHandler{
		Provider: provider,
		Options:  opts,
		Tracker:  tracker,
	}
}

// ServeHTTP implements the http.Handler interface for ChatHandler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload RequestPayload
	// A non-string message fails to decode and counts as missing.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		logAndReturnError(w, r, ErrorPayload{Error: msgNoMessage}, http.StatusBadRequest)
		return
	}

	name := h.Provider.Name()
	if h.Provider.RequiresKey() && !h.Provider.Configured() {
		logAndReturnError(w, r, ErrorPayload{Error: fmt.Sprintf(msgMissingConfig, name)}, http.StatusInternalServerError,
			fmt.Sprintf("%s API key is not configured", name))
		return
	}

	entry := requestLogger(r).WithField("provider", name)
	entry.Infof("Received message: %q", payload.Message)

	done := h.Tracker.Begin(name)
	reply, err := h.Provider.Complete(r.Context(), h.Options.SystemPrompt, payload.Message, h.Options.MaxOutputTokens)
	done(err)

	if err != nil {
		status, body := describeFailure(name, err)
		logAndReturnError(w, r, body, status, fmt.Sprintf("Error calling %s API: %v", name, err))
		return
	}

	entry.Infof("Reply: %q", reply)
	writeJSON(w, http.StatusOK, ReplyPayload{Reply: reply})
}

// describeFailure maps a provider error onto the response status and body.
// The status is the upstream's when it reported an error status, else 500.
// The message prefers the structured upstream body, then the error's own
// message, then the generic text.
func describeFailure(provider string, err error) (int, ErrorPayload) {
	var upErr *backend.UpstreamError
	if !errors.As(err, &upErr) {
		if msg := err.Error(); msg != "" {
			return http.StatusInternalServerError, ErrorPayload{Error: msg}
		}
		return http.StatusInternalServerError, ErrorPayload{Error: msgGeneric}
	}

	status := http.StatusInternalServerError
	if upErr.StatusCode >= 400 && upErr.StatusCode <= 599 {
		status = upErr.StatusCode
	}

	body := ErrorPayload{Details: upErr.Details}
	switch {
	case upErr.StatusCode > 0 && upErr.Details != nil:
		body.Error = fmt.Sprintf(msgUpstreamPrefix, provider)
		if upErr.Message != "" {
			body.Error += ": " + upErr.Message
		}
	case upErr.Message != "":
		body.Error = upErr.Message
	case upErr.Err != nil && upErr.Err.Error() != "":
		body.Error = upErr.Err.Error()
	default:
		body.Error = msgGeneric
	}
	return status, body
}
