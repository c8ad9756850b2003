package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultProxyModel = "gpt-3.5-turbo"

// ProxyCompleter calls an OpenAI-compatible endpoint that needs no credentials.
type ProxyCompleter struct {
	backend *Client
	model   string
}

type proxyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type proxyChatRequest struct {
	Model     string         `json:"model"`
	Messages  []proxyMessage `json:"messages"`
	MaxTokens int            `json:"max_tokens,omitempty"`
}

type proxyChatResponse struct {
	Choices []struct {
		Message proxyMessage `json:"message"`
	} `json:"choices"`
}

func NewProxyCompleter(baseURL, model string, timeout time.Duration) *ProxyCompleter {
	return &ProxyCompleter{
		backend: NewBackendClient(baseURL, timeout),
		model:   model,
	}
}

func (p *ProxyCompleter) Name() string { return "Proxy" }

func (p *ProxyCompleter) RequiresKey() bool { return false }

func (p *ProxyCompleter) Configured() bool { return p.backend.baseURL != "" }

func (p *ProxyCompleter) Model() string { return p.model }

func (p *ProxyCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, maxOutputTokens int) (string, error) {
	body, err := json.Marshal(proxyChatRequest{
		Model: p.model,
		Messages: []proxyMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens: maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("proxy: marshal request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	resp, err := p.backend.Forward(ctx, http.MethodPost, "/chat/completions", headers, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Provider: p.Name(), Message: fmt.Sprintf("read response: %v", err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details := decodeDetails(raw)
		return "", &UpstreamError{
			Provider:   p.Name(),
			StatusCode: resp.StatusCode,
			Message:    probeMessage(details),
			Details:    details,
		}
	}

	var chatResp proxyChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return "", &UpstreamError{Provider: p.Name(), Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return "", &UpstreamError{Provider: p.Name(), Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return chatResp.Choices[0].Message.Content, nil
}
