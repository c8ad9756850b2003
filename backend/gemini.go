package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type geminiModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
	return genai.NewClient(ctx, cfg)
}

// GeminiCompleter calls Google's Gemini API through the genai SDK.
type GeminiCompleter struct {
	models geminiModelsClient
	model  string
}

// NewGeminiCompleter builds a Gemini completer. Without an API key no SDK
// client is created and the completer reports itself unconfigured.
func NewGeminiCompleter(apiKey, baseURL, model string, httpClient *http.Client) (*GeminiCompleter, error) {
	c := &GeminiCompleter{model: model}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return c, nil
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if strings.TrimSpace(baseURL) != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := newGeminiClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = client.Models
	return c, nil
}

func (c *GeminiCompleter) Name() string { return "Gemini" }

func (c *GeminiCompleter) RequiresKey() bool { return true }

func (c *GeminiCompleter) Configured() bool { return c.models != nil }

func (c *GeminiCompleter) Model() string { return c.model }

// Complete sends a single generateContent request.
func (c *GeminiCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, maxOutputTokens int) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: userMessage}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	if maxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(maxOutputTokens)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", c.wrapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", &UpstreamError{Provider: c.Name(), Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return candidateText(resp.Candidates[0]), nil
}

// candidateText joins the visible parts. A candidate without content is an
// empty reply, the same as a choice with null content from the other providers.
func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func (c *GeminiCompleter) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return c.fromAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return c.fromAPIError(*apiErrPtr, err)
	}
	return &UpstreamError{Provider: c.Name(), Message: err.Error(), Err: err}
}

func (c *GeminiCompleter) fromAPIError(apiErr genai.APIError, err error) *UpstreamError {
	body := map[string]any{
		"code":    apiErr.Code,
		"message": apiErr.Message,
		"status":  apiErr.Status,
	}
	if len(apiErr.Details) > 0 {
		body["details"] = apiErr.Details
	}
	return &UpstreamError{
		Provider:   c.Name(),
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Details:    map[string]any{"error": body},
		Err:        err,
	}
}
