package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultOpenAIModel     = "gpt-3.5-turbo"
	DefaultOpenRouterModel = "openai/gpt-3.5-turbo"
)

// OpenAICompleter talks to the OpenAI chat completions API or anything that
// speaks it behind an API key (OpenRouter and similar aggregators).
type OpenAICompleter struct {
	name   string
	client openai.Client
	model  string
	apiKey string
}

// NewOpenAICompleter builds a completer for an OpenAI-compatible endpoint.
// An empty baseURL means the official OpenAI API.
func NewOpenAICompleter(name, apiKey, baseURL, model string, httpClient *http.Client) *OpenAICompleter {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		// One attempt per request, success or failure.
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAICompleter{
		name:   name,
		client: openai.NewClient(opts...),
		model:  model,
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (c *OpenAICompleter) Name() string { return c.name }

func (c *OpenAICompleter) RequiresKey() bool { return true }

func (c *OpenAICompleter) Configured() bool { return c.apiKey != "" }

func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends a non-streaming chat completion request.
func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userMessage string, maxOutputTokens int) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
	}
	if maxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxOutputTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Provider: c.name, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAICompleter) wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &UpstreamError{Provider: c.name, Message: err.Error(), Err: err}
	}

	var details any
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if body, readErr := io.ReadAll(apiErr.Response.Body); readErr == nil {
			details = decodeDetails(body)
		}
	}
	if details == nil {
		details = decodeDetails([]byte(apiErr.RawJSON()))
	}

	msg := apiErr.Message
	if msg == "" {
		msg = probeMessage(details)
	}
	return &UpstreamError{
		Provider:   c.name,
		StatusCode: apiErr.StatusCode,
		Message:    msg,
		Details:    details,
		Err:        err,
	}
}
