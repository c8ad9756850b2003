package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

type stubGeminiModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls       int
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (s *stubGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	return s.resp, s.err
}

func geminiTextResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
	}
}

func TestGeminiCompleterComplete(t *testing.T) {
	stub := &stubGeminiModels{resp: geminiTextResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "Hi "},
		&genai.Part{Text: "there!"},
	)}
	c := &GeminiCompleter{models: stub, model: DefaultGeminiModel}

	got, err := c.Complete(context.Background(), "You are a helpful AI assistant", "Hello", 200)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Hi there!" {
		t.Errorf("reply: got %q, want %q", got, "Hi there!")
	}
	if stub.gotModel != DefaultGeminiModel {
		t.Errorf("model: got %q", stub.gotModel)
	}
	if len(stub.gotContents) != 1 || stub.gotContents[0].Role != genai.RoleUser {
		t.Fatalf("contents: want exactly one user turn, got %+v", stub.gotContents)
	}
	if stub.gotContents[0].Parts[0].Text != "Hello" {
		t.Errorf("user text: got %q", stub.gotContents[0].Parts[0].Text)
	}
	if stub.gotConfig.SystemInstruction == nil || stub.gotConfig.SystemInstruction.Parts[0].Text != "You are a helpful AI assistant" {
		t.Error("system instruction not forwarded")
	}
	if stub.gotConfig.MaxOutputTokens != 200 {
		t.Errorf("max output tokens: got %d, want 200", stub.gotConfig.MaxOutputTokens)
	}
}

func TestGeminiCompleterAPIError(t *testing.T) {
	apiErr := genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}
	stub := &stubGeminiModels{err: fmt.Errorf("generate: %w", apiErr)}
	c := &GeminiCompleter{models: stub, model: DefaultGeminiModel}

	_, err := c.Complete(context.Background(), "sys", "hello", 200)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if upErr.StatusCode != 429 {
		t.Errorf("status: got %d, want 429", upErr.StatusCode)
	}
	if upErr.Message != "Resource has been exhausted" {
		t.Errorf("message: got %q", upErr.Message)
	}
	if probeMessage(upErr.Details) != "Resource has been exhausted" {
		t.Errorf("details should carry the structured error, got %v", upErr.Details)
	}
}

func TestGeminiCompleterPlainError(t *testing.T) {
	stub := &stubGeminiModels{err: errors.New("dial tcp: connection refused")}
	c := &GeminiCompleter{models: stub, model: DefaultGeminiModel}

	_, err := c.Complete(context.Background(), "sys", "hello", 200)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if upErr.StatusCode != 0 {
		t.Errorf("status: got %d, want 0", upErr.StatusCode)
	}
	if upErr.Message != "dial tcp: connection refused" {
		t.Errorf("message: got %q", upErr.Message)
	}
}

func TestGeminiCompleterEmptyCandidates(t *testing.T) {
	stub := &stubGeminiModels{resp: &genai.GenerateContentResponse{}}
	c := &GeminiCompleter{models: stub, model: DefaultGeminiModel}

	_, err := c.Complete(context.Background(), "sys", "hello", 200)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGeminiCompleterCandidateWithoutContent(t *testing.T) {
	stub := &stubGeminiModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}}
	c := &GeminiCompleter{models: stub, model: DefaultGeminiModel}

	got, err := c.Complete(context.Background(), "sys", "hello", 200)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "" {
		t.Errorf("reply: got %q, want empty", got)
	}
}

func TestNewGeminiCompleterWithoutKey(t *testing.T) {
	c, err := NewGeminiCompleter("", "", DefaultGeminiModel, nil)
	if err != nil {
		t.Fatalf("NewGeminiCompleter: %v", err)
	}
	if c.Configured() {
		t.Error("completer without key should not be configured")
	}
	if _, err := c.Complete(context.Background(), "sys", "hello", 200); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestNewGeminiCompleterForwardsClientConfig(t *testing.T) {
	orig := newGeminiClient
	defer func() { newGeminiClient = orig }()

	var gotCfg *genai.ClientConfig
	newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		gotCfg = cfg
		return &genai.Client{}, nil
	}

	httpClient := &http.Client{}
	c, err := NewGeminiCompleter("g-key", "http://gemini.local", "gemini-2.0-flash", httpClient)
	if err != nil {
		t.Fatalf("NewGeminiCompleter: %v", err)
	}
	if gotCfg == nil {
		t.Fatal("client config not captured")
	}
	if gotCfg.APIKey != "g-key" {
		t.Errorf("api key: got %q", gotCfg.APIKey)
	}
	if gotCfg.Backend != genai.BackendGeminiAPI {
		t.Errorf("backend: got %v", gotCfg.Backend)
	}
	if gotCfg.HTTPOptions.BaseURL != "http://gemini.local" {
		t.Errorf("base url: got %q", gotCfg.HTTPOptions.BaseURL)
	}
	if gotCfg.HTTPClient != httpClient {
		t.Error("http client not forwarded")
	}
	if c.Model() != "gemini-2.0-flash" {
		t.Errorf("model: got %q", c.Model())
	}
}

func TestNewGeminiCompleterClientError(t *testing.T) {
	orig := newGeminiClient
	defer func() { newGeminiClient = orig }()

	newGeminiClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		return nil, errors.New("boom")
	}

	if _, err := NewGeminiCompleter("g-key", "", DefaultGeminiModel, nil); err == nil {
		t.Error("expected error, got nil")
	}
}
