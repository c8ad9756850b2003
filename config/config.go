package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddress   = "0.0.0.0:8080"
	DefaultSystemPrompt    = "You are a helpful AI assistant"
	DefaultMaxOutputTokens = 200
)

var ErrUnknownProvider = errors.New("unknown provider")

// env names that predate the CHAT_ prefix and are read as-is.
var envBindings = map[string][]string{
	"openai.api_key":      {"OPENAI_API_KEY"},
	"openai.base_url":     {"OPENAI_BASE_URL"},
	"openrouter.api_key":  {"OPENROUTER_API_KEY"},
	"openrouter.base_url": {"OPENROUTER_BASE_URL"},
	"gemini.api_key":      {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"gemini.base_url":     {"GEMINI_BASE_URL"},
	"proxy.base_url":      {"PROXY_BASE_URL"},
	"port":                {"PORT"},
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// and the environment, in increasing order of precedence. A missing API key is
// not an error here; the chat handler reports it per request.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("max_output_tokens", DefaultMaxOutputTokens)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("upstream_timeout", "0s")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}
	// AutomaticEnv alone does not surface these through Unmarshal.
	for _, key := range []string{"provider", "model", "listen_address", "metrics_address", "log_file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := configuration.normalize(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// OverrideProvider switches the active provider, as the -provider flag does,
// and re-validates the result.
func (c *Config) OverrideProvider(provider string) error {
	c.Provider = provider
	return c.normalize()
}

func (c *Config) normalize() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderOpenAI, ProviderOpenRouter, ProviderGemini, ProviderProxy:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.ListenAddress == "" {
		if c.Port != "" {
			c.ListenAddress = "0.0.0.0:" + c.Port
		} else {
			c.ListenAddress = DefaultListenAddress
		}
	}

	// Validation
	if c.Provider == ProviderProxy && strings.TrimSpace(c.Proxy.BaseURL) == "" {
		return errors.New("proxy.base_url is required for the proxy provider")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream_timeout must not be negative, got %s", c.UpstreamTimeout)
	}
	if strings.TrimSpace(c.SystemPrompt) == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	return nil
}
