package config

import "time"

// Supported upstream provider kinds.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderProxy      = "proxy"
)

// ProviderConfigEntry holds the credentials and endpoint for one upstream provider.
type ProviderConfigEntry struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Config holds the application configuration.
type Config struct {
	Provider        string        `mapstructure:"provider"`
	Model           string        `mapstructure:"model"`
	ListenAddress   string        `mapstructure:"listen_address"`
	Port            string        `mapstructure:"port"`
	MetricsAddress  string        `mapstructure:"metrics_address"`
	SystemPrompt    string        `mapstructure:"system_prompt"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	OpenAI     ProviderConfigEntry `mapstructure:"openai"`
	OpenRouter ProviderConfigEntry `mapstructure:"openrouter"`
	Gemini     ProviderConfigEntry `mapstructure:"gemini"`
	Proxy      ProviderConfigEntry `mapstructure:"proxy"`
}

// Active returns the entry for the selected provider.
func (c *Config) Active() ProviderConfigEntry {
	switch c.Provider {
	case ProviderOpenRouter:
		return c.OpenRouter
	case ProviderGemini:
		return c.Gemini
	case ProviderProxy:
		return c.Proxy
	default:
		return c.OpenAI
	}
}

// KeyEnvName is the environment variable that carries the selected provider's
// API key, or "" when the provider takes none.
func (c *Config) KeyEnvName() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}
