package llm

import (
	"context"
)

// Generator is the single capability the analysis pipeline consumes:
// one prompt in, one completion out
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider defines the interface for LLM providers
type Provider interface {
	Generator

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the prompt and sampling options
type GenerateRequest struct {
	// Model is the specific model to use (provider-specific, empty uses the configured model)
	Model string

	// Prompt is the complete prompt text
	Prompt string

	// Temperature controls randomness (0 = provider default)
	Temperature float64

	// TopP is nucleus sampling mass (0 = provider default)
	TopP float64

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the model output
type GenerateResponse struct {
	// Text is the raw completion text
	Text string `json:"text"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// TokensUsed tracks token consumption
	TokensUsed int `json:"tokens_used"`
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "ollama", "openai", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests in seconds; 0 means no client-side timeout
	Timeout int

	// MaxTokens is used when a request does not set its own
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "ollama",
		Model:     "mistral:latest",
		Timeout:   0,
		MaxTokens: 100,
	}
}

// resolve fills unset request fields from the provider configuration
func resolve(req GenerateRequest, config Config, fallbackModel string) (model string, maxTokens int) {
	model = req.Model
	if model == "" {
		model = config.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 100
	}
	return model, maxTokens
}
