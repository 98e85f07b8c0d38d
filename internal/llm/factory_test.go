package llm

import (
	"testing"

	"github.com/ppiankov/reviewinsights/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{name: "ollama", config: Config{Provider: "ollama"}, wantName: "ollama"},
		{name: "openai", config: Config{Provider: "OpenAI", APIKey: "k"}, wantName: "openai"},
		{name: "anthropic", config: Config{Provider: "anthropic", APIKey: "k"}, wantName: "anthropic"},
		{name: "claude alias", config: Config{Provider: "claude", APIKey: "k"}, wantName: "anthropic"},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
		{name: "empty", config: Config{}, wantErr: true},
		{name: "unknown", config: Config{Provider: "bard"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	cfg := Config{Provider: "openai"}
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("Expected key from environment, got %q", cfg.APIKey)
	}

	cfg = Config{Provider: "openai", APIKey: "explicit"}
	_ = ApplyEnv(&cfg)
	if cfg.APIKey != "explicit" {
		t.Errorf("Explicit key must win, got %q", cfg.APIKey)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	if err := ApplyEnv(&Config{Provider: "anthropic"}); err == nil {
		t.Error("Expected error when ANTHROPIC_API_KEY is missing")
	}

	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	cfg = Config{Provider: "ollama"}
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected base URL from environment, got %q", cfg.BaseURL)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{Provider: "ollama", Model: "mistral:latest", Timeout: 30, NoProxy: "localhost"})
	if cfg.Provider != "ollama" || cfg.Model != "mistral:latest" || cfg.Timeout != 30 || cfg.NoProxy != "localhost" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestResolve(t *testing.T) {
	model, maxTokens := resolve(GenerateRequest{}, Config{}, "fallback")
	if model != "fallback" || maxTokens != 100 {
		t.Errorf("Expected fallback defaults, got %s %d", model, maxTokens)
	}
	model, maxTokens = resolve(GenerateRequest{Model: "m", MaxTokens: 80}, Config{Model: "c", MaxTokens: 200}, "f")
	if model != "m" || maxTokens != 80 {
		t.Errorf("Request values must win, got %s %d", model, maxTokens)
	}
}
