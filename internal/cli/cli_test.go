package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/reviewinsights/internal/features"
	"github.com/ppiankov/reviewinsights/internal/model"
)

func newTestViper(t *testing.T, yamlBody string) *viper.Viper {
	t.Helper()
	v := viper.New()
	registerDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("REVIEWINSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if yamlBody != "" {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
			t.Fatal(err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			t.Fatalf("ReadInConfig failed: %v", err)
		}
	}
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, model.DefaultConfig()) {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	v := newTestViper(t, `
llm:
  model: llama3
  timeout: 30
cache:
  enabled: true
  ttl: 1h
concurrency:
  workers: 4
data:
  columns:
    text: body
`)
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LLM.Model != "llama3" || cfg.LLM.Timeout != 30 || cfg.LLM.Provider != "ollama" {
		t.Errorf("Unexpected LLM config %+v", cfg.LLM)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Hour {
		t.Errorf("Unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Concurrency.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Data.Columns.Text != "body" || cfg.Data.Columns.BusinessID != "business_id" {
		t.Errorf("Unexpected columns %+v", cfg.Data.Columns)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("REVIEWINSIGHTS_LLM_PROVIDER", "openai")
	t.Setenv("REVIEWINSIGHTS_LLM_API_KEY", "sk-test")
	t.Setenv("REVIEWINSIGHTS_CONCURRENCY_REQUESTS_PER_SECOND", "2.5")

	cfg, err := loadConfig(newTestViper(t, "llm:\n  provider: anthropic\n"))
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("Environment must override the file, got %+v", cfg.LLM)
	}
	if cfg.Concurrency.RequestsPerSecond != 2.5 {
		t.Errorf("Expected 2.5 rps, got %v", cfg.Concurrency.RequestsPerSecond)
	}
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := initConfigFile(path); err != nil {
		t.Fatalf("initConfigFile failed: %v", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, model.DefaultConfig()) {
		t.Errorf("Round-tripped config differs from defaults: %+v", cfg)
	}

	if err := initConfigFile(path); err == nil {
		t.Error("Expected error when the file already exists")
	}
}

func TestPrintLowVariance(t *testing.T) {
	var buf bytes.Buffer
	printLowVariance(&buf, nil, 0.9)
	if buf.String() != "No low-variance features found with threshold 0.9\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}

	buf.Reset()
	printLowVariance(&buf, []features.LowVariance{{Column: "flag", MaxProportion: 0.95, DominantValue: "0"}}, 0.9)
	if !strings.Contains(buf.String(), "Found and dropped 1 low-variance features") || !strings.Contains(buf.String(), "0.9500 0") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
