package model

import "time"

// Config holds the complete run configuration
type Config struct {
	Data        DataConfig        `yaml:"data"`
	LLM         LLMConfig         `yaml:"llm"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// DataConfig locates the review dataset and names its columns
type DataConfig struct {
	Path          string        `yaml:"path"` // local file or http(s) URL
	Columns       ColumnMapping `yaml:"columns"`
	MaxBytes      int64         `yaml:"max_bytes"`      // download cap for remote datasets
	FetchTimeout  int           `yaml:"fetch_timeout"`  // seconds, remote datasets only
	UserAgent     string        `yaml:"user_agent"`
	RespectRobots bool          `yaml:"respect_robots"` // check robots.txt before downloading
}

// ColumnMapping maps dataset headers to review fields
type ColumnMapping struct {
	BusinessID string `yaml:"business_id"`
	Name       string `yaml:"name"`
	Text       string `yaml:"text"`
	Stars      string `yaml:"stars"`
	ReviewID   string `yaml:"review_id"` // optional
}

// LLMConfig configures the generative model endpoint
type LLMConfig struct {
	Provider   string `yaml:"provider"` // ollama, openai, anthropic
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout"` // seconds, 0 waits indefinitely
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// AnalysisConfig holds ranking and progress parameters
type AnalysisConfig struct {
	TopIssues        int `yaml:"top_issues"`        // issues shown in the business report
	Recommendations  int `yaml:"recommendations"`   // top issues that get a generated recommendation
	BatchTopIssues   int `yaml:"batch_top_issues"`  // issues ranked per business in batch mode
	ReviewProgress   int `yaml:"review_progress"`   // single-business progress interval
	BusinessProgress int `yaml:"business_progress"` // batch progress interval
	DatasetProgress  int `yaml:"dataset_progress"`  // full-dataset progress interval
	SearchDisplay    int `yaml:"search_display"`    // matches printed by search
}

// ConcurrencyConfig controls optional parallelism and model throttling
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables throttling
	BurstSize         int     `yaml:"burst_size"`
}

// CacheConfig configures the model response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Backend   string        `yaml:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir"`
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisPass string        `yaml:"redis_password,omitempty"`
	RedisDB   int           `yaml:"redis_db"`
}

// OutputConfig controls generated artifacts
type OutputConfig struct {
	BatchFile   string `yaml:"batch_file"`
	DatasetFile string `yaml:"dataset_file"`
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	Color       bool   `yaml:"color"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Format  string `yaml:"format"` // console, json
	Verbose bool   `yaml:"verbose"`
}

// MetricsConfig controls the Prometheus listener
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // empty disables the listener
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Columns: ColumnMapping{
				BusinessID: "business_id",
				Name:       "name",
				Text:       "text",
				Stars:      "stars_review",
				ReviewID:   "review_id",
			},
			MaxBytes:      4 << 30,
			FetchTimeout:  300,
			UserAgent:     "reviewinsights/0.1",
			RespectRobots: true,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "mistral:latest",
		},
		Analysis: AnalysisConfig{
			TopIssues:        10,
			Recommendations:  5,
			BatchTopIssues:   5,
			ReviewProgress:   10,
			BusinessProgress: 50,
			DatasetProgress:  1000,
			SearchDisplay:    20,
		},
		Concurrency: ConcurrencyConfig{
			Workers:   1,
			BurstSize: 5,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Backend:   "layered",
			Dir:       ".reviewinsights-cache",
			TTL:       7 * 24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		Output: OutputConfig{
			BatchFile:   "business_insights_summary.csv",
			DatasetFile: "reviews_analyzed_with_suggestions.csv",
			Color:       true,
		},
		Log: LogConfig{
			Format: "console",
		},
	}
}
