package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/reviewinsights/internal/model"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile  string
	dataPath string
	verbose  bool
	noColor  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reviewinsights",
	Short: "Review insights - recurring customer feedback and improvement priorities",
	Long: `Review insights turns free-text customer reviews into standardized
feedback points, ranks the issues that recur across a business's reviews,
and asks a language model for improvement recommendations.

Reviews are read from a CSV dataset (local path or http/https URL).
Extraction and recommendations run against Ollama by default; OpenAI and
Anthropic are available through configuration.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reviewinsights %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reviewinsights/config.yaml)")
	flags.StringVar(&dataPath, "data", "", "review dataset CSV (path or http/https URL)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noColor, "no-color", false, "disable styled output")
	flags.String("provider", "", "LLM provider (ollama, openai, anthropic)")
	flags.String("model", "", "LLM model name")
	flags.Int("workers", 0, "concurrent workers for batch and process")

	_ = viper.BindPFlag("data.path", flags.Lookup("data"))
	_ = viper.BindPFlag("log.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("model"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("workers"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".reviewinsights"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// REVIEWINSIGHTS_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix("REVIEWINSIGHTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults declares every configuration key with its default so
// environment overrides reach Unmarshal
func registerDefaults(v *viper.Viper, cfg *model.Config) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)

	// omitempty keys are absent from the marshaled defaults
	for _, key := range []string{
		"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
		"cache.redis_password", "output.sqlite_path", "metrics.addr",
	} {
		v.SetDefault(key, "")
	}
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	err := v.Unmarshal(cfg, viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}))
	if err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if noColor {
		cfg.Output.Color = false
	}
	return cfg, nil
}
