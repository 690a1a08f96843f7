package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Keys      KeysConfig                `yaml:"keys" mapstructure:"keys"`
	Extract   ExtractConfig             `yaml:"extract" mapstructure:"extract"`
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Log       LogConfig                 `yaml:"log" mapstructure:"log"`
}

// KeysConfig holds API credentials per provider backend.
type KeysConfig struct {
	OpenAI      string `yaml:"openai" mapstructure:"openai"`
	Anthropic   string `yaml:"anthropic" mapstructure:"anthropic"`
	Google      string `yaml:"google" mapstructure:"google"`
	HuggingFace string `yaml:"huggingface" mapstructure:"huggingface"`
}

// ExtractConfig configures the extraction run.
type ExtractConfig struct {
	InputCSV    string `yaml:"input_csv" mapstructure:"input_csv"`
	PromptFile  string `yaml:"prompt_file" mapstructure:"prompt_file"`
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	SampleSize  int    `yaml:"sample_size" mapstructure:"sample_size"`
}

// ProviderConfig configures one logical provider.
type ProviderConfig struct {
	ModelName  string  `yaml:"model_name" mapstructure:"model_name"`
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	ClientType string  `yaml:"client_type" mapstructure:"client_type"`
	MaxTokens  int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS        float64 `yaml:"rps" mapstructure:"rps"` // 0 = unpaced
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LITEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("extract.input_csv", "data/filtered_texts.csv")
	v.SetDefault("extract.prompt_file", "prompt.txt")
	v.SetDefault("extract.output_dir", "data")
	v.SetDefault("extract.concurrency", 15)
	v.SetDefault("extract.sample_size", 0)
	v.SetDefault("providers", defaultProviders())

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// defaultProviders mirrors the provider roster the pipeline was built around.
// Only openai ships enabled; the rest are opted into per run.
func defaultProviders() map[string]map[string]any {
	return map[string]map[string]any{
		"openai": {
			"model_name":  "gpt-4o-mini",
			"enabled":     true,
			"client_type": "openai",
			"max_tokens":  16384,
		},
		"claude": {
			"model_name":  "claude-3-5-sonnet-20241022",
			"enabled":     false,
			"client_type": "anthropic",
			"max_tokens":  16384,
		},
		"gemini": {
			"model_name":  "gemini-2.5-flash-lite",
			"enabled":     false,
			"client_type": "google",
			"max_tokens":  16384,
		},
		"llama": {
			"model_name":  "meta-llama/Llama-3.3-70B-Instruct",
			"enabled":     false,
			"client_type": "llama",
			"max_tokens":  16384,
		},
		"deepseek": {
			"model_name":  "deepseek-ai/DeepSeek-V3.2:novita",
			"enabled":     false,
			"client_type": "deepseek",
			"max_tokens":  16384,
		},
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
