// Package config loads and validates the pipeline configuration: cache
// backend selection, the model catalog, prompt templates and cost-control
// knobs. The core is parametric over all of it; model identifiers are opaque
// strings that only ever feed the cache key and the provider call.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ModelInfo describes one entry of the model catalog.
type ModelInfo struct {
	ID          string `mapstructure:"id" validate:"required"` // Provider model ID or ARN
	MaxTokens   int    `mapstructure:"max_tokens"`
	Description string `mapstructure:"description"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	URL       string `mapstructure:"url"`
	TTL       int    `mapstructure:"ttl"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// MongoConfig configures the MongoDB cache backend.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=file memory redis mongo"`
	Dir     string      `mapstructure:"dir"`
	Redis   RedisConfig `mapstructure:"redis"`
	Mongo   MongoConfig `mapstructure:"mongo"`
}

// PromptConfig carries the prompt templates handed to the provider. Their
// content is configuration, not engineered logic.
type PromptConfig struct {
	System             string `mapstructure:"system"`
	UserTemplate       string `mapstructure:"user_template"`
	ValidationTemplate string `mapstructure:"validation_template"`
}

// RetryConfig configures provider call retries.
type RetryConfig struct {
	MaxRetries       int `mapstructure:"max_retries"`
	BaseDelaySeconds int `mapstructure:"base_delay_seconds"`
	MaxDelaySeconds  int `mapstructure:"max_delay_seconds"`
}

// RateLimitConfig configures the model call budget.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	BurstSize         int `mapstructure:"burst_size"`
}

// OpenAIConfig carries provider credentials and endpoint overrides.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Config is the full pipeline configuration.
type Config struct {
	Cache        CacheConfig          `mapstructure:"cache"`
	Models       map[string]ModelInfo `mapstructure:"models" validate:"dive"`
	DefaultModel string               `mapstructure:"default_model"`
	Prompts      PromptConfig         `mapstructure:"prompts"`
	Retry        RetryConfig          `mapstructure:"retry"`
	RateLimit    RateLimitConfig      `mapstructure:"rate_limit"`
	OpenAI       OpenAIConfig         `mapstructure:"openai"`
	MetricsAddr  string               `mapstructure:"metrics_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.redis.key_prefix", "cloudshift:")
	v.SetDefault("cache.mongo.database", "cloudshift")
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay_seconds", 1)
	v.SetDefault("retry.max_delay_seconds", 30)
	v.SetDefault("rate_limit.requests_per_minute", 60)
}

// Load reads configuration from the given file, falling back to defaults and
// CLOUDSHIFT_* environment variables. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("cloudshift")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DefaultModel != "" {
		if _, ok := cfg.Models[cfg.DefaultModel]; !ok {
			return nil, fmt.Errorf("default_model %q is not in the model catalog", cfg.DefaultModel)
		}
	}
	return &cfg, nil
}

// Model resolves a catalog entry by name, using the default model when name
// is empty.
func (c *Config) Model(name string) (ModelInfo, error) {
	if name == "" {
		name = c.DefaultModel
	}
	if name == "" {
		return ModelInfo{}, errors.New("no model selected and no default_model configured")
	}
	info, ok := c.Models[name]
	if !ok {
		return ModelInfo{}, fmt.Errorf("unknown model %q", name)
	}
	return info, nil
}

// ModelNames lists the catalog names. Frontends use it to offer a model
// comparison run.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	return names
}
