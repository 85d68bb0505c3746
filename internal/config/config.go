// Package config loads service configuration from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/bio-generator/internal/llm"
	"github.com/jonathan/bio-generator/internal/server/ratelimit"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. BIOGEN_PORT.
const EnvPrefix = "BIOGEN"

// Config is the resolved service configuration.
type Config struct {
	Port              int
	APIKey            string
	DatabaseURL       string
	Verbose           bool
	GenerationTimeout time.Duration
	LLM               llm.Config
	RateLimit         RateLimit
}

// RateLimit holds the rate limiting settings.
type RateLimit struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	GenerateLimit   int
	GenerateWindow  time.Duration
	GenerateBurst   int
	Whitelist       string
	Blacklist       string
}

// Load reads configuration from BIOGEN_* environment variables and the YAML
// file at path. When path is empty bio-generator.yaml in the working
// directory is used if it exists. GEMINI_API_KEY and DATABASE_URL are also
// accepted without the prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gemini_api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bio-generator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Port:              v.GetInt("port"),
		APIKey:            v.GetString("gemini_api_key"),
		DatabaseURL:       v.GetString("database_url"),
		Verbose:           v.GetBool("verbose"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		LLM: llm.Config{
			Provider: llm.Provider(v.GetString("llm.provider")),
			Model:    v.GetString("llm.model"),
			Generation: llm.GenerationParams{
				Temperature:     float32(v.GetFloat64("llm.temperature")),
				MaxOutputTokens: v.GetInt32("llm.max_output_tokens"),
				TopP:            float32(v.GetFloat64("llm.top_p")),
			},
		},
		RateLimit: RateLimit{
			Enabled:         v.GetBool("rate_limit.enabled"),
			DefaultLimit:    v.GetInt("rate_limit.default_limit"),
			DefaultWindow:   v.GetDuration("rate_limit.default_window"),
			CleanupInterval: v.GetDuration("rate_limit.cleanup_interval"),
			GenerateLimit:   v.GetInt("rate_limit.generate_limit"),
			GenerateWindow:  v.GetDuration("rate_limit.generate_window"),
			GenerateBurst:   v.GetInt("rate_limit.generate_burst"),
			Whitelist:       v.GetString("rate_limit.whitelist"),
			Blacklist:       v.GetString("rate_limit.blacklist"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := llm.DefaultConfig()

	v.SetDefault("port", 8080)
	v.SetDefault("verbose", false)
	v.SetDefault("generation_timeout", "30s")
	v.SetDefault("llm.provider", string(defaults.Provider))
	v.SetDefault("llm.model", defaults.Model)
	v.SetDefault("llm.temperature", defaults.Generation.Temperature)
	v.SetDefault("llm.max_output_tokens", defaults.Generation.MaxOutputTokens)
	v.SetDefault("llm.top_p", defaults.Generation.TopP)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", "1m")
	v.SetDefault("rate_limit.cleanup_interval", "5m")
	v.SetDefault("rate_limit.generate_limit", 30)
	v.SetDefault("rate_limit.generate_window", "1h")
	v.SetDefault("rate_limit.generate_burst", 5)
}

// Validate checks that the configuration has valid values.
// The API key is not checked here; commands that call Gemini require it.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("config error: 'generation_timeout' must be non-negative")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 0 || c.RateLimit.GenerateLimit < 0 {
			return fmt.Errorf("config error: rate limits must be non-negative")
		}
		if c.RateLimit.DefaultWindow <= 0 || c.RateLimit.GenerateWindow <= 0 {
			return fmt.Errorf("config error: rate limit windows must be positive")
		}
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RequireAPIKey returns an error when no Gemini API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	return nil
}

// RateLimitConfig converts the settings for the rate limiter.
func (c *Config) RateLimitConfig() *ratelimit.Config {
	rl := c.RateLimit
	if !rl.Enabled {
		return &ratelimit.Config{Enabled: false}
	}
	return &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow,
		CleanupInterval: rl.CleanupInterval,
		Whitelist:       ratelimit.ParseIPList(rl.Whitelist),
		Blacklist:       ratelimit.ParseIPList(rl.Blacklist),
		EndpointConfigs: ratelimit.GenerateEndpointConfigs(rl.GenerateLimit, rl.GenerateWindow, rl.GenerateBurst),
	}
}
