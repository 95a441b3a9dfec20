package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Guard     GuardConfig
	Sandbox   SandboxConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// GuardConfig holds snippet validation policy.
type GuardConfig struct {
	// RulesGlob is a doublestar glob of YAML/TOML/JSON rule files
	RulesGlob       string `envconfig:"EVALGUARD_RULES" default:""`
	WatchRules      bool   `envconfig:"EVALGUARD_RULES_WATCH" default:"true"`
	SkipSyntaxCheck bool   `envconfig:"EVALGUARD_SKIP_SYNTAX_CHECK" default:"false"`
	// TrustRequests lets callers set allow_dangerous per request
	TrustRequests   bool `envconfig:"EVALGUARD_TRUST_REQUESTS" default:"false"`
	MaxSnippetBytes int  `envconfig:"EVALGUARD_MAX_SNIPPET_BYTES" default:"65536"`
}

// SandboxConfig holds dry-run evaluator configuration.
type SandboxConfig struct {
	Enabled  bool          `envconfig:"SANDBOX_ENABLED" default:"true"`
	PoolSize int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	Timeout  time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"2s"`

	// Consecutive pool failures that open the breaker, and how long it stays open
	BreakerFailures int           `envconfig:"SANDBOX_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"SANDBOX_BREAKER_COOLDOWN" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Guard: GuardConfig{
			WatchRules:      true,
			MaxSnippetBytes: 64 * 1024,
		},
		Sandbox: SandboxConfig{
			Enabled:  true,
			PoolSize: 4,
			Timeout:  2 * time.Second,

			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
	}
}
