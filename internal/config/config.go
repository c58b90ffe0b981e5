package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName       string `mapstructure:"app_name"`
	Env           string `mapstructure:"app_env"`
	LogLevel      string `mapstructure:"log_level"`
	ProvidersFile string `mapstructure:"providers_file"`
	HTTPAddr      string `mapstructure:"http_addr"`
	UserAgent     string `mapstructure:"user_agent"`

	HTTPTimeoutMs      int64         `mapstructure:"http_timeout_ms"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	AggregateTimeoutMs int64         `mapstructure:"aggregate_timeout_ms"`
	AggregateTimeout   time.Duration `mapstructure:"-"`
	HTTPRateLimit      float64       `mapstructure:"http_rate_limit"`

	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`
}

const DefaultUserAgent = "GeekFeedBot/1.0 (+https://geekageddon.com)"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with command line flags layered over env and defaults.
// Flag names use the config key with dashes, e.g. --providers-file.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "geekfeed")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("providers_file", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("http_timeout_ms", 10000)
	v.SetDefault("aggregate_timeout_ms", 20000)
	v.SetDefault("http_rate_limit", 0)
	v.SetDefault("default_limit", 10)
	v.SetDefault("max_limit", 25)
	v.SetDefault("storage_type", "none")
	v.SetDefault("bbolt_path", "./data/geekfeed.db")

	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKnownKey(key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isKnownKey(key string) bool {
	switch key {
	case "app_name", "app_env", "log_level", "providers_file", "http_addr", "user_agent",
		"http_timeout_ms", "aggregate_timeout_ms", "http_rate_limit",
		"default_limit", "max_limit", "storage_type", "bbolt_path":
		return true
	}
	return false
}

func (cfg *Config) finalize() error {
	if cfg.HTTPTimeoutMs <= 0 {
		return fmt.Errorf("invalid http_timeout_ms (must be positive milliseconds)")
	}
	if cfg.AggregateTimeoutMs <= 0 {
		return fmt.Errorf("invalid aggregate_timeout_ms (must be positive milliseconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond
	cfg.AggregateTimeout = time.Duration(cfg.AggregateTimeoutMs) * time.Millisecond

	if cfg.HTTPRateLimit < 0 {
		return fmt.Errorf("invalid http_rate_limit (must be zero or positive)")
	}
	if cfg.MaxLimit <= 0 {
		return fmt.Errorf("invalid max_limit (must be positive)")
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		return fmt.Errorf("invalid default_limit (must be between 1 and max_limit)")
	}

	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return nil
}
