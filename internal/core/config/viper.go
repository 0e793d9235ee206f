package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned value.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	d := DefaultFilterAPIConfig()
	v.SetDefault("filter_api.host", d.Host)
	v.SetDefault("filter_api.port", d.Port)
	v.SetDefault("filter_api.max_concurrent_streams", d.MaxConcurrentStreams)
	v.SetDefault("filter_api.request_timeout", d.RequestTimeout.String())
	v.SetDefault("filter_api.max_batch_size", d.MaxBatchSize)
	v.SetDefault("filter_api.max_rule_depth", d.MaxRuleDepth)
	v.SetDefault("filter_api.max_conditions", d.MaxConditions)
	v.SetDefault("filter_api.min_set_patterns", d.MinSetPatterns)
	v.SetDefault("database.url", "sqlite://strbounds.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// SB_FILTER_API_PORT overrides filter_api.port
	v.SetEnvPrefix("SB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		FilterAPI: FilterAPIConfig{
			Host:                 v.GetString("filter_api.host"),
			Port:                 v.GetInt("filter_api.port"),
			MaxConcurrentStreams: v.GetInt("filter_api.max_concurrent_streams"),
			RequestTimeout:       v.GetDuration("filter_api.request_timeout"),
			MaxBatchSize:         v.GetInt("filter_api.max_batch_size"),
			MaxRuleDepth:         v.GetInt("filter_api.max_rule_depth"),
			MaxConditions:        v.GetInt("filter_api.max_conditions"),
			MinSetPatterns:       v.GetInt("filter_api.min_set_patterns"),
		},
		Database: DatabaseConfig{URL: v.GetString("database.url")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and that every limit is positive.
func validateConfig(cfg *Config) error {
	api := cfg.FilterAPI
	if api.Port <= 0 || api.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", api.Port)
	}
	if api.MaxConcurrentStreams <= 0 {
		return fmt.Errorf("max_concurrent_streams must be positive, got %d", api.MaxConcurrentStreams)
	}
	if api.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", api.RequestTimeout)
	}
	if api.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", api.MaxBatchSize)
	}
	if api.MaxRuleDepth <= 0 {
		return fmt.Errorf("max_rule_depth must be positive, got %d", api.MaxRuleDepth)
	}
	if api.MaxConditions <= 0 {
		return fmt.Errorf("max_conditions must be positive, got %d", api.MaxConditions)
	}
	if api.MinSetPatterns <= 1 {
		return fmt.Errorf("min_set_patterns must be at least 2, got %d", api.MinSetPatterns)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url must be set")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("filter_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use SB_HMAC_SECRET environment variable)")
	}
	return nil
}
