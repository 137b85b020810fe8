package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration with the default file name.
func Load() (*Config, error) {
	return loadConfig("statement-core")
}

// LoadWithName reads configuration using the given base file name. Useful for
// environment-specific files in tests and deployments.
func LoadWithName(configName string) (*Config, error) {
	return loadConfig(configName)
}

// loadConfig implements the layered approach:
// 1. defaults
// 2. optional config file (./configs, then .)
// 3. environment variables (STMT_ prefix, dots become underscores)
// 4. validation of the final result
func loadConfig(configName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults carry the load.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("STMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		LogLevel:        v.GetString("log_level"),
		DefaultCurrency: v.GetString("default_currency"),
		AI: AIConfig{
			APIKey:         v.GetString("ai.api_key"),
			Model:          v.GetString("ai.model"),
			Temperature:    v.GetFloat64("ai.temperature"),
			MaxPromptChars: v.GetInt("ai.max_prompt_chars"),
		},
		FX: FXConfig{
			BaseURL:    v.GetString("fx.base_url"),
			Timeout:    v.GetDuration("fx.timeout"),
			CurrentTTL: v.GetDuration("fx.current_ttl"),
			Workers:    v.GetInt("fx.workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("default_currency", "USD")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.temperature", 0.3)
	v.SetDefault("ai.max_prompt_chars", 4000)

	v.SetDefault("fx.base_url", "https://api.exchangerate-api.com/v4")
	v.SetDefault("fx.timeout", 5*time.Second)
	v.SetDefault("fx.current_ttl", time.Hour)
	v.SetDefault("fx.workers", 4)
}
