package config

import (
	"fmt"
	"time"
)

// Config holds every runtime setting for the statement core. Values come from
// defaults, an optional config file and environment variables, in that order.
type Config struct {
	LogLevel        string
	DefaultCurrency string

	AI AIConfig
	FX FXConfig
}

// AIConfig configures the model-backed extraction strategy.
type AIConfig struct {
	// APIKey is the Gemini API credential. When empty the orchestrator treats
	// the AI strategy as not configured and routes straight to regex.
	APIKey string

	// Model is the Gemini model name used for statement parsing.
	Model string

	// Temperature is the sampling temperature for the extraction call. Kept
	// low so output stays deterministic-leaning.
	Temperature float64

	// MaxPromptChars bounds how much statement text is embedded in the
	// prompt. Truncation beyond this point is silent.
	MaxPromptChars int
}

// Configured reports whether the AI strategy has a usable credential.
func (c AIConfig) Configured() bool {
	return c.APIKey != ""
}

// FXConfig configures the exchange-rate resolver.
type FXConfig struct {
	// BaseURL is the root of the v4-style rates API (history/ and latest/
	// paths are appended).
	BaseURL string

	// Timeout bounds each rates call.
	Timeout time.Duration

	// CurrentTTL is the freshness window for "current" rate cache entries.
	CurrentTTL time.Duration

	// Workers is the size of the batch-conversion worker pool.
	Workers int
}

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	if c.DefaultCurrency == "" {
		return fmt.Errorf("config: default currency must not be empty")
	}
	if c.AI.MaxPromptChars <= 0 {
		return fmt.Errorf("config: ai.max_prompt_chars must be positive, got %d", c.AI.MaxPromptChars)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("config: ai.temperature %v out of range [0, 2]", c.AI.Temperature)
	}
	if c.FX.BaseURL == "" {
		return fmt.Errorf("config: fx.base_url must not be empty")
	}
	if c.FX.Timeout <= 0 {
		return fmt.Errorf("config: fx.timeout must be positive, got %v", c.FX.Timeout)
	}
	if c.FX.CurrentTTL <= 0 {
		return fmt.Errorf("config: fx.current_ttl must be positive, got %v", c.FX.CurrentTTL)
	}
	if c.FX.Workers < 1 {
		return fmt.Errorf("config: fx.workers must be at least 1, got %d", c.FX.Workers)
	}
	return nil
}
