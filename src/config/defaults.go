package config

import (
	"time"

	"github.com/elee1766/gemchat/src/aisdk"
)

const (
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-2.5-flash"

	// DefaultCodeStyle is the chroma style for code blocks
	DefaultCodeStyle = "monokai"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	temperature := aisdk.DefaultTemperature
	return &Config{
		Version: "1.0",
		API: APIConfig{
			Model:   DefaultModel,
			Timeout: 30 * time.Second,
		},
		Generation: GenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: aisdk.DefaultMaxOutputTokens,
		},
		Storage: StorageConfig{
			DatabasePath: DefaultDatabasePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  DefaultLogPath(),
		},
		UI: UIConfig{
			Theme:     "auto",
			CodeStyle: DefaultCodeStyle,
		},
	}
}

// MergeWithDefaults merges a partial configuration with defaults
func MergeWithDefaults(partial *Config) *Config {
	return mergeConfigs(DefaultConfig(), partial)
}
