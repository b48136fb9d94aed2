package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

// ErrMissingAPIKey indicates no API key was found in flags, environment or files
var ErrMissingAPIKey = errors.New("Gemini API key not found: set GEMCHAT_API_KEY or GOOGLE_API_KEY, or pass --api-key")

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	fs         afero.Fs
	precedence ConfigPrecedence
	validator  *Validator
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader reading from the OS filesystem
// and environment.
func NewLoader(precedence ConfigPrecedence) *Loader {
	return NewLoaderFs(afero.NewOsFs(), precedence, os.LookupEnv)
}

// NewLoaderFs creates a loader over an arbitrary filesystem and environment.
func NewLoaderFs(fsys afero.Fs, precedence ConfigPrecedence, lookupEnv func(string) (string, bool)) *Loader {
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	return &Loader{
		fs:         fsys,
		precedence: precedence,
		validator:  NewValidator(),
		lookupEnv:  lookupEnv,
	}
}

// Load loads configuration from all sources, applies flag overrides and
// validates the result.
func (l *Loader) Load(overrides Overrides) (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()

	// Load and merge configurations in order of precedence
	sources := []struct {
		path   string
		source ConfigSource
	}{
		{l.precedence.SystemConfig, SourceSystem},
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
		{l.precedence.LocalConfig, SourceLocal},
		{l.precedence.ExplicitConfig, SourceExplicit},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}

		cfg, err := l.loadFile(src.path)
		if err == nil {
			config = mergeConfigs(config, cfg)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) && src.source != SourceExplicit {
			continue
		}
		return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, src.path, err)
	}

	// Apply environment variable overrides
	if l.precedence.EnvironmentPrefix != "" {
		if err := l.applyEnvironmentOverrides(config); err != nil {
			return nil, err
		}
	}

	config.applyOverrides(overrides)

	// Validate the final configuration
	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFile loads a single configuration file
func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	// Validate before saving
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Ensure directory exists
	if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal with pretty printing
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// the file may hold an API key
	if err := afero.WriteFile(l.fs, path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}

	// Merge API config
	if override.API.APIKey != "" {
		result.API.APIKey = override.API.APIKey
	}
	if override.API.APIKeyEnvVar != "" {
		result.API.APIKeyEnvVar = override.API.APIKeyEnvVar
	}
	if override.API.BaseURL != "" {
		result.API.BaseURL = override.API.BaseURL
	}
	if override.API.Model != "" {
		result.API.Model = override.API.Model
	}
	if override.API.Timeout != 0 {
		result.API.Timeout = override.API.Timeout
	}

	// Merge Generation config
	if override.Generation.Temperature != nil {
		t := *override.Generation.Temperature
		result.Generation.Temperature = &t
	}
	if override.Generation.MaxOutputTokens != 0 {
		result.Generation.MaxOutputTokens = override.Generation.MaxOutputTokens
	}

	// Merge Storage
	if override.Storage.DatabasePath != "" {
		result.Storage.DatabasePath = override.Storage.DatabasePath
	}

	// Merge Logging
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		result.Logging.File = override.Logging.File
	}

	// Merge UI
	if override.UI.Theme != "" {
		result.UI.Theme = override.UI.Theme
	}
	if override.UI.CodeStyle != "" {
		result.UI.CodeStyle = override.UI.CodeStyle
	}
	if override.UI.NoColor {
		result.UI.NoColor = true
	}

	return &result
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) error {
	prefix := l.precedence.EnvironmentPrefix
	getenv := func(key string) string {
		v, _ := l.lookupEnv(key)
		return v
	}

	// Check for API key override
	if apiKey := getenv(prefix + "_API_KEY"); apiKey != "" {
		config.API.APIKey = apiKey
	}
	// a configured variable, then the conventional Google one
	if config.API.APIKey == "" && config.API.APIKeyEnvVar != "" {
		config.API.APIKey = getenv(config.API.APIKeyEnvVar)
	}
	if config.API.APIKey == "" {
		config.API.APIKey = getenv("GOOGLE_API_KEY")
	}

	if model := getenv(prefix + "_MODEL"); model != "" {
		config.API.Model = model
	}
	if baseURL := getenv(prefix + "_BASE_URL"); baseURL != "" {
		config.API.BaseURL = baseURL
	}
	if db := getenv(prefix + "_DB"); db != "" {
		config.Storage.DatabasePath = db
	}
	if level := getenv(prefix + "_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if _, ok := l.lookupEnv("NO_COLOR"); ok {
		config.UI.NoColor = true
	}

	if raw := getenv(prefix + "_TEMPERATURE"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s_TEMPERATURE %q: %w", prefix, raw, err)
		}
		config.Generation.Temperature = &t
	}
	if raw := getenv(prefix + "_MAX_TOKENS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s_MAX_TOKENS %q: %w", prefix, raw, err)
		}
		config.Generation.MaxOutputTokens = n
	}

	return nil
}

// applyOverrides applies command-line flags, the highest precedence source.
func (c *Config) applyOverrides(o Overrides) {
	if o.APIKey != "" {
		c.API.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		c.API.BaseURL = o.BaseURL
	}
	if o.Model != "" {
		c.API.Model = o.Model
	}
	if o.DatabasePath != "" {
		c.Storage.DatabasePath = o.DatabasePath
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Temperature != nil {
		t := *o.Temperature
		c.Generation.Temperature = &t
	}
	if o.MaxOutputTokens != 0 {
		c.Generation.MaxOutputTokens = o.MaxOutputTokens
	}
}

// RequireAPIKey returns the API key, or ErrMissingAPIKey.
func (c *Config) RequireAPIKey() (string, error) {
	if c.API.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	return c.API.APIKey, nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.API.APIKey != "" {
		out.API.APIKey = "********"
	}
	return &out
}
