package config

import (
	"time"

	"github.com/elee1766/gemchat/src/aisdk"
)

// Config represents the complete configuration for gemchat
type Config struct {
	// Version of the configuration format
	Version string `json:"version" description:"Configuration format version"`

	// API configuration
	API APIConfig `json:"api"`

	// Generation parameters used when a chat starts
	Generation GenerationConfig `json:"generation"`

	// Storage configuration
	Storage StorageConfig `json:"storage,omitempty"`

	// Logging configuration
	Logging LoggingConfig `json:"logging,omitempty"`

	// UI preferences
	UI UIConfig `json:"ui,omitempty"`
}

// APIConfig holds API-related configuration
type APIConfig struct {
	// APIKey for authentication (can be omitted if using env vars)
	APIKey string `json:"api_key,omitempty" description:"Gemini API key; prefer the environment"`

	// APIKeyEnvVar names an extra environment variable to read the API key from
	APIKeyEnvVar string `json:"api_key_env_var,omitempty" description:"Environment variable holding the API key"`

	// BaseURL overrides the default API endpoint
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url" description:"Generative Language API base URL"`

	// Model is the model every chat talks to
	Model string `json:"model" validate:"required,model_name" description:"Model name, e.g. gemini-2.5-flash"`

	// Timeout for non-streaming requests such as listing models
	Timeout time.Duration `json:"timeout,omitempty" validate:"min=0" description:"Timeout for non-streaming calls, in nanoseconds"`
}

// GenerationConfig holds the initial generation parameters.
type GenerationConfig struct {
	// Temperature is a pointer so an explicit 0 survives merging
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=1" minimum:"0" maximum:"1" description:"Sampling temperature"`

	MaxOutputTokens int `json:"max_output_tokens,omitempty" validate:"omitempty,min=50,max=65000" minimum:"50" maximum:"65000" description:"Maximum tokens per reply"`
}

// StorageConfig defines where chat threads are kept
type StorageConfig struct {
	// DatabasePath is the SQLite file holding chat threads
	DatabasePath string `json:"database_path,omitempty" description:"SQLite database file"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"omitempty,log_level" enum:"debug,info,warn,error"`

	// File receives the logs of interactive sessions
	File string `json:"file,omitempty" description:"Log file used by the interactive chat"`
}

// UIConfig defines UI preferences
type UIConfig struct {
	// Theme ("light", "dark", "auto")
	Theme string `json:"theme,omitempty" validate:"omitempty,theme" enum:"light,dark,auto"`

	// CodeStyle is the chroma style for fenced code blocks
	CodeStyle string `json:"code_style,omitempty" validate:"omitempty,code_style" description:"Syntax highlighting style"`

	// NoColor disables styling entirely
	NoColor bool `json:"no_color,omitempty"`
}

// Params returns the configured generation parameters, snapped to the input steps.
func (g GenerationConfig) Params() aisdk.GenerationParams {
	params := aisdk.DefaultGenerationParams()
	if g.Temperature != nil {
		params.Temperature = aisdk.SnapTemperature(*g.Temperature)
	}
	if g.MaxOutputTokens != 0 {
		params.MaxOutputTokens = aisdk.SnapMaxOutputTokens(g.MaxOutputTokens)
	}
	return params
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	// SystemConfig path
	SystemConfig string

	// UserConfig path
	UserConfig string

	// ProjectConfig path
	ProjectConfig string

	// LocalConfig path
	LocalConfig string

	// ExplicitConfig is a file named on the command line; it must exist
	ExplicitConfig string

	// EnvironmentPrefix for env var overrides
	EnvironmentPrefix string
}

// Overrides carries values set by command-line flags. Zero values are ignored.
type Overrides struct {
	APIKey          string
	BaseURL         string
	Model           string
	DatabasePath    string
	LogLevel        string
	Temperature     *float64
	MaxOutputTokens int
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceLocal       ConfigSource = "local"
	SourceExplicit    ConfigSource = "explicit"
	SourceEnvironment ConfigSource = "environment"
	SourceCLI         ConfigSource = "cli"
)
