package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-playground/validator/v10"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("model_name", validateModelName)
	v.RegisterValidation("log_level", validateLogLevel)
	v.RegisterValidation("theme", validateTheme)
	v.RegisterValidation("code_style", validateCodeStyle)

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	// Set default version if empty
	if config.Version == "" {
		config.Version = "1.0"
	}

	if err := v.validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return ValidationError{
				Field:   e.Namespace(),
				Message: fmt.Sprintf("%s: validation failed on tag '%s' with value '%v'", e.Namespace(), e.Tag(), e.Value()),
				Value:   e.Value(),
			}
		}
		return err
	}

	return nil
}

// validateModelName accepts bare and "models/"-prefixed model names
func validateModelName(fl validator.FieldLevel) bool {
	value := strings.TrimPrefix(fl.Field().String(), "models/")
	return value != "" && !strings.ContainsAny(value, " \t\n/?#")
}

// validateLogLevel validates log level values
func validateLogLevel(fl validator.FieldLevel) bool {
	return slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(fl.Field().String()))
}

// validateTheme validates theme values
func validateTheme(fl validator.FieldLevel) bool {
	return slices.Contains([]string{"light", "dark", "auto"}, fl.Field().String())
}

// validateCodeStyle accepts any style registered with chroma
func validateCodeStyle(fl validator.FieldLevel) bool {
	return slices.Contains(styles.Names(), fl.Field().String())
}

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to reflect config schema: %w", err)
	}
	title := "gemchat configuration"
	schema.Title = &title

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config schema: %w", err)
	}
	return data, nil
}
