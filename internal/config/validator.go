package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// knownAreas are the backend areas that accept a base URL override.
var knownAreas = map[string]bool{
	"auth":          true,
	"pembeli":       true,
	"penitip":       true,
	"kurir":         true,
	"hunter":        true,
	"profile":       true,
	"catalog":       true,
	"notifications": true,
	"merchandise":   true,
}

// RegisterCustomValidators registers the client's validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	if err := v.RegisterValidation("area", validateArea); err != nil {
		return fmt.Errorf("failed to register area validator: %w", err)
	}
	return nil
}

// validateDuration accepts a positive Go duration string.
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

func validateArea(fl validator.FieldLevel) bool {
	return knownAreas[fl.Field().String()]
}

// Validate validates the Config using struct tags and cross-field rules.
// Returns an error if validation fails, with actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if c.Retry.MaxDelayDuration() < c.Retry.BaseDelayDuration() {
		return errors.New("retry: max_delay must not be shorter than base_delay")
	}
	if c.Store.Driver != "memory" && c.Store.Path == "" {
		return fmt.Errorf("store: path is required for driver %q", c.Store.Driver)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "duration":
		return fmt.Sprintf("%s must be a positive duration such as 15s", field)
	case "area":
		return fmt.Sprintf("%s: unknown backend area %q", field, e.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
