package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key so messages name the same
// path an operator would set in YAML or the environment.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}

		return name
	})

	v.RegisterStructValidation(validateRetry, RetryConfig{})
	v.RegisterStructValidation(validateDeployment, Config{})

	return v
}

// validateRetry rejects backoff bounds that can never be reached.
func validateRetry(sl validator.StructLevel) {
	r, _ := sl.Current().Interface().(RetryConfig)
	if r.MaxInterval > 0 && r.InitialInterval > r.MaxInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// validateDeployment holds prod to a shared database and verified callers.
func validateDeployment(sl validator.StructLevel) {
	c, _ := sl.Current().Interface().(Config)
	if c.App.Environment != "prod" {
		return
	}

	if c.Database.Driver == "sqlite" {
		sl.ReportError(c.Database.Driver, "database.driver", "Driver", "prod_driver", "postgres")
	}

	if !c.Auth.Enabled {
		sl.ReportError(c.Auth.Enabled, "auth.enabled", "Enabled", "prod_auth", "")
	}
}

// Validate checks the whole configuration and lists every problem at once.
// The service refuses to start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, describe(fe))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	field := formatFieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be below %s", field, fe.Param())
	case "prod_driver":
		return fmt.Sprintf("%s must be %s in prod", field, fe.Param())
	case "prod_auth":
		return field + " must be true in prod"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// formatFieldPath drops the root struct name: "Config.server.port" becomes
// "server.port".
func formatFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
