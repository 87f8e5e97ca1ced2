package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// configValidator reports fields by their koanf keys, so messages name the
// same paths used in YAML files and APP_* variables.
var configValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})

	return v
})

// Validate checks struct tags first, then the rules that span sections.
// The service refuses to start on any failure.
func (c *Config) Validate() error {
	var problems []string

	if err := configValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	problems = append(problems, c.crossChecks()...)

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

// crossChecks covers constraints between fields that tags cannot express.
func (c *Config) crossChecks() []string {
	var problems []string

	retry := c.Client.Retry
	if retry.MaxInterval > 0 && retry.InitialInterval > retry.MaxInterval {
		problems = append(problems, fmt.Sprintf(
			"client.retry.max_interval (%s) must not be below client.retry.initial_interval (%s)",
			retry.MaxInterval, retry.InitialInterval))
	}

	if c.Storage.Driver != "memory" && c.Storage.Path == ":memory:" {
		problems = append(problems, "storage.path :memory: needs storage.driver memory")
	}

	return problems
}

func describeFieldError(fe validator.FieldError) string {
	field := keyPath(fe.Namespace())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return field + " is required when " + conditionText(param)
	case "required_unless":
		return field + " is required unless " + conditionText(param)
	case "min":
		return field + " must be at least " + param
	case "max":
		return field + " must be at most " + param
	case "oneof":
		return field + " must be one of: " + param
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, param)
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " failed validation: " + fe.Tag()
	}
}

// keyPath drops the root struct from "Config.sync.batch_size".
func keyPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}

// conditionText turns a "Field value" tag parameter into "field is value".
func conditionText(param string) string {
	field, value, found := strings.Cut(param, " ")
	if !found {
		return param
	}

	return toSnake(field) + " is " + value
}

func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}

			r += 'a' - 'A'
		}

		b.WriteRune(r)
	}

	return b.String()
}
