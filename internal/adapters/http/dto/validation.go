package dto

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// RequestError is a request body the shell refused before it reached the
// service. It unwraps to domain.ErrValidation.
type RequestError struct {
	// Malformed is set when the body was not decodable JSON.
	Malformed bool

	// Fields maps JSON field names to messages.
	Fields map[string]string

	Cause error
}

func (e *RequestError) Error() string {
	if e.Malformed {
		return "malformed request body: " + e.Cause.Error()
	}

	return "request validation failed"
}

func (e *RequestError) Unwrap() []error {
	return []error{domain.ErrValidation, e.Cause}
}

// requestValidator is shared by every binder. Field names in messages follow
// the json tags.
var requestValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
})

// BindAndValidate decodes the JSON body into v and checks its validate tags.
// Failures are *RequestError.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return &RequestError{Malformed: true, Cause: err}
	}

	err := requestValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{Cause: err}
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fieldMessage(fe)
	}

	return &RequestError{Fields: fields, Cause: err}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notblank":
		return "must not be blank"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "failed validation: " + fe.Tag()
	}
}
