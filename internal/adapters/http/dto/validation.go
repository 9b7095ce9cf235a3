package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Binding errors.
var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in errors are the JSON
// names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" {
				tag = fld.Tag.Get("form")
			}

			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})

	return validate
}

// Validate checks the struct tags of v.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindJSON binds and validates the body. On failure it writes a 400 and
// returns false.
func BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		Abort(c, ErrorCodeBadRequest, "malformed JSON body")
		return false
	}

	return validated(c, v)
}

// BindQuery binds and validates query parameters. On failure it writes a 400
// and returns false.
func BindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		Abort(c, ErrorCodeBadRequest, "malformed query parameters")
		return false
	}

	return validated(c, v)
}

func validated(c *gin.Context, v any) bool {
	if err := Validate(v); err != nil {
		AbortWithDetails(c, ErrorCodeValidation, "request validation failed", ValidationErrors(err))
		return false
	}

	return true
}

// ValidationErrors maps each failing field to a readable message.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = validationMessage(fe)
		}
	}

	return out
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"notblank": "must not be blank",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"oneof":    "must be one of: {param}",
	"dive":     "contains an invalid item",
}

func validationMessage(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if tag == "min" || tag == "max" {
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		} else if fe.Kind() == reflect.Slice {
			unit = " items"
		}

		if tag == "min" {
			return "must be at least " + param + unit
		}

		return "must be at most " + param + unit
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", param)
	}

	return "failed validation: " + tag
}
