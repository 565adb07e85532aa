package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// GetValidator returns the process-wide validator.
// Field names in errors are taken from json tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// slug: lowercase words joined by single hyphens
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		// notblank: rejects values that are only whitespace
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
	})

	return validate
}

// ValidateStruct validates s and reports failures as a VALIDATION_ERROR AppError
// listing every offending field.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("Invalid request", err)
	}

	fields := make([]map[string]any, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := translateError(fe)
		fields = append(fields, map[string]any{
			"field":   fe.Field(),
			"tag":     fe.Tag(),
			"message": msg,
		})
		messages = append(messages, msg)
	}

	return NewValidationError(strings.Join(messages, "; "), err).
		WithDetails(map[string]any{"fields": fields})
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "slug":
		return fmt.Sprintf("%s must be lowercase letters, digits and hyphens", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
