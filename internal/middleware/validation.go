package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "pollscope/internal/errors"
)

// Validator checks bound request structs against their validate tags
type Validator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewValidator creates a validator with the custom tags registered
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	v.RegisterValidation("printable", isPrintable)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: v,
		logger:    logger.With(slog.String("component", "validator")),
	}
}

// ValidateStruct returns an *apierrors.APIError listing every invalid field
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	m.logger.Debug("request validation failed", slog.Int("errors", len(validationErrors)))

	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.Replace(param, " ", " is ", 1))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", field, param)
		}
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Replace(param, " ", ", ", -1))
	case "printable":
		return fmt.Sprintf("%s must not contain control characters", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isPrintable rejects control characters
func isPrintable(fl validator.FieldLevel) bool {
	for _, ch := range fl.Field().String() {
		if unicode.IsControl(ch) {
			return false
		}
	}
	return true
}
