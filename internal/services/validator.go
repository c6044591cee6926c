package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/portfoliocms/backend/internal/apperrors"
	"github.com/portfoliocms/backend/internal/utils"
)

// Validator checks request schemas declared with `validate` struct tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reporting fields by their JSON names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return utils.IsValidSlug(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s and converts failures into a Validation error with one entry per field
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.Validation("Validation failed", apperrors.FieldError{Field: "body", Message: err.Error()})
	}

	fields := make([]apperrors.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return apperrors.Validation("Validation failed", fields...)
}

// fieldPath drops the top-level struct name from the namespace, e.g. "CreateBlogPostRequest.tags[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please provide a valid email"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "slug":
		return "Slug can only contain lowercase letters, numbers, and hyphens"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

var requestValidator = NewValidator()

// validateRequest checks a request DTO against its struct tags
func validateRequest(req any) error {
	return requestValidator.Struct(req)
}
