package domain

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// init registers custom validation functions with the validator instance.
func init() {
	// Report fields by their JSON names so errors line up with request payloads.
	validatorInstance.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Register the safepath validator to prevent directory traversal attacks.
	_ = validatorInstance.RegisterValidation("safepath", validateSafePath)
}

// Validator returns the shared validator so HTTP binding uses the same rules.
func Validator() *validator.Validate {
	return validatorInstance
}

// validateSafePath ensures the path doesn't contain any directory traversal attempts.
func validateSafePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	if strings.Contains(path, "..") ||
		strings.Contains(path, "~") ||
		strings.HasPrefix(path, "/") ||
		strings.Contains(path, "\\") {
		return false
	}

	// Clean the path and check if it still matches the original.
	// This catches more subtle issues like "uploads/./../file".
	return path == filepath.Clean(path)
}

// ValidateStruct runs tag-based validation and converts failures into a
// *ValidationError keyed by JSON field name.
func ValidateStruct(v any) error {
	err := validatorInstance.Struct(v)
	if err == nil {
		return nil
	}
	return TranslateValidation(err)
}

// TranslateValidation converts validator.ValidationErrors into a *ValidationError.
// Other errors are returned unchanged.
func TranslateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = messageFor(fe)
	}
	return NewValidationError(fields)
}

// fieldPath strips the top-level struct name from the namespace, so
// "Property.title" becomes "title" and nested fields keep their path.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "url", "http_url":
		return "must be a valid URL"
	case "safepath":
		return "must be a safe relative path"
	case "len":
		return "must have length " + fe.Param()
	default:
		return "is invalid"
	}
}
