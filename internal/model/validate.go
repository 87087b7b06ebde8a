package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidatePatch checks a SettingsPatch for constraint violations.
// Colours are not validated here: an unparseable colour is replaced by the
// documented default when the patch is applied.
func ValidatePatch(p *SettingsPatch) error {
	var ve ValidationError

	if p.FontFamily != nil && strings.TrimSpace(*p.FontFamily) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "fontFamily", Message: "must not be empty"})
	}
	if p.FontSize != nil && *p.FontSize <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "fontSize",
			Message: fmt.Sprintf("must be positive, got %d", *p.FontSize),
		})
	}
	if p.FontWeight != nil && !p.FontWeight.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "fontWeight",
			Message: fmt.Sprintf("invalid value %q", *p.FontWeight),
		})
	}
	if p.BackgroundType != nil && !p.BackgroundType.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "backgroundType",
			Message: fmt.Sprintf("invalid value %q", *p.BackgroundType),
		})
	}
	if p.BackgroundOpacity != nil && (*p.BackgroundOpacity < 0 || *p.BackgroundOpacity > 1) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "backgroundOpacity",
			Message: fmt.Sprintf("must be between 0 and 1, got %v", *p.BackgroundOpacity),
		})
	}
	if p.BorderRadius != nil && *p.BorderRadius < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "borderRadius",
			Message: fmt.Sprintf("must not be negative, got %d", *p.BorderRadius),
		})
	}
	if p.RefreshInterval != nil && *p.RefreshInterval <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "refreshInterval",
			Message: fmt.Sprintf("must be positive, got %d", *p.RefreshInterval),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
