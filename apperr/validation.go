package apperr

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// ErrValidation is the base for invalid input.
var ErrValidation = goerrors.New("invalid request payload", goerrors.CategoryValidation).
	WithTextCode("VALIDATION_FAILED")

// ValidateWithOzzo runs fn and folds ozzo validation errors into a
// validation error with one entry per field.
func ValidateWithOzzo(fn func() error, message string) error {
	err := fn()
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if goerrors.As(err, &internal) {
		return goerrors.Wrap(internal.InternalError(), goerrors.CategoryInternal, "validation rule failed")
	}

	folded := goerrors.FromOzzoValidation(err, message)
	out := WithMessage(ErrValidation, message)
	out.ValidationErrors = folded.ValidationErrors
	if len(out.ValidationErrors) == 0 {
		out.WithMetadata(map[string]any{"reason": err.Error()})
	}
	return out
}

// Invalid reports a single invalid field.
func Invalid(message, field, reason string) *goerrors.Error {
	return InvalidFields(message, map[string]string{field: reason})
}

// InvalidFields reports several invalid fields at once.
func InvalidFields(message string, fields map[string]string) *goerrors.Error {
	out := WithMessage(ErrValidation, message)
	out.ValidationErrors = goerrors.NewValidationFromMap(message, fields).ValidationErrors
	return out
}
