// Package apperr adapts go-errors to the service: it fixes the HTTP status
// of each category and derives request scoped copies from the shared
// sentinels declared by every package.
package apperr

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// CategoryStore marks persistence failures. They surface as 500 with a
// generic body.
var CategoryStore = goerrors.CategoryInternal.Extend("store")

// StatusCode returns the HTTP status a category maps to. State conflicts
// are client errors, not 409s.
func StatusCode(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return goerrors.CodeUnauthorized
	case goerrors.CategoryAuthz:
		return goerrors.CodeForbidden
	case goerrors.CategoryNotFound:
		return goerrors.CodeNotFound
	case goerrors.CategoryConflict, goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return goerrors.CodeBadRequest
	default:
		return goerrors.CodeInternal
	}
}

// StatusOf prefers an explicit code over the category status.
func StatusOf(e *goerrors.Error) int {
	if e.Code != 0 {
		return e.Code
	}
	return StatusCode(e.Category)
}

// Exposed reports whether the message can be returned to a client as is.
func Exposed(category goerrors.Category) bool {
	switch category {
	case CategoryStore, goerrors.CategoryInternal, goerrors.CategoryExternal, "":
		return false
	default:
		return true
	}
}

// Derive returns a copy of base that still matches it with errors.Is.
// Sentinels are shared, so they are never mutated in place.
func Derive(base *goerrors.Error) *goerrors.Error {
	c := base.Clone()
	c.Source = base
	c.Timestamp = time.Now()
	return c
}

// WithMetadata derives a copy of base carrying meta.
func WithMetadata(base *goerrors.Error, meta map[string]any) *goerrors.Error {
	c := Derive(base)
	if len(meta) > 0 {
		c.WithMetadata(meta)
	}
	return c
}

// WithMessage derives a copy of base with a different message.
func WithMessage(base *goerrors.Error, message string) *goerrors.Error {
	c := Derive(base)
	c.Message = message
	return c
}

// As extracts the outermost *goerrors.Error from an error chain.
func As(err error) (*goerrors.Error, bool) {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CategoryOf returns the category of err or CategoryInternal for foreign errors.
func CategoryOf(err error) goerrors.Category {
	if e, ok := As(err); ok {
		return e.Category
	}
	return goerrors.CategoryInternal
}

func IsStateConflict(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryConflict)
}

// Store wraps a persistence failure.
func Store(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, CategoryStore, message).WithTextCode("STORE_FAILURE")
}
