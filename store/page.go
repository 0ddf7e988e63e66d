package store

import (
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-staff/apperr"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a limit/offset window over a list query.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultPage returns the first page with the default size.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit}
}

// ParsePage reads limit and offset from query string values. Empty values
// take the defaults; anything else must be a valid integer in range.
func ParsePage(limit, offset string) (Page, error) {
	p := DefaultPage()
	fields := map[string]string{}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			fields["limit"] = "must be an integer"
		} else {
			p.Limit = n
		}
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			fields["offset"] = "must be an integer"
		} else {
			p.Offset = n
		}
	}
	if len(fields) > 0 {
		return p, apperr.InvalidFields("invalid pagination", fields)
	}

	return p, p.Validate()
}

func (p Page) Validate() error {
	return apperr.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&p,
			validation.Field(&p.Limit, validation.Required.Error("must be no less than 1"), validation.Min(1), validation.Max(MaxLimit)),
			validation.Field(&p.Offset, validation.Min(0)),
		)
	}, "invalid pagination")
}

// Apply adds the window to q.
func (p Page) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return q.Limit(limit).Offset(p.Offset)
}

// List is a page of records plus the unpaginated total.
type List[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func NewList[T any](items []T, total int, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}
