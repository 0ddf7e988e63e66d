package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/middleware/jwtware"
	"github.com/goliatone/go-staff/store"
)

// identity returns the caller resolved by jwtware, or nil. Services turn a
// nil identity into an authentication error.
func identity(c *fiber.Ctx) *auth.Identity {
	id, _ := jwtware.IdentityFromCtx(c)
	return id
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, invalidField("id", "must be a valid UUID")
	}
	return id, nil
}

// bind decodes a JSON body into v. An empty body leaves v untouched.
func bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return apperr.WithMetadata(apperr.WithMessage(apperr.ErrValidation, "malformed request body"),
			map[string]any{"reason": err.Error()})
	}
	return nil
}

func page(c *fiber.Ctx) (store.Page, error) {
	return store.ParsePage(c.Query("limit"), c.Query("offset"))
}

func invalidField(field, reason string) error {
	return apperr.Invalid("invalid request", field, reason)
}

func list[T any](c *fiber.Ctx, items []T, total int, p store.Page) error {
	return c.JSON(store.NewList(items, total, p))
}

func created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(v)
}

func deleted(c *fiber.Ctx, id uuid.UUID) error {
	return c.JSON(fiber.Map{"id": id.String(), "deleted": true})
}
