package api

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/leave"
)

type leaveController struct {
	svc *leave.Service
}

func (h *leaveController) create(c *fiber.Ctx) error {
	var in leave.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *leaveController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	filter := leave.Filter{
		UserID: c.Query("user_id"),
		Status: leave.Status(c.Query("status")),
		Page:   p,
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return invalidField("status", "unknown status")
	}

	records, total, err := h.svc.List(c.UserContext(), identity(c), filter)
	if err != nil {
		return err
	}
	return list(c, records, total, p)
}

func (h *leaveController) get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	record, err := h.svc.Get(c.UserContext(), identity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *leaveController) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in leave.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Update(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *leaveController) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), identity(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}

func (h *leaveController) approvePhase1(c *fiber.Ctx) error {
	return h.transition(c, h.svc.ApprovePhase1)
}

func (h *leaveController) approvePhase2(c *fiber.Ctx) error {
	return h.transition(c, h.svc.ApprovePhase2)
}

func (h *leaveController) reject(c *fiber.Ctx) error {
	var in leave.RejectInput
	if err := bind(c, &in); err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	record, err := h.svc.Reject(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

type transitionFunc func(ctx context.Context, identity *auth.Identity, id uuid.UUID) (*leave.Request, error)

func (h *leaveController) transition(c *fiber.Ctx, fn transitionFunc) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	record, err := fn(c.UserContext(), identity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}
