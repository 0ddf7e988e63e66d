package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-staff/checklists"
	"github.com/goliatone/go-staff/purchases"
	"github.com/goliatone/go-staff/reports"
)

type reportsController struct {
	svc *reports.Service
}

func (h *reportsController) create(c *fiber.Ctx) error {
	var in reports.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *reportsController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	records, total, err := h.svc.List(c.UserContext(), identity(c), reports.Filter{
		UserID: c.Query("user_id"),
		Status: reports.Status(c.Query("status")),
		Page:   p,
	})
	if err != nil {
		return err
	}
	return list(c, records, total, p)
}

func (h *reportsController) get(c *fiber.Ctx) error {
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

func (h *reportsController) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in reports.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Update(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *reportsController) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), identity(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}

func (h *reportsController) approve(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	record, err := h.svc.Approve(c.UserContext(), identity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

type purchasesController struct {
	svc *purchases.Service
}

func (h *purchasesController) create(c *fiber.Ctx) error {
	var in purchases.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *purchasesController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	records, total, err := h.svc.List(c.UserContext(), identity(c), purchases.Filter{
		Name:     c.Query("name"),
		Status:   purchases.Status(c.Query("status")),
		Category: purchases.Category(c.Query("category")),
		Page:     p,
	})
	if err != nil {
		return err
	}
	return list(c, records, total, p)
}

func (h *purchasesController) get(c *fiber.Ctx) error {
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

func (h *purchasesController) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in purchases.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Update(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *purchasesController) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), identity(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}

type checklistsController struct {
	svc *checklists.Service
}

func (h *checklistsController) create(c *fiber.Ctx) error {
	var in checklists.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *checklistsController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	records, total, err := h.svc.List(c.UserContext(), identity(c), checklists.Filter{
		TaskID:     c.Query("task_id"),
		Title:      c.Query("title"),
		AssignedTo: c.Query("assigned_to"),
		Page:       p,
	})
	if err != nil {
		return err
	}
	return list(c, records, total, p)
}

func (h *checklistsController) get(c *fiber.Ctx) error {
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

func (h *checklistsController) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in checklists.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Update(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *checklistsController) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), identity(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}
