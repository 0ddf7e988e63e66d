package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/employees"
)

type employeesController struct {
	svc *employees.Service
}

func (h *employeesController) create(c *fiber.Ctx) error {
	var in employees.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, record)
}

func (h *employeesController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	filter := auth.EmployeeFilter{
		Role:   auth.Role(c.Query("role")),
		Status: auth.EmployeeStatus(c.Query("status")),
		Page:   p,
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		return invalidField("role", "unknown role")
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

func (h *employeesController) get(c *fiber.Ctx) error {
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

func (h *employeesController) update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in employees.UpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	record, err := h.svc.Update(c.UserContext(), identity(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *employeesController) delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), identity(c), id); err != nil {
		return err
	}
	return deleted(c, id)
}
