package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-staff/activity"
	"github.com/goliatone/go-staff/dashboard"
)

type logsController struct {
	svc *activity.Service
}

func (h *logsController) list(c *fiber.Ctx) error {
	p, err := page(c)
	if err != nil {
		return err
	}
	in := activity.ListInput{Page: p}
	if raw := c.Query("recent_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil {
			return invalidField("recent_hours", "must be an integer")
		}
		in.RecentHours = hours
	}

	entries, total, err := h.svc.List(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return list(c, entries, total, p)
}

func (h *logsController) create(c *fiber.Ctx) error {
	var in activity.CreateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	entry, err := h.svc.Create(c.UserContext(), identity(c), in)
	if err != nil {
		return err
	}
	return created(c, entry)
}

type dashboardController struct {
	svc *dashboard.Service
}

func (h *dashboardController) get(c *fiber.Ctx) error {
	stats, err := h.svc.Get(c.UserContext(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
