package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/employees"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// meResponse is the caller identity plus their employee record.
type meResponse struct {
	Identity *auth.Identity `json:"identity"`
	Employee *auth.Employee `json:"employee"`
}

type authController struct {
	auther    *auth.Authenticator
	employees *employees.Service
	cfg       config.Auth
	now       func() time.Time
}

func (h *authController) login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.auther.Login(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setCookie(c, result)
	return c.JSON(result)
}

func (h *authController) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return invalidField("refresh_token", "cannot be blank")
	}

	result, err := h.auther.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	h.setCookie(c, result)
	return c.JSON(result)
}

func (h *authController) logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auther.Logout(c.UserContext(), identity(c), req.RefreshToken); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.GetCookieName(),
		Value:    "",
		Path:     "/",
		Expires:  h.now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *authController) me(c *fiber.Ctx) error {
	caller := identity(c)
	if caller == nil {
		return auth.ErrMissingCredentials
	}
	id, err := uuid.Parse(caller.UserID)
	if err != nil {
		return auth.ErrTokenPayload
	}

	employee, err := h.employees.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(meResponse{Identity: caller, Employee: employee})
}

func (h *authController) setCookie(c *fiber.Ctx, result *auth.LoginResult) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.GetCookieName(),
		Value:    result.AccessToken,
		Path:     "/",
		Expires:  h.now().Add(time.Duration(result.ExpiresIn) * time.Second),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
