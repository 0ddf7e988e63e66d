// Package api exposes the services over HTTP with Fiber.
package api

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/goliatone/go-staff/auth"
	"github.com/goliatone/go-staff/config"
	"github.com/goliatone/go-staff/logging"
	"github.com/goliatone/go-staff/middleware/csrf"
	"github.com/goliatone/go-staff/middleware/jwtware"
)

// Option customizes New.
type Option func(*options)

type options struct {
	accessLog io.Writer
	now       func() time.Time
}

// WithAccessLog enables the HTTP access log on w.
func WithAccessLog(w io.Writer) Option {
	return func(o *options) {
		o.accessLog = w
	}
}

// WithClock sets the clock used for cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New assembles the Fiber application.
func New(cfg *config.Config, svc *Services, log logging.Logger, opts ...Option) *fiber.App {
	o := &options{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "staffd",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	if o.accessLog != nil {
		app.Use(logger.New(logger.Config{
			Output: o.accessLog,
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + csrf.DefaultHeaderName,
	}))
	app.Use(RequestTimeout(cfg.Server.RequestTimeout))

	Register(app, cfg, svc, o.now)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return app
}

// RequestTimeout bounds the user context of every request by d. Services
// pass it down to every store call.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Register mounts every route on app.
func Register(app fiber.Router, cfg *config.Config, svc *Services, now func() time.Time) {
	protected := jwtware.New(jwtware.Config{
		Guard:       svc.Guard,
		TokenLookup: cfg.Auth.GetTokenLookup(),
		AuthScheme:  cfg.Auth.GetAuthScheme(),
	})
	elevated := jwtware.RequireRoles(auth.ElevatedRoles...)

	// cookie sessions must echo a token on unsafe methods
	csrfCfg := csrf.Config{SecureKey: csrf.DeriveKey(cfg.Auth.SigningKey), Now: now}
	forgery := csrf.New(csrfCfg)

	authH := &authController{auther: svc.Authenticator, employees: svc.Employees, cfg: cfg.Auth, now: now}
	a := app.Group("/auth")
	a.Post("/login", authH.login)
	a.Post("/refresh", authH.refresh)
	a.Post("/logout", protected, forgery, authH.logout)
	a.Get("/me", protected, authH.me)
	a.Get("/csrf", protected, csrf.TokenHandler(csrfCfg))

	empH := &employeesController{svc: svc.Employees}
	e := app.Group("/employees", protected, forgery)
	e.Post("/", empH.create)
	e.Get("/", empH.list)
	e.Get("/:id", empH.get)
	e.Put("/:id", empH.update)
	e.Delete("/:id", empH.delete)

	leaveH := &leaveController{svc: svc.Leave}
	l := app.Group("/leave-requests", protected, forgery)
	l.Post("/", leaveH.create)
	l.Get("/", leaveH.list)
	l.Get("/:id", leaveH.get)
	l.Put("/:id", leaveH.update)
	l.Delete("/:id", leaveH.delete)
	l.Post("/:id/approve-phase1", leaveH.approvePhase1)
	l.Post("/:id/approve-phase2", leaveH.approvePhase2)
	l.Post("/:id/reject", leaveH.reject)

	repH := &reportsController{svc: svc.Reports}
	r := app.Group("/reports", protected, forgery)
	r.Post("/", repH.create)
	r.Get("/", repH.list)
	r.Get("/:id", repH.get)
	r.Put("/:id", repH.update)
	r.Delete("/:id", repH.delete)
	r.Post("/:id/approve", repH.approve)

	purH := &purchasesController{svc: svc.Purchases}
	p := app.Group("/purchase-items", protected, forgery)
	p.Post("/", purH.create)
	p.Get("/", purH.list)
	p.Get("/:id", purH.get)
	p.Put("/:id", purH.update)
	p.Delete("/:id", purH.delete)

	chkH := &checklistsController{svc: svc.Checklists}
	ch := app.Group("/checklists", protected, forgery)
	ch.Post("/", chkH.create)
	ch.Get("/", chkH.list)
	ch.Get("/:id", chkH.get)
	ch.Put("/:id", chkH.update)
	ch.Delete("/:id", chkH.delete)

	logH := &logsController{svc: svc.Activity}
	lg := app.Group("/logs", protected, forgery, elevated)
	lg.Get("/", logH.list)
	lg.Post("/", logH.create)

	dashH := &dashboardController{svc: svc.Dashboard}
	app.Get("/dashboard", protected, elevated, dashH.get)
}
