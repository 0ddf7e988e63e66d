package jwtware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-staff/auth"
)

var defaultTokenLookup = "header:" + fiber.HeaderAuthorization

// Authenticator resolves a raw token into an identity. auth.Guard
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Identity, error)
}

// ValidationListener is invoked after a token has been authenticated and
// before the request proceeds.
type ValidationListener func(c *fiber.Ctx, identity *auth.Identity) error

type Config struct {
	Filter         func(*fiber.Ctx) bool
	SuccessHandler fiber.Handler
	// ErrorHandler defaults to returning the error so the application
	// error handler renders it.
	ErrorHandler fiber.ErrorHandler
	Guard        Authenticator
	ContextKey   string
	// TokenLookup is a comma separated list of sources tried in order,
	// e.g. "header:Authorization,cookie:access_token".
	TokenLookup string
	AuthScheme  string

	ValidationListeners []ValidationListener
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := ExtractRawToken(c, extractors)
		if raw == "" {
			return cfg.ErrorHandler(c, auth.ErrMissingCredentials)
		}

		identity, err := cfg.Guard.Authenticate(c.UserContext(), raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		for _, listener := range cfg.ValidationListeners {
			if listener == nil {
				continue
			}
			if err := listener(c, identity); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, identity)
		c.SetUserContext(auth.WithIdentity(c.UserContext(), identity))

		return cfg.SuccessHandler(c)
	}
}

// RequireRoles lets the request through only when the authenticated
// identity holds one of roles. It must run after New.
func RequireRoles(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromCtx(c)
		if _, err := auth.Authorize(identity, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by New.
func IdentityFromCtx(c *fiber.Ctx) (*auth.Identity, bool) {
	return auth.IdentityFromContext(c.UserContext())
}

// ExtractRawToken returns the first non empty token found by extractors.
func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) string {
	for _, extractor := range extractors {
		if raw := extractor(c); raw != "" {
			return raw
		}
	}
	return ""
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Guard == nil {
		panic("STAFF: JWT middleware configuration: Guard is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(_ *fiber.Ctx, err error) error {
			return err
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && authSchemes[0] != "" {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}
		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		switch source {
		case "header":
			extractors = append(extractors, jwtFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(name))
		case "param":
			extractors = append(extractors, jwtFromParam(name))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(name))
		}
	}

	return extractors
}

type JWTExtractor func(c *fiber.Ctx) string

// jwtFromHeader strips a leading auth scheme. Values without it are passed
// through as they are, token normalization deals with the rest.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c *fiber.Ctx) string {
		a := strings.TrimSpace(c.Get(header))
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:])
		}
		return a
	}
}

func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(param)
	}
}

func jwtFromParam(param string) JWTExtractor {
	return func(c *fiber.Ctx) string {
		return c.Params(param)
	}
}

func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) string {
		return c.Cookies(name)
	}
}
