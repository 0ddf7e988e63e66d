// Package csrf protects cookie authenticated requests with stateless,
// HMAC signed tokens bound to the caller.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-staff/middleware/jwtware"
)

var (
	ErrTokenMissing = goerrors.New("CSRF token missing", goerrors.CategoryValidation).
			WithTextCode("CSRF_TOKEN_MISSING")
	ErrTokenMismatch = goerrors.New("CSRF token mismatch", goerrors.CategoryAuthz).
				WithTextCode("CSRF_TOKEN_MISMATCH")
	ErrTokenExpired = goerrors.New("CSRF token expired", goerrors.CategoryAuthz).
			WithTextCode("CSRF_TOKEN_EXPIRED")
)

const (
	DefaultHeaderName  = "X-CSRF-Token"
	DefaultTokenLength = 16
	MinKeyLength       = 32
)

// Config defines the configuration for CSRF middleware
type Config struct {
	// Skip defines a function to skip middleware. By default requests that
	// carry an Authorization header are skipped, since browsers never
	// attach one on their own.
	Skip func(*fiber.Ctx) bool

	// SecureKey signs tokens. It must be at least MinKeyLength bytes.
	SecureKey []byte

	HeaderName  string
	TokenLength int
	SafeMethods []string
	Expiration  time.Duration

	// SessionKey binds a token to the caller. Defaults to the user id of
	// the identity resolved by jwtware.
	SessionKey func(*fiber.Ctx) string

	Now func() time.Time
}

// DeriveKey stretches an application secret into a CSRF signing key.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

// New creates a new CSRF middleware. It must run after jwtware.New.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Skip(c) || slices.Contains(cfg.SafeMethods, c.Method()) {
			return c.Next()
		}

		token := strings.TrimSpace(c.Get(cfg.HeaderName))
		if token == "" {
			return ErrTokenMissing
		}
		if err := cfg.validate(c, token); err != nil {
			return err
		}
		return c.Next()
	}
}

// TokenHandler issues a token for the current caller.
func TokenHandler(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		token, err := cfg.Generate(c)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to issue CSRF token")
		}
		return c.JSON(fiber.Map{
			"csrf_token":  token,
			"header_name": cfg.HeaderName,
		})
	}
}

// Generate returns a token bound to the session of c.
func (cfg Config) Generate(c *fiber.Ctx) (string, error) {
	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := fmt.Sprintf("%d:%s:%s", cfg.Now().UTC().Unix(), hex.EncodeToString(nonce), cfg.SessionKey(c))
	token := payload + ":" + hex.EncodeToString(cfg.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func (cfg Config) validate(c *fiber.Ctx, token string) error {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenMismatch
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return ErrTokenMismatch
	}
	timestampStr, nonceHex, session, signatureHex := parts[0], parts[1], parts[2], parts[3]

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}
	if _, err := hex.DecodeString(nonceHex); err != nil {
		return ErrTokenMismatch
	}
	signature, err := hex.DecodeString(signatureHex)
	if err != nil {
		return ErrTokenMismatch
	}

	if !hmac.Equal(signature, cfg.sign(strings.Join(parts[:3], ":"))) {
		return ErrTokenMismatch
	}
	if subtle.ConstantTimeCompare([]byte(session), []byte(cfg.SessionKey(c))) != 1 {
		return ErrTokenMismatch
	}
	if cfg.Expiration > 0 && cfg.Now().UTC().After(time.Unix(timestamp, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}
	return nil
}

func (cfg Config) sign(payload string) []byte {
	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if len(cfg.SecureKey) < MinKeyLength {
		panic(fmt.Errorf("csrf: secure key must be at least %d bytes, got %d", MinKeyLength, len(cfg.SecureKey)))
	}
	if cfg.Skip == nil {
		cfg.Skip = func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) != ""
		}
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultTokenLength
	}
	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodTrace}
	}
	if cfg.Expiration == 0 {
		cfg.Expiration = 24 * time.Hour
	}
	if cfg.SessionKey == nil {
		cfg.SessionKey = func(c *fiber.Ctx) string {
			if identity, ok := jwtware.IdentityFromCtx(c); ok {
				return identity.UserID
			}
			return ""
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}
