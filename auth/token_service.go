package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenErrorReason is the closed set of reasons a token fails verification.
type TokenErrorReason string

const (
	ReasonInvalidFormat    TokenErrorReason = "INVALID_FORMAT"
	ReasonExpired          TokenErrorReason = "EXPIRED"
	ReasonInvalidSignature TokenErrorReason = "INVALID_SIGNATURE"
	ReasonInvalidAlgorithm TokenErrorReason = "INVALID_ALGORITHM"
	ReasonInvalidPayload   TokenErrorReason = "INVALID_PAYLOAD"
)

// TokenError is returned by Verify for every expected failure.
type TokenError struct {
	Reason TokenErrorReason
	Detail string
	Source error
}

func newTokenError(reason TokenErrorReason, detail string, source error) *TokenError {
	return &TokenError{Reason: reason, Detail: detail, Source: source}
}

func (e *TokenError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *TokenError) Unwrap() error {
	return e.Source
}

// AsTokenError extracts a *TokenError from err.
func AsTokenError(err error) (*TokenError, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

var errUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

// TokenService signs and verifies HS256 session tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     Logger
}

var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenVerifier = (*TokenService)(nil)
)

// TokenServiceConfig is the subset of configuration the service reads.
type TokenServiceConfig interface {
	GetSigningKey() string
	GetIssuer() string
	GetTokenExpiration() time.Duration
	GetRefreshExpiration() time.Duration
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg TokenServiceConfig, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		issuer:     cfg.GetIssuer(),
		accessTTL:  cfg.GetTokenExpiration(),
		refreshTTL: cfg.GetRefreshExpiration(),
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the clock used for issued-at and validation.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		ts.now = now
	}
	return ts
}

func (ts *TokenService) AccessTTL() time.Duration {
	return ts.accessTTL
}

func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}

// Issue creates an access token for subject. A zero ttl uses the configured
// access expiration.
func (ts *TokenService) Issue(subject string, role Role, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", goerrors.New("token subject must not be empty", goerrors.CategoryInternal)
	}
	if role == "" {
		return "", goerrors.New("token role must not be empty", goerrors.CategoryInternal)
	}
	if ttl <= 0 {
		ttl = ts.accessTTL
	}
	return ts.sign(subject, string(role), TokenTypeAccess, ttl)
}

// IssueRefresh creates a refresh token for subject.
func (ts *TokenService) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", goerrors.New("token subject must not be empty", goerrors.CategoryInternal)
	}
	if ttl <= 0 {
		ttl = ts.refreshTTL
	}
	return ts.sign(subject, "", TokenTypeRefresh, ttl)
}

func (ts *TokenService) sign(subject, role, typ string, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:      subject,
		UserRole: role,
		Type:     typ,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// Verify validates an access token. Every expected failure is a *TokenError.
func (ts *TokenService) Verify(raw string) (*Claims, error) {
	return ts.verify(raw, TokenTypeAccess)
}

// VerifyRefresh validates a refresh token.
func (ts *TokenService) VerifyRefresh(raw string) (*Claims, error) {
	return ts.verify(raw, TokenTypeRefresh)
}

func (ts *TokenService) verify(raw, typ string) (*Claims, error) {
	token, err := NormalizeToken(raw)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			ts.logger.Warn("token verify encountered unexpected signing method %v", t.Header["alg"])
			return nil, errUnexpectedAlgorithm
		}
		return ts.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, newTokenError(ReasonInvalidPayload, "token is not valid", nil)
	}

	if claims.Type != typ {
		return nil, newTokenError(ReasonInvalidPayload, fmt.Sprintf("expected %s token, got %q", typ, claims.Type), nil)
	}
	if claims.ExpiresAt == nil {
		return nil, newTokenError(ReasonInvalidPayload, "token has no expiry", nil)
	}

	return claims, nil
}

// classifyParseError maps jwt errors onto the closed reason set. A rejected
// algorithm surfaces as an unverifiable token carrying the keyfunc error.
func classifyParseError(err error) *TokenError {
	switch {
	case errors.Is(err, errUnexpectedAlgorithm), errors.Is(err, jwt.ErrTokenUnverifiable):
		return newTokenError(ReasonInvalidAlgorithm, "signing algorithm not accepted", err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newTokenError(ReasonInvalidFormat, "token could not be decoded", err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newTokenError(ReasonExpired, "token has expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return newTokenError(ReasonInvalidSignature, "signature does not match", err)
	default:
		return newTokenError(ReasonInvalidPayload, "token claims are not valid", err)
	}
}
