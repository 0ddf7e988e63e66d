package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-staff/apperr"
)

// Guard resolves the caller of a request and enforces role membership.
type Guard struct {
	verifier TokenVerifier
	registry TokenRegistry
	logger   Logger
}

// NewGuard builds a Guard. A nil registry disables revocation checks, which
// only tests should do.
func NewGuard(verifier TokenVerifier, registry TokenRegistry, logger Logger) *Guard {
	if logger == nil {
		logger = defLogger{}
	}
	return &Guard{
		verifier: verifier,
		registry: registry,
		logger:   logger,
	}
}

// Authenticate verifies raw and confirms it is still active in the registry.
func (g *Guard) Authenticate(ctx context.Context, raw string) (*Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingCredentials
	}

	token, err := NormalizeToken(raw)
	if err != nil {
		return nil, tokenFailure(err)
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return nil, tokenFailure(err)
	}

	identity := claims.Identity(token)
	if identity.UserID == "" || identity.Role == "" {
		return nil, apperr.WithMessage(ErrTokenPayload, "token is missing the user id or role")
	}
	if !identity.Role.IsValid() {
		return nil, apperr.WithMetadata(ErrTokenPayload, map[string]any{"role": string(identity.Role)})
	}

	if g.registry != nil && !g.registry.IsValid(ctx, token, identity.UserID) {
		g.logger.Debug("token for user %s not active in registry", identity.UserID)
		return nil, ErrTokenRevoked
	}

	return identity, nil
}

// Authorize fails with a 403 equivalent unless identity holds one of allowed.
// An identity without a user id or role is an authentication failure.
func (g *Guard) Authorize(identity *Identity, allowed ...Role) (*Identity, error) {
	return Authorize(identity, allowed...)
}

// Authorize is the pure role membership check behind Guard.Authorize.
func Authorize(identity *Identity, allowed ...Role) (*Identity, error) {
	if identity == nil || identity.UserID == "" || identity.Role == "" {
		return nil, ErrMissingCredentials
	}
	for _, r := range allowed {
		if identity.Role == r {
			return identity, nil
		}
	}
	return nil, apperr.WithMetadata(ErrForbidden, map[string]any{"role": string(identity.Role)})
}

// tokenFailure maps verification failures onto authentication errors.
func tokenFailure(err error) error {
	te, ok := AsTokenError(err)
	if !ok {
		return goerrors.Wrap(err, goerrors.CategoryAuth, "unable to verify token").
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	var out *goerrors.Error
	switch te.Reason {
	case ReasonExpired:
		out = ErrTokenExpired
	case ReasonInvalidSignature:
		out = ErrTokenSignature
	case ReasonInvalidAlgorithm:
		out = ErrTokenAlgorithm
	case ReasonInvalidPayload:
		out = ErrTokenPayload
	default:
		out = ErrTokenMalformed
	}
	return apperr.WithMetadata(out, map[string]any{"reason": string(te.Reason)})
}
