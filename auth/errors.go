package auth

import goerrors "github.com/goliatone/go-errors"

var (
	// ErrMissingCredentials is returned when a request carries no token at all.
	ErrMissingCredentials = goerrors.New("missing credentials", goerrors.CategoryAuth).
				WithTextCode("MISSING_CREDENTIALS")

	ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED")

	ErrTokenSignature = goerrors.New("invalid token signature", goerrors.CategoryAuth).
				WithTextCode("TOKEN_INVALID_SIGNATURE")

	ErrTokenMalformed = goerrors.New("malformed token", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED")

	ErrTokenAlgorithm = goerrors.New("unsupported token algorithm", goerrors.CategoryAuth).
				WithTextCode("TOKEN_INVALID_ALGORITHM")

	ErrTokenPayload = goerrors.New("invalid token payload", goerrors.CategoryAuth).
			WithTextCode("TOKEN_INVALID_PAYLOAD")

	// ErrTokenRevoked covers tokens that verify but are not active in the registry.
	ErrTokenRevoked = goerrors.New("token not found in registry", goerrors.CategoryAuth).
			WithTextCode("TOKEN_REVOKED")

	ErrInvalidCredentials = goerrors.New("invalid employee id or password", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS")

	ErrAccountInactive = goerrors.New("account is not active", goerrors.CategoryAuth).
				WithTextCode("ACCOUNT_INACTIVE")

	ErrTooManyAttempts = goerrors.New("too many login attempts, try again later", goerrors.CategoryAuth).
				WithTextCode("TOO_MANY_ATTEMPTS")

	ErrForbidden = goerrors.New("insufficient role for this operation", goerrors.CategoryAuthz).
			WithTextCode("FORBIDDEN")

	ErrEmployeeNotFound = goerrors.New("employee not found", goerrors.CategoryNotFound).
				WithTextCode("EMPLOYEE_NOT_FOUND")

	ErrDuplicateEmployee = goerrors.New("employee id already exists", goerrors.CategoryValidation).
				WithTextCode("DUPLICATE_EMPLOYEE")

	ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
				WithTextCode("EMPTY_PASSWORD")

	ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
					WithTextCode("PASSWORD_MISMATCH")
)
