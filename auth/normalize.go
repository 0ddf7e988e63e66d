package auth

import (
	"strings"
)

const bearerPrefix = "bearer "

// NormalizeToken strips surrounding quotes and any number of "Bearer "
// prefixes. Cookies set by some clients arrive quoted, and proxies have been
// seen to prepend the scheme twice.
func NormalizeToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	for {
		before := token
		token = strings.Trim(token, `"'`)
		token = strings.TrimSpace(token)
		if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
			token = strings.TrimSpace(token[len(bearerPrefix):])
		}
		if token == before {
			break
		}
	}

	if token == "" {
		return "", newTokenError(ReasonInvalidFormat, "empty token", nil)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", newTokenError(ReasonInvalidFormat, "token must have three segments", nil)
	}
	if parts[0] == "" || parts[1] == "" {
		return "", newTokenError(ReasonInvalidFormat, "token has an empty header or payload", nil)
	}

	return token, nil
}
