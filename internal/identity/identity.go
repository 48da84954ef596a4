// Package identity extracts the caller's user identity from a delegated
// Graph bearer token. The token is never validated here: it is only
// forwarded to Graph, which is the verifier. Claims are read to default the
// current-user identity when a request does not name one explicitly.
package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoIdentity = errors.New("no user identity in token")

// FromBearer returns the user identity carried by an Authorization header
// value or raw token string. Prefers the email-style preferred_username
// claim, falling back to the directory object id.
func FromBearer(authorization string) (string, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if raw == "" {
		return "", ErrNoIdentity
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return "", err
	}

	if v, ok := claims["preferred_username"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := claims["upn"].(string); ok && v != "" {
		return v, nil
	}
	if v, ok := claims["oid"].(string); ok && v != "" {
		return v, nil
	}
	return "", ErrNoIdentity
}
