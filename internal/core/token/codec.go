// Package token extracts display and routing claims from access credentials.
//
// Decode never verifies signatures: authenticity is established by the
// backend that issued the credential and re-checked by it on every request
// that carries the credential as a bearer token.
package token

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketingcrm/portal/internal/core/domain"
)

// parser only decodes segments; it is never asked to validate a token.
var parser = jwt.NewParser(jwt.WithPaddingAllowed())

type payload struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Decode returns the subject, role and expiry encoded in the payload segment
// of a three-part compact credential. Any structural problem is reported as
// domain.ErrMalformedToken.
func Decode(raw string) (domain.Claims, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 || parts[1] == "" {
		return domain.Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", domain.ErrMalformedToken, len(parts))
	}

	seg, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return domain.Claims{}, fmt.Errorf("%w: payload encoding: %v", domain.ErrMalformedToken, err)
	}

	var p payload
	if err := json.Unmarshal(seg, &p); err != nil {
		return domain.Claims{}, fmt.Errorf("%w: payload json: %v", domain.ErrMalformedToken, err)
	}
	if p.Subject == "" {
		return domain.Claims{}, fmt.Errorf("%w: missing subject", domain.ErrMalformedToken)
	}

	claims := domain.Claims{Subject: p.Subject, Role: p.Role}
	if p.ExpiresAt != nil {
		claims.ExpiresAt = p.ExpiresAt.Time
	}
	return claims, nil
}
