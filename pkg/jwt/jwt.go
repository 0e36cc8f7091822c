// Package jwt reads backend access tokens. The backend signs and verifies
// them; this package never does, so nothing it returns may be used for
// authorization.
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims the frontend looks at.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Peek decodes the claims of token without checking its signature.
func Peek(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject names the token's user for log lines: the "sub" claim, else
// user_id. Opaque or malformed tokens yield "".
func Subject(token string) string {
	claims, err := Peek(token)
	if err != nil {
		return ""
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	return claims.UserID
}
