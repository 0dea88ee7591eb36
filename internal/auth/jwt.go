// Package auth issues and verifies session tokens for teams and admins.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in session tokens.
const (
	RoleTeam  = "team"
	RoleAdmin = "admin"
)

// Claims are the session token claims: standard registered claims plus the
// team identity and role.
type Claims struct {
	jwt.RegisteredClaims
	TeamID string `json:"teamId,omitempty"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the session belongs to the admin console.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// GenerateToken signs an HS256 session token.
func GenerateToken(teamID, role string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TeamID: teamID,
		Role:   role,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a session token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidToken, t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
