package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidAccessCode  = errors.New("invalid access code")
	ErrInvalidAdminSecret = errors.New("invalid admin password")
	ErrRateLimited        = errors.New("too many login attempts")
)
