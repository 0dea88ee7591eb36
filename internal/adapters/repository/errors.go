package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrTeamNotFound    = errors.New("team not found")
	ErrTeamExists      = errors.New("team already exists")
	ErrHeistNotFound   = errors.New("heist not found")
	ErrPowerUpNotFound = errors.New("power-up not found")
	ErrStackLimit      = errors.New("power-up stack limit reached")
)
