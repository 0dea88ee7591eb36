package heist

import "errors"

// Sentinel kinds for heist engine errors.
//
// Validation errors (no state change): ErrSelfTarget, ErrTeamNotFound,
// ErrHeistNotFound, ErrCallerMismatch, ErrChallengeNotFound.
// Conflict errors (no state change): ErrAttackerBusy, ErrTargetBusy,
// ErrWrongStage, ErrHeistNotActive.
// ErrExpired is reported after the heist was force-failed as a side effect.
var (
	ErrSelfTarget        = errors.New("cannot heist your own team")
	ErrTeamNotFound      = errors.New("team not found")
	ErrHeistNotFound     = errors.New("heist not found")
	ErrCallerMismatch    = errors.New("caller is not the heist attacker")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAttackerBusy      = errors.New("attacker already has an active heist")
	ErrTargetBusy        = errors.New("target is already being heisted")
	ErrWrongStage        = errors.New("wrong stage for this action")
	ErrHeistNotActive    = errors.New("heist is no longer active")
	ErrExpired           = errors.New("heist time expired")
)

// IsValidation reports whether err is a request-shaped problem the caller can
// fix; nothing changed server-side.
func IsValidation(err error) bool {
	return errors.Is(err, ErrSelfTarget) ||
		errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrHeistNotFound) ||
		errors.Is(err, ErrCallerMismatch) ||
		errors.Is(err, ErrChallengeNotFound)
}

// IsConflict reports whether err is a state conflict; nothing changed
// server-side.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttackerBusy) ||
		errors.Is(err, ErrTargetBusy) ||
		errors.Is(err, ErrWrongStage) ||
		errors.Is(err, ErrHeistNotActive)
}
