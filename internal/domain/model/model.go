// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"time"
)

// PowerUpKind identifies a consumable power-up type.
type PowerUpKind string

// Known power-up kinds.
const (
	Shield        PowerUpKind = "SHIELD"
	TimeFreeze    PowerUpKind = "TIME_FREEZE"
	GuardianAngel PowerUpKind = "GUARDIAN_ANGEL"
	DoubleCash    PowerUpKind = "DOUBLE_CASH"
	HintMaster    PowerUpKind = "HINT_MASTER"
)

// PowerUp describes a consumable modifier held by a team.
type PowerUp struct {
	Kind        PowerUpKind `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

// Definitions lists every grantable power-up.
var Definitions = map[PowerUpKind]PowerUp{
	Shield:        {Kind: Shield, Name: "Shield", Description: "Blocks one incoming heist attempt"},
	TimeFreeze:    {Kind: TimeFreeze, Name: "Time Freeze", Description: "Adds 60 seconds to your heist timer"},
	GuardianAngel: {Kind: GuardianAngel, Name: "Guardian Angel", Description: "Reduces enemy heist time by 30 seconds"},
	DoubleCash:    {Kind: DoubleCash, Name: "Double Cash", Description: "Next successful challenge gives 2x cash"},
	HintMaster:    {Kind: HintMaster, Name: "Hint Master", Description: "Reveals hint for current challenge"},
}

// TeamHeistStatus reflects a team's involvement in an active heist.
type TeamHeistStatus string

// Team heist statuses.
const (
	HeistNone      TeamHeistStatus = "none"
	HeistAttacking TeamHeistStatus = "attacking"
	HeistDefending TeamHeistStatus = "defending"
)

// Team is a participating team record.
type Team struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AccessCode  string          `json:"-"`
	Cash        int64           `json:"cash"`
	HeistStatus TeamHeistStatus `json:"heistStatus"`
	Online      bool            `json:"isOnline"`
	LastActive  time.Time       `json:"lastActive"`
}

// Stage is the progression phase inside an active heist.
type Stage string

// Heist stages. Transitions only go compound -> safe.
const (
	StageCompound Stage = "compound"
	StageSafe     Stage = "safe"
)

// HeistStatus is the heist outcome state. Success and failed are terminal.
type HeistStatus string

// Heist statuses.
const (
	StatusActive  HeistStatus = "active"
	StatusSuccess HeistStatus = "success"
	StatusFailed  HeistStatus = "failed"
)

// NoSafeChallenge marks a heist that has not entered the safe stage yet.
const NoSafeChallenge = -1

// Heist is a timed adversarial mini-game between two teams.
type Heist struct {
	ID           string      `json:"id"`
	AttackerID   string      `json:"attackerId"`
	TargetTeamID string      `json:"targetTeamId"`
	Stage        Stage       `json:"stage"`
	Status       HeistStatus `json:"status"`

	// CompoundProgress holds solved compound challenge ids in solve order.
	CompoundProgress []string `json:"compoundProgress"`

	// SafeChallengeIndex is assigned once on entering the safe stage and
	// never re-rolled. NoSafeChallenge until then.
	SafeChallengeIndex int `json:"safeChallengeIndex"`

	// SafeAttempts counts safe submissions, including the winning one.
	SafeAttempts int `json:"safeAttempts"`

	// TimeLimit is fixed at creation from base config plus power-up
	// modifiers. StartTime is the only reference for elapsed-time checks;
	// client-reported elapsed time is never trusted.
	TimeLimit time.Duration `json:"-"`
	StartTime time.Time     `json:"startTime"`
}

// heistAlias strips Heist's methods so the wire form marshals without
// recursing.
type heistAlias Heist

type heistWire struct {
	heistAlias
	TimeLimitSeconds int64 `json:"timeLimitSeconds"`
}

// MarshalJSON emits the time limit in whole seconds. A raw Duration would
// serialize as nanoseconds, which no client consumes.
func (h Heist) MarshalJSON() ([]byte, error) {
	return json.Marshal(heistWire{
		heistAlias:       heistAlias(h),
		TimeLimitSeconds: int64(h.TimeLimit / time.Second),
	})
}

// UnmarshalJSON restores the duration from the seconds field.
func (h *Heist) UnmarshalJSON(data []byte) error {
	var w heistWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = Heist(w.heistAlias)
	h.TimeLimit = time.Duration(w.TimeLimitSeconds) * time.Second
	return nil
}

// Terminal reports whether the heist reached a final status.
func (h *Heist) Terminal() bool {
	return h.Status != StatusActive
}

// ExpiredAt reports whether the heist's time budget plus grace has elapsed
// at the given instant. Exactly at the boundary counts as not expired.
func (h *Heist) ExpiredAt(now time.Time, grace time.Duration) bool {
	return now.Sub(h.StartTime) > h.TimeLimit+grace
}

// Challenge is a question/answer pair from the catalog.
type Challenge struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Reward   int64  `json:"reward,omitempty"`
}

// Redacted returns a client-safe copy with the answer stripped.
func (c Challenge) Redacted() Challenge {
	c.Answer = ""
	return c
}
