// Package heist implements the heist state machine: lifecycle, timing
// enforcement, power-up interactions and cash transfer on resolution.
package heist

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levelup/heist/internal/adapters/catalog"
	"github.com/levelup/heist/internal/adapters/notify"
	"github.com/levelup/heist/internal/adapters/repository"
	"github.com/levelup/heist/internal/domain/model"
	"github.com/levelup/heist/pkg/logger"
	"github.com/levelup/heist/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultBaseTimeLimit   = 180 * time.Second
	defaultFreezeBonus     = 60 * time.Second
	defaultGuardianPenalty = 30 * time.Second
	defaultMinTimeLimit    = 10 * time.Second
	defaultSubmitGrace     = 5 * time.Second
	defaultSweepGrace      = 10 * time.Second
	defaultMaxSafeAttempts = 3
	defaultSuccessRate     = 0.5
	defaultFailureRate     = 0.3
)

// Resolution reasons attached to terminal transitions.
const (
	ReasonTimeout     = "time_expired"
	ReasonMaxAttempts = "max_attempts"
	ReasonSweep       = "sweeper_expired"
)

// Notification event types emitted by the engine.
const (
	EventHeistAlert   = "heistAlert"
	EventHeistBlocked = "heistBlocked"
	EventHeistStarted = "heistStarted"
	EventHeistResult  = "heistResult"
)

// InitResult is the outcome of an initiation attempt.
type InitResult struct {
	// Blocked is set when the target burned a shield; no heist was created.
	Blocked bool `json:"blocked"`

	HeistID   string        `json:"heistId,omitempty"`
	TimeLimit time.Duration `json:"-"`

	// CompoundChallenges is the redacted compound set handed to the attacker.
	CompoundChallenges []model.Challenge `json:"compoundChallenges,omitempty"`
}

// CompoundResult is the outcome of a compound-stage submission.
type CompoundResult struct {
	Correct       bool `json:"correct"`
	Progress      int  `json:"progress"`
	StageComplete bool `json:"stageComplete"`

	// SafeChallenge is the redacted safe challenge, set once the compound
	// set is complete.
	SafeChallenge *model.Challenge `json:"safeChallenge,omitempty"`
}

// SafeResult is the outcome of a safe-stage submission.
type SafeResult struct {
	Correct           bool  `json:"correct"`
	HeistSuccess      bool  `json:"heistSuccess"`
	HeistFailed       bool  `json:"heistFailed"`
	StolenAmount      int64 `json:"stolenAmount,omitempty"`
	TransferAmount    int64 `json:"transferAmount,omitempty"`
	AttemptsRemaining int   `json:"attemptsRemaining,omitempty"`
}

// Engine owns heist records and serializes every mutation behind one mutex.
// Two writers never interleave on the same record; the sweeper and request
// handlers both go through the engine's public methods.
type Engine struct {
	mu sync.Mutex

	teams    repository.TeamStore
	powerups repository.PowerUpStore
	heists   repository.HeistStore
	catalog  catalog.Catalog
	notifier notify.Notifier
	clock    Clock

	// pickSafe selects a safe challenge index; injectable for tests.
	pickSafe func(n int) int

	baseTimeLimit   time.Duration
	freezeBonus     time.Duration
	guardianPenalty time.Duration
	minTimeLimit    time.Duration
	submitGrace     time.Duration
	sweepGrace      time.Duration
	maxSafeAttempts int
	successRate     float64
	failureRate     float64

	logger logger.Logger
}

// New constructs an Engine over the provided stores and collaborators.
func New(teams repository.TeamStore, powerups repository.PowerUpStore, heists repository.HeistStore, cat catalog.Catalog, notifier notify.Notifier, opts ...Option) *Engine {
	e := &Engine{
		teams:           teams,
		powerups:        powerups,
		heists:          heists,
		catalog:         cat,
		notifier:        notifier,
		clock:           SystemClock,
		pickSafe:        rand.Intn,
		baseTimeLimit:   defaultBaseTimeLimit,
		freezeBonus:     defaultFreezeBonus,
		guardianPenalty: defaultGuardianPenalty,
		minTimeLimit:    defaultMinTimeLimit,
		submitGrace:     defaultSubmitGrace,
		sweepGrace:      defaultSweepGrace,
		maxSafeAttempts: defaultMaxSafeAttempts,
		successRate:     defaultSuccessRate,
		failureRate:     defaultFailureRate,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("heist")
	}

	return e
}

// Initiate starts a heist by attacker against target, or blocks it on the
// target's shield. Exactly one active heist per attacker and per target is
// allowed at any time.
func (e *Engine) Initiate(ctx context.Context, attackerID, targetTeamID string) (InitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if attackerID == targetTeamID {
		return InitResult{}, ErrSelfTarget
	}

	attacker, err := e.teams.Get(ctx, attackerID)
	if err != nil {
		return InitResult{}, fmt.Errorf("%w: attacker %s", ErrTeamNotFound, attackerID)
	}
	target, err := e.teams.Get(ctx, targetTeamID)
	if err != nil {
		return InitResult{}, fmt.Errorf("%w: target %s", ErrTeamNotFound, targetTeamID)
	}

	if e.heists.ActiveByAttacker(ctx, attackerID) != nil {
		return InitResult{}, ErrAttackerBusy
	}
	if e.heists.ActiveByTarget(ctx, targetTeamID) != nil {
		return InitResult{}, ErrTargetBusy
	}

	// Shield blocks the attempt before any heist record exists. The attacker
	// keeps cash and heist status untouched.
	if e.powerups.ConsumeOne(ctx, targetTeamID, model.Shield) {
		e.notifier.Notify(ctx, targetTeamID, EventHeistBlocked, map[string]interface{}{
			"attackerName": attacker.Name,
		})
		metrics.RecordHeistBlocked()
		e.logger.Info(ctx, "heist blocked by shield",
			logger.String("attacker", attackerID),
			logger.String("target", targetTeamID),
		)
		return InitResult{Blocked: true}, nil
	}

	timeLimit := e.baseTimeLimit
	if e.powerups.ConsumeOne(ctx, attackerID, model.TimeFreeze) {
		timeLimit += e.freezeBonus
	}
	if e.powerups.ConsumeOne(ctx, targetTeamID, model.GuardianAngel) {
		timeLimit -= e.guardianPenalty
	}
	if timeLimit < e.minTimeLimit {
		timeLimit = e.minTimeLimit
	}

	h := &model.Heist{
		ID:                 uuid.NewString(),
		AttackerID:         attackerID,
		TargetTeamID:       targetTeamID,
		Stage:              model.StageCompound,
		Status:             model.StatusActive,
		CompoundProgress:   []string{},
		SafeChallengeIndex: model.NoSafeChallenge,
		TimeLimit:          timeLimit,
		StartTime:          e.clock.Now(),
	}
	e.heists.Put(ctx, h)

	if err := e.teams.SetHeistStatus(ctx, attackerID, model.HeistAttacking); err != nil {
		return InitResult{}, fmt.Errorf("set attacker status: %w", err)
	}
	if err := e.teams.SetHeistStatus(ctx, targetTeamID, model.HeistDefending); err != nil {
		return InitResult{}, fmt.Errorf("set target status: %w", err)
	}

	e.notifier.Notify(ctx, targetTeamID, EventHeistAlert, map[string]interface{}{
		"attackerName": attacker.Name,
		"heistId":      h.ID,
	})
	e.notifier.Notify(ctx, notify.AudienceAll, EventHeistStarted, map[string]interface{}{
		"attackerName": attacker.Name,
		"targetName":   target.Name,
		"heistId":      h.ID,
	})

	metrics.RecordHeistStarted()
	metrics.UpdateActiveHeists(e.heists.ActiveCount(ctx))
	e.logger.Info(ctx, "heist started",
		logger.String("heistID", h.ID),
		logger.String("attacker", attackerID),
		logger.String("target", targetTeamID),
		logger.Duration("timeLimit", timeLimit),
	)

	return InitResult{
		HeistID:            h.ID,
		TimeLimit:          timeLimit,
		CompoundChallenges: catalog.Redact(e.catalog.CompoundChallenges(ctx)),
	}, nil
}

// SubmitCompound grades a compound-stage answer. Wrong answers are free; a
// correct answer that completes the set advances the heist to the safe stage
// and pins a randomly chosen safe challenge.
func (e *Engine) SubmitCompound(ctx context.Context, heistID, callerID, challengeID, answer string) (CompoundResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, err := e.activeHeistFor(ctx, heistID, callerID, model.StageCompound)
	if err != nil {
		return CompoundResult{}, err
	}

	if h.ExpiredAt(e.clock.Now(), e.submitGrace) {
		e.resolveFailure(ctx, h, ReasonTimeout)
		return CompoundResult{}, ErrExpired
	}

	compound := e.catalog.CompoundChallenges(ctx)
	var challenge *model.Challenge
	for i := range compound {
		if compound[i].ID == challengeID {
			challenge = &compound[i]
			break
		}
	}
	if challenge == nil {
		return CompoundResult{}, fmt.Errorf("%w: %s", ErrChallengeNotFound, challengeID)
	}

	if catalog.NormalizeAnswer(answer) != catalog.NormalizeAnswer(challenge.Answer) {
		return CompoundResult{Correct: false, Progress: len(h.CompoundProgress)}, nil
	}

	// compoundProgress is a set: re-answering a solved challenge never
	// inflates progress.
	if !contains(h.CompoundProgress, challengeID) {
		h.CompoundProgress = append(h.CompoundProgress, challengeID)
	}

	if len(h.CompoundProgress) >= len(compound) {
		h.Stage = model.StageSafe
		safe := e.catalog.SafeChallenges(ctx)
		h.SafeChallengeIndex = e.pickSafe(len(safe))
		picked := safe[h.SafeChallengeIndex].Redacted()
		e.heists.Put(ctx, h)

		e.logger.Info(ctx, "compound stage complete",
			logger.String("heistID", h.ID),
			logger.Int("safeChallengeIndex", h.SafeChallengeIndex),
		)
		return CompoundResult{
			Correct:       true,
			Progress:      len(h.CompoundProgress),
			StageComplete: true,
			SafeChallenge: &picked,
		}, nil
	}

	e.heists.Put(ctx, h)
	return CompoundResult{Correct: true, Progress: len(h.CompoundProgress)}, nil
}

// SubmitSafe grades a safe-cracking answer. The attempt counter increments on
// every submission, the winning one included. A correct answer steals a share
// of the target's cash; the final wrong attempt forfeits a share of the
// attacker's.
func (e *Engine) SubmitSafe(ctx context.Context, heistID, callerID, answer string) (SafeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, err := e.activeHeistFor(ctx, heistID, callerID, model.StageSafe)
	if err != nil {
		return SafeResult{}, err
	}

	if h.ExpiredAt(e.clock.Now(), e.submitGrace) {
		e.resolveFailure(ctx, h, ReasonTimeout)
		return SafeResult{}, ErrExpired
	}

	h.SafeAttempts++
	e.heists.Put(ctx, h)
	metrics.RecordSafeAttempt()

	safe := e.catalog.SafeChallenges(ctx)
	expected := safe[h.SafeChallengeIndex].Answer

	if catalog.NormalizeAnswer(answer) == catalog.NormalizeAnswer(expected) {
		stolen, err := e.resolveSuccess(ctx, h)
		if err != nil {
			return SafeResult{}, err
		}
		return SafeResult{Correct: true, HeistSuccess: true, StolenAmount: stolen}, nil
	}

	if h.SafeAttempts >= e.maxSafeAttempts {
		transfer := e.resolveFailure(ctx, h, ReasonMaxAttempts)
		return SafeResult{HeistFailed: true, TransferAmount: transfer}, nil
	}

	return SafeResult{Correct: false, AttemptsRemaining: e.maxSafeAttempts - h.SafeAttempts}, nil
}

// SweepExpired force-fails every active heist whose time budget plus the sweep
// grace has elapsed. Safe to race with in-flight submissions: the terminal
// status guard makes double resolution a no-op. Returns the number of heists
// expired.
func (e *Engine) SweepExpired(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	expired := 0
	for _, h := range e.heists.Active(ctx) {
		if !h.ExpiredAt(now, e.sweepGrace) {
			continue
		}
		e.logger.Info(ctx, "auto-expiring heist",
			logger.String("heistID", h.ID),
			logger.Duration("elapsed", now.Sub(h.StartTime)),
		)
		e.resolveFailure(ctx, h, ReasonSweep)
		metrics.RecordSweeperExpired()
		expired++
	}
	return expired
}

// ActiveCount returns the number of active heists.
func (e *Engine) ActiveCount(ctx context.Context) int {
	return e.heists.ActiveCount(ctx)
}

// activeHeistFor loads a heist and checks caller, liveness and stage.
// Callers must hold e.mu.
func (e *Engine) activeHeistFor(ctx context.Context, heistID, callerID string, stage model.Stage) (*model.Heist, error) {
	h, err := e.heists.Get(ctx, heistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrHeistNotFound, heistID)
	}
	if h.AttackerID != callerID {
		return nil, ErrCallerMismatch
	}
	if h.Terminal() {
		return nil, ErrHeistNotActive
	}
	if h.Stage != stage {
		return nil, fmt.Errorf("%w: heist is in %s stage", ErrWrongStage, h.Stage)
	}
	return h, nil
}

// resolveSuccess transfers the configured share of the target's cash to the
// attacker and finalizes the heist. Callers must hold e.mu.
func (e *Engine) resolveSuccess(ctx context.Context, h *model.Heist) (int64, error) {
	target, err := e.teams.Get(ctx, h.TargetTeamID)
	if err != nil {
		return 0, fmt.Errorf("load target: %w", err)
	}
	stolen := int64(math.Floor(float64(target.Cash) * e.successRate))

	if _, err := e.teams.ApplyCashDelta(ctx, h.TargetTeamID, -stolen); err != nil {
		return 0, fmt.Errorf("debit target: %w", err)
	}
	if _, err := e.teams.ApplyCashDelta(ctx, h.AttackerID, stolen); err != nil {
		return 0, fmt.Errorf("credit attacker: %w", err)
	}

	h.Status = model.StatusSuccess
	e.heists.Put(ctx, h)
	_ = e.teams.SetHeistStatus(ctx, h.AttackerID, model.HeistNone)
	_ = e.teams.SetHeistStatus(ctx, h.TargetTeamID, model.HeistNone)

	e.emitResult(ctx, h, true, stolen, "")
	metrics.RecordHeistResolved("success", "safe_cracked")
	metrics.RecordCashTransferred("success", stolen)
	metrics.RecordHeistDuration(e.clock.Now().Sub(h.StartTime).Seconds())
	metrics.UpdateActiveHeists(e.heists.ActiveCount(ctx))

	e.logger.Info(ctx, "heist succeeded",
		logger.String("heistID", h.ID),
		logger.Int64("stolen", stolen),
	)
	return stolen, nil
}

// resolveFailure moves the configured share of the attacker's cash to the
// target and finalizes the heist. Idempotent: a heist that already reached a
// terminal status is left untouched and 0 is returned, so a racing client
// request and sweeper pass cannot double-apply the transfer.
// Callers must hold e.mu.
func (e *Engine) resolveFailure(ctx context.Context, h *model.Heist, reason string) int64 {
	if h.Terminal() {
		return 0
	}

	attacker, err := e.teams.Get(ctx, h.AttackerID)
	if err != nil {
		e.logger.Error(ctx, "resolve failure: attacker lookup", logger.Error(err))
		return 0
	}
	transfer := int64(math.Floor(float64(attacker.Cash) * e.failureRate))

	if _, err := e.teams.ApplyCashDelta(ctx, h.AttackerID, -transfer); err != nil {
		e.logger.Error(ctx, "resolve failure: debit attacker", logger.Error(err))
		return 0
	}
	if _, err := e.teams.ApplyCashDelta(ctx, h.TargetTeamID, transfer); err != nil {
		e.logger.Error(ctx, "resolve failure: credit target", logger.Error(err))
	}

	h.Status = model.StatusFailed
	e.heists.Put(ctx, h)
	_ = e.teams.SetHeistStatus(ctx, h.AttackerID, model.HeistNone)
	_ = e.teams.SetHeistStatus(ctx, h.TargetTeamID, model.HeistNone)

	e.emitResult(ctx, h, false, transfer, reason)
	metrics.RecordHeistResolved("failed", reason)
	metrics.RecordCashTransferred("failed", transfer)
	metrics.RecordHeistDuration(e.clock.Now().Sub(h.StartTime).Seconds())
	metrics.UpdateActiveHeists(e.heists.ActiveCount(ctx))

	e.logger.Info(ctx, "heist failed",
		logger.String("heistID", h.ID),
		logger.String("reason", reason),
		logger.Int64("transfer", transfer),
	)
	return transfer
}

func (e *Engine) emitResult(ctx context.Context, h *model.Heist, success bool, amount int64, reason string) {
	attackerName, targetName := h.AttackerID, h.TargetTeamID
	if t, err := e.teams.Get(ctx, h.AttackerID); err == nil {
		attackerName = t.Name
	}
	if t, err := e.teams.Get(ctx, h.TargetTeamID); err == nil {
		targetName = t.Name
	}

	payload := map[string]interface{}{
		"success":      success,
		"attackerName": attackerName,
		"targetName":   targetName,
	}
	if success {
		payload["stolenAmount"] = amount
	} else {
		payload["transferAmount"] = amount
		payload["reason"] = reason
	}
	e.notifier.Notify(ctx, notify.AudienceAll, EventHeistResult, payload)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
