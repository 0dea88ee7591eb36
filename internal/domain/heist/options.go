package heist

import (
	"time"

	"github.com/levelup/heist/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithSafePicker sets the safe-challenge selection function. The function
// receives the pool size and must return an index in [0, n).
func WithSafePicker(pick func(n int) int) Option {
	return func(e *Engine) {
		if pick != nil {
			e.pickSafe = pick
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBaseTimeLimit sets the base heist time budget.
func WithBaseTimeLimit(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.baseTimeLimit = d
		}
	}
}

// WithTimeFreezeBonus sets the TIME_FREEZE bonus added to the attacker's budget.
func WithTimeFreezeBonus(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.freezeBonus = d
		}
	}
}

// WithGuardianPenalty sets the GUARDIAN_ANGEL reduction of the budget.
func WithGuardianPenalty(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.guardianPenalty = d
		}
	}
}

// WithMinTimeLimit floors the computed time budget after power-up stacking.
func WithMinTimeLimit(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.minTimeLimit = d
		}
	}
}

// WithSubmitGrace sets the per-request latency tolerance on expiry checks.
func WithSubmitGrace(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.submitGrace = d
		}
	}
}

// WithSweepGrace sets the larger tolerance used by the expiry sweeper.
func WithSweepGrace(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.sweepGrace = d
		}
	}
}

// WithMaxSafeAttempts bounds wrong safe submissions before forced failure.
func WithMaxSafeAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSafeAttempts = n
		}
	}
}

// WithTransferRates sets the success steal rate and failure penalty rate.
func WithTransferRates(success, failure float64) Option {
	return func(e *Engine) {
		if success >= 0 && success <= 1 {
			e.successRate = success
		}
		if failure >= 0 && failure <= 1 {
			e.failureRate = failure
		}
	}
}
