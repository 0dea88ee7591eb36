// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HeistBaseSeconds is the base heist time budget before power-ups.
	HeistBaseSeconds int `koanf:"heist_base_seconds"`

	// TimeFreezeBonusSeconds is added when the attacker burns TIME_FREEZE.
	TimeFreezeBonusSeconds int `koanf:"time_freeze_bonus_seconds"`

	// GuardianPenaltySeconds is subtracted when the target holds GUARDIAN_ANGEL.
	GuardianPenaltySeconds int `koanf:"guardian_penalty_seconds"`

	// MinHeistSeconds floors the computed time limit after power-up stacking.
	MinHeistSeconds int `koanf:"min_heist_seconds"`

	// SubmitGraceSeconds is the per-request latency tolerance on expiry checks.
	SubmitGraceSeconds int `koanf:"submit_grace_seconds"`

	// SweepGraceSeconds is the (larger) tolerance used by the expiry sweeper.
	SweepGraceSeconds int `koanf:"sweep_grace_seconds"`

	// SweepIntervalSeconds sets how often the sweeper scans for expired heists.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// MaxSafeAttempts bounds wrong safe submissions before forced failure.
	MaxSafeAttempts int `koanf:"max_safe_attempts"`

	// SuccessTakeRate is the fraction of target cash stolen on success.
	SuccessTakeRate float64 `koanf:"success_take_rate"`

	// FailurePenaltyRate is the fraction of attacker cash forfeited on failure.
	FailurePenaltyRate float64 `koanf:"failure_penalty_rate"`

	// MaxPowerUpStack caps identical power-ups held by one team.
	MaxPowerUpStack int `koanf:"max_powerup_stack"`

	// JWTSecret signs session tokens. Override outside local runs.
	JWTSecret string `koanf:"jwt_secret"`

	// AdminPassword gates the admin console login.
	AdminPassword string `koanf:"admin_password"`

	// TokenTTLHours bounds session token validity.
	TokenTTLHours int `koanf:"token_ttl_hours"`

	// SnapshotPath is the JSON autosave file. Empty disables snapshotting.
	SnapshotPath string `koanf:"snapshot_path"`

	// SnapshotIntervalSeconds sets the autosave cadence.
	SnapshotIntervalSeconds int `koanf:"snapshot_interval_seconds"`

	// NotifyBuffer sizes each event subscriber's channel.
	NotifyBuffer int `koanf:"notify_buffer"`

	// LoginRateLimit caps login attempts per source per minute.
	LoginRateLimit int `koanf:"login_rate_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		HeistBaseSeconds:        180,
		TimeFreezeBonusSeconds:  60,
		GuardianPenaltySeconds:  30,
		MinHeistSeconds:         10,
		SubmitGraceSeconds:      5,
		SweepGraceSeconds:       10,
		SweepIntervalSeconds:    15,
		MaxSafeAttempts:         3,
		SuccessTakeRate:         0.5,
		FailurePenaltyRate:      0.3,
		MaxPowerUpStack:         2,
		JWTSecret:               "level-up-event-secret",
		AdminPassword:           "admin123",
		TokenTTLHours:           8,
		SnapshotPath:            "gamestate-backup.json",
		SnapshotIntervalSeconds: 60,
		NotifyBuffer:            64,
		LoginRateLimit:          10,
	}
}
