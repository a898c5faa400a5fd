package usecase

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// Policy holds the passcode limits. It is read once at start-up.
type Policy struct {
	ValidityWindow       time.Duration
	MaxTotalAttempts     int32
	MaxAttemptsPerWindow int
	ThrottleWindow       time.Duration
	InvalidateOnReissue  bool
	ConflictRetries      uint64
	AuthorityTimeout     time.Duration
	StoreTimeout         time.Duration
	NotifierTimeout      time.Duration
	IdempotencyTTL       time.Duration
}

// DefaultPolicy is a 10 minute code with 5 attempts in total and 3 per minute.
func DefaultPolicy() Policy {
	return Policy{
		ValidityWindow:       10 * time.Minute,
		MaxTotalAttempts:     5,
		MaxAttemptsPerWindow: 3,
		ThrottleWindow:       time.Minute,
		InvalidateOnReissue:  true,
		ConflictRetries:      3,
		AuthorityTimeout:     5 * time.Second,
		StoreTimeout:         3 * time.Second,
		NotifierTimeout:      10 * time.Second,
		IdempotencyTTL:       24 * time.Hour,
	}
}

// NewPolicy reads modules.passcode.*; unset or non-positive values keep the default.
func NewPolicy(cfg config.Config) Policy {
	p := DefaultPolicy()

	p.ValidityWindow = pick(cfg.GetMinute("modules.passcode.validity_minutes"), p.ValidityWindow)
	p.MaxTotalAttempts = pick(cfg.GetInt32("modules.passcode.max_total_attempts"), p.MaxTotalAttempts)
	p.MaxAttemptsPerWindow = pick(cfg.GetInt("modules.passcode.max_attempts_per_window"), p.MaxAttemptsPerWindow)
	p.ThrottleWindow = pick(cfg.GetSecond("modules.passcode.throttle_window_seconds"), p.ThrottleWindow)
	p.AuthorityTimeout = pick(cfg.GetMillisecond("modules.passcode.timeout.authority_ms"), p.AuthorityTimeout)
	p.StoreTimeout = pick(cfg.GetMillisecond("modules.passcode.timeout.store_ms"), p.StoreTimeout)
	p.NotifierTimeout = pick(cfg.GetMillisecond("modules.passcode.timeout.notifier_ms"), p.NotifierTimeout)
	p.IdempotencyTTL = pick(cfg.GetSecond("modules.passcode.idempotency_ttl_seconds"), p.IdempotencyTTL)

	if n := cfg.GetInt("modules.passcode.conflict_retries"); n > 0 {
		p.ConflictRetries = uint64(n)
	}
	if cfg.GetString("modules.passcode.invalidate_on_reissue") != "" {
		p.InvalidateOnReissue = cfg.GetBool("modules.passcode.invalidate_on_reissue")
	}

	return p
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	p.ValidityWindow = pick(p.ValidityWindow, d.ValidityWindow)
	p.MaxTotalAttempts = pick(p.MaxTotalAttempts, d.MaxTotalAttempts)
	p.MaxAttemptsPerWindow = pick(p.MaxAttemptsPerWindow, d.MaxAttemptsPerWindow)
	p.ThrottleWindow = pick(p.ThrottleWindow, d.ThrottleWindow)
	p.AuthorityTimeout = pick(p.AuthorityTimeout, d.AuthorityTimeout)
	p.StoreTimeout = pick(p.StoreTimeout, d.StoreTimeout)
	p.NotifierTimeout = pick(p.NotifierTimeout, d.NotifierTimeout)
	p.IdempotencyTTL = pick(p.IdempotencyTTL, d.IdempotencyTTL)
	return p
}

func pick[T int | int32 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}
