package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const conflictBackoff = 20 * time.Millisecond

type VerifyInput struct {
	UserID int64  `validate:"required,gt=0"`
	Code   string `validate:"required,len=6,digits"`
}

type VerifyOutput struct {
	Success bool
}

var errAttemptCeiling = goerror.NewBusiness("Too many failed attempts, request a new passcode", goerror.CodeAttemptCeiling)

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "verify payload is invalid", "user_id", in.UserID, "error", err)
		return nil, goerror.NewInvalidInput(err)
	}

	since := s.clock.Now().Add(-s.policy.ThrottleWindow)
	storeCtx, cancel := context.WithTimeout(ctx, s.policy.StoreTimeout)
	recent, err := s.repoDB.CountRecentAttempts(storeCtx, in.UserID, since)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, "count recent attempts", err, "user_id", in.UserID)
	}

	if recent >= s.policy.MaxAttemptsPerWindow {
		s.count(ctx, s.verifyCounter, "throttled")
		slog.WarnContext(ctx, "verify throttled", "user_id", in.UserID, "recent_attempts", recent)
		return nil, goerror.NewBusiness("Too many attempts, try again later", goerror.CodeTooManyRequest)
	}

	var out *VerifyOutput
	backoff := retry.WithMaxRetries(s.policy.ConflictRetries, retry.NewConstant(conflictBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := s.attempt(ctx, in)
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "verify lost a concurrent update, retrying", "user_id", in.UserID)
			return retry.RetryableError(err)
		}
		out = res
		return err
	})
	if errors.Is(err, goerror.ErrConflict) {
		s.count(ctx, s.verifyCounter, "conflict")
		slog.ErrorContext(ctx, "verify retries exhausted", "user_id", in.UserID, "error", err)
		return nil, goerror.NewPersistence(err)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

// attempt runs a single lookup and conditional update. goerror.ErrConflict is
// returned unwrapped so the caller can retry it.
func (s *Usecase) attempt(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	now := s.clock.Now()

	otp, err := s.activeOTP(ctx, in.UserID, now)
	if err != nil {
		return nil, err
	}

	count := otp.AttemptCount + 1
	blocked := count >= s.policy.MaxTotalAttempts
	correct := s.hmac.Verify(otp.Code, in.Code)

	status := entity.OTPStatusActive
	switch {
	case blocked:
		status = entity.OTPStatusBlocked
	case correct:
		status = entity.OTPStatusVerified
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.policy.StoreTimeout)
	err = s.repoDB.RecordAttempt(storeCtx, entity.Attempt{
		ID:           s.uid.Generate(),
		OTPID:        otp.ID,
		UserID:       otp.UserID,
		PrevCount:    otp.AttemptCount,
		AttemptCount: count,
		IsCorrect:    correct,
		Status:       status,
		AttemptedAt:  now,
	})
	cancel()
	if errors.Is(err, goerror.ErrConflict) {
		return nil, err
	}
	if err != nil {
		return nil, s.storeError(ctx, "record attempt", err, "otp_id", otp.ID, "user_id", otp.UserID)
	}

	if blocked {
		s.count(ctx, s.verifyCounter, "blocked")
		slog.WarnContext(ctx, "passcode blocked", "otp_id", otp.ID, "user_id", otp.UserID, "attempt_count", count)
		return nil, errAttemptCeiling
	}

	if correct {
		s.count(ctx, s.verifyCounter, "verified")
	} else {
		s.count(ctx, s.verifyCounter, "mismatch")
	}

	return &VerifyOutput{Success: correct}, nil
}

func (s *Usecase) activeOTP(ctx context.Context, userID int64, now time.Time) (*entity.OTP, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.policy.StoreTimeout)
	defer cancel()

	otp, err := s.repoDB.GetActiveOTP(storeCtx, userID, now)
	if err == nil {
		return otp, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		return nil, s.storeError(ctx, "get active otp", err, "user_id", userID)
	}

	latest, err := s.repoDB.GetLatestUnexpiredOTP(storeCtx, userID, now)
	switch {
	case err == nil && latest.Status == entity.OTPStatusBlocked:
		s.count(ctx, s.verifyCounter, "blocked")
		slog.WarnContext(ctx, "verify against blocked passcode", "otp_id", latest.ID, "user_id", userID)
		return nil, errAttemptCeiling
	case err != nil && !errors.Is(err, goerror.ErrNotFound):
		return nil, s.storeError(ctx, "get latest otp", err, "user_id", userID)
	}

	s.count(ctx, s.verifyCounter, "no_active")
	slog.WarnContext(ctx, "no active passcode", "user_id", userID)
	return nil, goerror.NewBusiness("No active passcode, request a new one", goerror.CodeNoActiveCode)
}
