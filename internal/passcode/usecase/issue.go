package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
)

const (
	DeliveryFailureTimeout  = "timeout"
	DeliveryFailureRejected = "rejected"
)

type IssueInput struct {
	UserID         int64  `validate:"required,gt=0"`
	Credential     string `validate:"required"`
	IdempotencyKey string `validate:"omitempty,max=128"`
}

type IssueOutput struct {
	DeliveryID      string
	Delivered       bool
	DeliveryFailure string
}

func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.WarnContext(ctx, "issue payload is invalid", "user_id", in.UserID, "error", err)
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		return s.issue(ctx, in)
	}

	key := "passcode:issue:" + strconv.FormatInt(in.UserID, 10) + ":" + in.IdempotencyKey

	var out *IssueOutput
	err := s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		var err error
		out, err = s.issue(ctx, in)
		return err
	}, idempotency.WithStateTTL(s.policy.IdempotencyTTL))

	var gerr *goerror.Error
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.WarnContext(ctx, "issue request replayed", "user_id", in.UserID, "error", err)
		return nil, goerror.NewBusiness("Request with this Idempotency-Key was already processed", goerror.CodeConflict)
	case errors.As(err, &gerr):
		return nil, err
	default:
		slog.ErrorContext(ctx, "failed to track idempotency key", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}
}

func (s *Usecase) issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	identity, err := s.exchange(ctx, in.Credential)
	if err != nil {
		return nil, err
	}

	if identity.UserID != in.UserID {
		slog.WarnContext(ctx, "credential belongs to another user", "user_id", in.UserID, "auth_user_id", identity.UserID)
		return nil, goerror.NewBusiness("Credential does not belong to the requested user", goerror.CodeIdentityMismatch)
	}

	code, err := generateCode()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	digest, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash passcode", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	otp := entity.OTP{
		ID:           s.uid.Generate(),
		UserID:       in.UserID,
		Code:         string(digest),
		Status:       entity.OTPStatusActive,
		AttemptCount: 0,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.policy.ValidityWindow),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.policy.StoreTimeout)
	err = s.repoDB.CreateOTP(storeCtx, otp, s.policy.InvalidateOnReissue)
	cancel()
	if err != nil {
		return nil, s.storeError(ctx, "create otp", err, "user_id", in.UserID)
	}
	s.count(ctx, s.issuedCounter, "")

	return s.deliver(ctx, entity.Delivery{
		OTPID:       otp.ID,
		UserID:      otp.UserID,
		Destination: identity.Email,
		Code:        code,
		ExpiresAt:   otp.ExpiresAt,
	}), nil
}

func (s *Usecase) exchange(ctx context.Context, credential string) (*entity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, s.policy.AuthorityTimeout)
	defer cancel()

	identity, err := s.authority.Exchange(ctx, credential)
	switch {
	case err == nil && identity != nil:
		return identity, nil
	case errors.Is(err, entity.ErrAuthorityTimeout), errors.Is(err, context.DeadlineExceeded):
		slog.WarnContext(ctx, "identity authority timed out", "error", err)
		return nil, goerror.NewTimeout(err, "Identity authority did not respond in time")
	case errors.Is(err, entity.ErrAuthorityRejected):
		slog.WarnContext(ctx, "identity authority rejected credential", "error", err)
		return nil, goerror.NewBusiness("Credential was rejected by the identity authority", goerror.CodeUpstreamAuth)
	default:
		slog.ErrorContext(ctx, "failed to exchange credential", "error", err)
		return nil, goerror.NewBusiness("Identity authority could not validate the credential", goerror.CodeUpstreamAuth)
	}
}

// deliver never fails the issuance; the outcome is reported in the output.
func (s *Usecase) deliver(ctx context.Context, d entity.Delivery) *IssueOutput {
	nctx, cancel := context.WithTimeout(ctx, s.policy.NotifierTimeout)
	defer cancel()

	id, err := s.notifier.Deliver(nctx, d)
	if err == nil {
		s.count(ctx, s.deliveryCounter, "delivered")
		return &IssueOutput{DeliveryID: id, Delivered: true}
	}

	failure := DeliveryFailureRejected
	if errors.Is(err, context.DeadlineExceeded) {
		failure = DeliveryFailureTimeout
	}
	s.count(ctx, s.deliveryCounter, failure)
	slog.WarnContext(ctx, "failed to deliver passcode", "otp_id", d.OTPID, "user_id", d.UserID, "reason", failure, "error", err)

	return &IssueOutput{DeliveryID: id, Delivered: false, DeliveryFailure: failure}
}
