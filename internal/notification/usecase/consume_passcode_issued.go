package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/shared/mailtpl"
)

type ConsumePasscodeIssuedInput struct {
	DeliveryID string    `validate:"required"`
	UserID     int64     `validate:"required,gt=0"`
	Email      string    `validate:"required,email"`
	Passcode   string    `validate:"required,len=6,digits"`
	ExpiresAt  time.Time `validate:"required"`
}

// ConsumePasscodeIssued mails an issued passcode. Malformed and already
// expired events are dropped; a failing mail provider returns the error so
// the broker redelivers.
func (s *Usecase) ConsumePasscodeIssued(ctx context.Context, in ConsumePasscodeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePasscodeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "delivery_id", in.DeliveryID, "error", err)
		s.record(ctx, outcomeDropped)
		return nil
	}

	now := s.clock.Now()
	if !now.Before(in.ExpiresAt) {
		slog.WarnContext(ctx, "passcode expired before delivery", "delivery_id", in.DeliveryID, "user_id", in.UserID)
		s.record(ctx, outcomeExpired)
		return nil
	}

	msg, err := mailtpl.Render(mailtpl.Passcode{
		To:        in.Email,
		Code:      in.Passcode,
		ExpiresAt: in.ExpiresAt,
		Now:       now,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render passcode email", "delivery_id", in.DeliveryID, "error", err)
		s.record(ctx, outcomeDropped)
		return nil
	}

	providerID, err := s.repoMail.Send(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send passcode email", "delivery_id", in.DeliveryID, "user_id", in.UserID, "error", err)
		s.record(ctx, outcomeFailed)
		return err
	}

	s.record(ctx, outcomeSent)
	slog.InfoContext(ctx, "passcode email sent", "delivery_id", in.DeliveryID, "provider_id", providerID, "user_id", in.UserID)
	return nil
}
