package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
)

const (
	queryExpireActiveOTPs = `UPDATE passcode_otps
SET expires_at = $2
WHERE user_id = $1 AND status = $3 AND expires_at > $2`

	queryCreateOTP = `INSERT INTO passcode_otps
(id, user_id, code, status, attempt_count, is_verified, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

func (s *DB) CreateOTP(ctx context.Context, otp entity.OTP, invalidatePrior bool) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if invalidatePrior {
			if _, err := tx.Exec(ctx, queryExpireActiveOTPs, otp.UserID, otp.CreatedAt, int16(entity.OTPStatusActive)); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, queryCreateOTP,
			otp.ID,
			otp.UserID,
			otp.Code,
			int16(otp.Status),
			otp.AttemptCount,
			otp.IsVerified,
			otp.CreatedAt,
			otp.ExpiresAt,
		)
		return err
	})
}
