package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const (
	queryRecordAttempt = `UPDATE passcode_otps
SET attempt_count = $3, status = $4, is_verified = $5, last_attempt_at = $6
WHERE id = $1 AND attempt_count = $2 AND status = $7`

	queryCreateAttempt = `INSERT INTO passcode_otp_attempts
(id, otp_id, user_id, attempt_count, is_correct, status, attempted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// RecordAttempt applies the attempt only when the record still holds
// PrevCount and is ACTIVE; otherwise it returns goerror.ErrConflict.
func (s *DB) RecordAttempt(ctx context.Context, a entity.Attempt) (err error) {
	ctx, span := s.startSpan(ctx, "RecordAttempt")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, queryRecordAttempt,
			a.OTPID,
			a.PrevCount,
			a.AttemptCount,
			int16(a.Status),
			a.IsCorrect,
			a.AttemptedAt,
			int16(entity.OTPStatusActive),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		_, err = tx.Exec(ctx, queryCreateAttempt,
			a.ID,
			a.OTPID,
			a.UserID,
			a.AttemptCount,
			a.IsCorrect,
			int16(a.Status),
			a.AttemptedAt,
		)
		return err
	})
}
