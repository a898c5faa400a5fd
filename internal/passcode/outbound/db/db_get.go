package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
)

const (
	otpColumns = `id, user_id, code, status, attempt_count, is_verified, created_at, expires_at, last_attempt_at`

	queryGetActiveOTP = `SELECT ` + otpColumns + `
FROM passcode_otps
WHERE user_id = $1 AND status = $2 AND expires_at > $3
ORDER BY created_at DESC, id DESC
LIMIT 1`

	queryGetLatestUnexpiredOTP = `SELECT ` + otpColumns + `
FROM passcode_otps
WHERE user_id = $1 AND expires_at > $2
ORDER BY created_at DESC, id DESC
LIMIT 1`

	queryCountRecentAttempts = `SELECT COUNT(*)
FROM passcode_otp_attempts
WHERE user_id = $1 AND attempted_at > $2`
)

func (s *DB) GetActiveOTP(ctx context.Context, userID int64, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTP")
	defer func() { s.endSpan(span, err) }()

	otp, err := scanOTP(s.conn.QueryRow(ctx, queryGetActiveOTP, userID, int16(entity.OTPStatusActive), now))
	if err != nil {
		return nil, s.mapError(err)
	}

	return otp, nil
}

func (s *DB) GetLatestUnexpiredOTP(ctx context.Context, userID int64, now time.Time) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestUnexpiredOTP")
	defer func() { s.endSpan(span, err) }()

	otp, err := scanOTP(s.conn.QueryRow(ctx, queryGetLatestUnexpiredOTP, userID, now))
	if err != nil {
		return nil, s.mapError(err)
	}

	return otp, nil
}

func (s *DB) CountRecentAttempts(ctx context.Context, userID int64, since time.Time) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "CountRecentAttempts")
	defer func() { s.endSpan(span, err) }()

	var n int64
	if err := s.conn.QueryRow(ctx, queryCountRecentAttempts, userID, since).Scan(&n); err != nil {
		return 0, s.mapError(err)
	}

	return int(n), nil
}

func scanOTP(row pgx.Row) (*entity.OTP, error) {
	var (
		otp    entity.OTP
		status int16
	)
	if err := row.Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Code,
		&status,
		&otp.AttemptCount,
		&otp.IsVerified,
		&otp.CreatedAt,
		&otp.ExpiresAt,
		&otp.LastAttemptAt,
	); err != nil {
		return nil, err
	}
	otp.Status = entity.OTPStatus(status)

	return &otp, nil
}
