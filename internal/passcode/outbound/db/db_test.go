package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/migration"
	"github.com/shandysiswandi/otpgate/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("otpgate"),
		postgres.WithUsername("otpgate"),
		postgres.WithPassword("otpgate"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := migration.New(migrations.FS, ".", dsn)
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop())
}

func newOTP(id, userID int64, createdAt time.Time) entity.OTP {
	return entity.OTP{
		ID:        id,
		UserID:    userID,
		Code:      "digest",
		Status:    entity.OTPStatusActive,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(10 * time.Minute),
	}
}

func TestDB(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, db.Ping(ctx))
	})

	t.Run("no record", func(t *testing.T) {
		// Act
		_, err := db.GetActiveOTP(ctx, 1, now)

		// Assert
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("newest active wins and reissue expires older", func(t *testing.T) {
		// Arrange
		require.NoError(t, db.CreateOTP(ctx, newOTP(10, 2, now.Add(-time.Minute)), true))
		require.NoError(t, db.CreateOTP(ctx, newOTP(11, 2, now), true))

		// Act
		got, err := db.GetActiveOTP(ctx, 2, now.Add(time.Second))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
		assert.Equal(t, entity.OTPStatusActive, got.Status)
		assert.Nil(t, got.LastAttemptAt)
		assert.True(t, got.ExpiresAt.Equal(now.Add(10*time.Minute)))
	})

	t.Run("expired record is not active", func(t *testing.T) {
		// Arrange
		require.NoError(t, db.CreateOTP(ctx, newOTP(20, 3, now.Add(-11*time.Minute)), false))

		// Act
		_, err := db.GetActiveOTP(ctx, 3, now)

		// Assert
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("conditional attempt update", func(t *testing.T) {
		// Arrange
		require.NoError(t, db.CreateOTP(ctx, newOTP(30, 4, now), false))
		attempt := entity.Attempt{
			ID:           300,
			OTPID:        30,
			UserID:       4,
			PrevCount:    0,
			AttemptCount: 1,
			Status:       entity.OTPStatusActive,
			AttemptedAt:  now.Add(time.Second),
		}

		// Act
		err := db.RecordAttempt(ctx, attempt)
		stale := attempt
		stale.ID = 301
		errStale := db.RecordAttempt(ctx, stale)

		// Assert
		require.NoError(t, err)
		assert.ErrorIs(t, errStale, goerror.ErrConflict)

		got, err := db.GetActiveOTP(ctx, 4, now.Add(2*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int32(1), got.AttemptCount)
		require.NotNil(t, got.LastAttemptAt)

		n, err := db.CountRecentAttempts(ctx, 4, now)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("blocked record is the latest unexpired", func(t *testing.T) {
		// Arrange
		require.NoError(t, db.CreateOTP(ctx, newOTP(40, 5, now), false))
		require.NoError(t, db.RecordAttempt(ctx, entity.Attempt{
			ID: 400, OTPID: 40, UserID: 5, PrevCount: 0, AttemptCount: 1,
			Status: entity.OTPStatusBlocked, AttemptedAt: now,
		}))

		// Act
		_, errActive := db.GetActiveOTP(ctx, 5, now)
		latest, err := db.GetLatestUnexpiredOTP(ctx, 5, now)

		// Assert
		assert.ErrorIs(t, errActive, goerror.ErrNotFound)
		require.NoError(t, err)
		assert.Equal(t, entity.OTPStatusBlocked, latest.Status)
	})
}
