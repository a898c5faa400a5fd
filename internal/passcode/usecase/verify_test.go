package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("issue then verify succeeds", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)

		// Act
		out, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Success)
		otp := h.repo.byUser(testUserID)[0]
		assert.Equal(t, entity.OTPStatusVerified, otp.Status)
		assert.True(t, otp.IsVerified)
		assert.Equal(t, int32(1), otp.AttemptCount)
		require.NotNil(t, otp.LastAttemptAt)

		_, err = h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})
		assertCode(t, err, goerror.CodeNoActiveCode)
	})

	t.Run("wrong code counts an attempt", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)

		// Act
		out, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: wrongCode(code)})

		// Assert
		require.NoError(t, err)
		assert.False(t, out.Success)
		otp := h.repo.byUser(testUserID)[0]
		assert.Equal(t, entity.OTPStatusActive, otp.Status)
		assert.Equal(t, int32(1), otp.AttemptCount)
	})

	t.Run("five wrong attempts block the passcode", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		bad := wrongCode(code)

		// Act
		for i := range 4 {
			out, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: bad})
			require.NoError(t, err, "attempt %d", i+1)
			assert.False(t, out.Success)
			h.clock.Advance(61 * time.Second)
		}
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: bad})

		// Assert
		assertCode(t, err, goerror.CodeAttemptCeiling)
		otp := h.repo.byUser(testUserID)[0]
		assert.Equal(t, entity.OTPStatusBlocked, otp.Status)
		assert.Equal(t, int32(5), otp.AttemptCount)

		h.clock.Advance(61 * time.Second)
		_, err = h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})
		assertCode(t, err, goerror.CodeAttemptCeiling)
	})

	t.Run("correct code on the last attempt is still blocked", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		for range 4 {
			_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: wrongCode(code)})
			require.NoError(t, err)
			h.clock.Advance(61 * time.Second)
		}

		// Act
		out, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		assert.Nil(t, out)
		assertCode(t, err, goerror.CodeAttemptCeiling)
		assert.Equal(t, entity.OTPStatusBlocked, h.repo.byUser(testUserID)[0].Status)
	})

	t.Run("verify without issuance", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		// Act
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: "123456"})

		// Assert
		assertCode(t, err, goerror.CodeNoActiveCode)
	})

	t.Run("fourth attempt within the window is throttled", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		bad := wrongCode(code)
		for range 3 {
			_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: bad})
			require.NoError(t, err)
			h.clock.Advance(3 * time.Second)
		}

		// Act
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		assertCode(t, err, goerror.CodeTooManyRequest)
		otp := h.repo.byUser(testUserID)[0]
		assert.Equal(t, int32(3), otp.AttemptCount)
		assert.Equal(t, entity.OTPStatusActive, otp.Status)
	})

	t.Run("expired passcode is never active", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		h.clock.Advance(10 * time.Minute)

		// Act
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		assertCode(t, err, goerror.CodeNoActiveCode)
		assert.Equal(t, int32(0), h.repo.byUser(testUserID)[0].AttemptCount)
	})

	t.Run("malformed code", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		for _, code := range []string{"", "12345", "1234567", "12a456"} {
			// Act
			_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

			// Assert
			assertCode(t, err, goerror.CodeInvalidInput)
		}
	})

	t.Run("lost race is retried", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		h.repo.conflicts = 2

		// Act
		out, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Equal(t, 3, h.repo.recordCalls)
	})

	t.Run("exhausted retries surface a persistence error", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		code := h.issue(t)
		h.repo.conflicts = 100

		// Act
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: code})

		// Assert
		assertCode(t, err, goerror.CodePersistence)
		assert.Equal(t, int32(0), h.repo.byUser(testUserID)[0].AttemptCount)
	})

	t.Run("store failure", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		h.repo.countErr = errBoom

		// Act
		_, err := h.uc.Verify(ctx, VerifyInput{UserID: testUserID, Code: "123456"})

		// Assert
		assertCode(t, err, goerror.CodePersistence)
	})
}
