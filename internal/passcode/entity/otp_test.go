package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTPStatus(t *testing.T) {
	assert.Equal(t, "ACTIVE", OTPStatusActive.String())
	assert.Equal(t, "VERIFIED", OTPStatusVerified.String())
	assert.Equal(t, "BLOCKED", OTPStatusBlocked.String())
	assert.Equal(t, "UNKNOWN", OTPStatus(9).String())
	assert.Equal(t, OTPStatusUnknown, OTPStatus(9).Ensure())
	assert.Equal(t, OTPStatusBlocked, OTPStatusBlocked.Ensure())
}

func TestOTPIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	otp := OTP{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, otp.IsExpired(now))
	assert.True(t, otp.IsExpired(now.Add(time.Minute)))
}
