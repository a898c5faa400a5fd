package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("s", 64))

func TestNewHS512ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})

	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetricRoundTrip(t *testing.T) {
	// Arrange
	clk := clock.NewFrozen(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	j, err := NewHS512(Config{Secret: testSecret, Issuer: "idp", Audiences: []string{"otpgate"}, TTL: time.Minute, Clock: clk})
	require.NoError(t, err)

	token, err := j.Generate(42, "a@b.c")
	require.NoError(t, err)

	// Act
	claims, err := j.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestSymmetricVerifyExpired(t *testing.T) {
	// Arrange
	clk := clock.NewFrozen(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	j, err := NewHS512(Config{Secret: testSecret, TTL: time.Minute, Clock: clk})
	require.NoError(t, err)
	token, err := j.Generate(42, "a@b.c")
	require.NoError(t, err)

	// Act
	clk.Advance(2 * time.Minute)
	_, err = j.Verify(token)

	// Assert
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetricVerifyWrongSecret(t *testing.T) {
	signer, err := NewHS512(Config{Secret: testSecret})
	require.NoError(t, err)
	token, err := signer.Generate(1, "x@y.z")
	require.NoError(t, err)

	other, err := NewHS512(Config{Secret: []byte(strings.Repeat("o", 64))})
	require.NoError(t, err)

	_, err = other.Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
