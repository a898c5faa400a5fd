package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	// Arrange
	h, err := NewHMACSHA256("s3cr3t")
	require.NoError(t, err)

	// Act
	digest, err := h.Hash("482913")

	// Assert
	require.NoError(t, err)
	assert.Len(t, digest, 64)
	assert.NotContains(t, string(digest), "482913")
	assert.True(t, h.Verify(string(digest), "482913"))
	assert.False(t, h.Verify(string(digest), "482914"))
}

func TestHMACSHA256DifferentSecrets(t *testing.T) {
	a, err := NewHMACSHA256("a")
	require.NoError(t, err)
	b, err := NewHMACSHA256("b")
	require.NoError(t, err)

	digest, _ := a.Hash("123456")

	assert.False(t, b.Verify(string(digest), "123456"))
}

func TestNewHMACSHA256EmptySecret(t *testing.T) {
	_, err := NewHMACSHA256("")

	assert.ErrorIs(t, err, ErrEmptySecret)
}
