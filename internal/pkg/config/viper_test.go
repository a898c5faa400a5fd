package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
modules:
  passcode:
    validity_minutes: 10
    timeout:
      authority_ms: 2500
    throttle_window_seconds: 60
    invalidate_on_reissue: true
app:
  server:
    cors: " https://a.example , ,https://b.example"
`

func TestViperFromBytes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 10*time.Minute, cfg.GetMinute("modules.passcode.validity_minutes"))
	assert.Equal(t, 2500*time.Millisecond, cfg.GetMillisecond("modules.passcode.timeout.authority_ms"))
	assert.Equal(t, time.Minute, cfg.GetSecond("modules.passcode.throttle_window_seconds"))
	assert.True(t, cfg.GetBool("modules.passcode.invalidate_on_reissue"))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("app.server.cors"))
	assert.Empty(t, cfg.GetArray("app.server.missing"))
	assert.NoError(t, cfg.Close())
}

func TestViperEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("MODULES_PASSCODE_VALIDITY_MINUTES", "3")
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	// Act
	got := cfg.GetMinute("modules.passcode.validity_minutes")

	// Assert
	assert.Equal(t, 3*time.Minute, got)
}

func TestViperFromBytesRequiresType(t *testing.T) {
	// Act
	_, err := NewViperFromBytes(" ", []byte(sample))

	// Assert
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}
