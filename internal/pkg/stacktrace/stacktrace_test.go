package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/otpgate/internal/passcode/usecase.(*Usecase).Verify(...)
	/app/internal/passcode/usecase/verify.go:88 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	assert.Equal(t, []string{"internal/passcode/usecase/verify.go:88"}, got)
}
