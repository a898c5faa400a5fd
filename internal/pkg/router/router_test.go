package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-test")})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouterSuccessWritesPayloadAsBody(t *testing.T) {
	// Arrange
	r := newTestRouter(t, "app: {}")
	r.POST("/ok", func(*Request) (any, error) {
		return map[string]bool{"success": true}, nil
	})
	req := httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	// Act
	r.ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, decodeBody(t, rec))
	assert.Equal(t, "cid-test", rec.Header().Get(HeaderCorrelationID))
}

func TestRouterErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody map[string]any
	}{
		{
			name:     "business",
			err:      goerror.NewBusiness("No active passcode", goerror.CodeNoActiveCode),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{"error": "No active passcode", "code": "ERROR_CODE_NO_ACTIVE_CODE"},
		},
		{
			name:     "validation fields",
			err:      goerror.NewInvalidInput(nil, "user_id", "user_id is required"),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{
				"error":  "Validation error",
				"code":   "ERROR_CODE_INVALID_INPUT",
				"fields": map[string]any{"user_id": "user_id is required"},
			},
		},
		{
			name:     "persistence hides cause",
			err:      goerror.NewPersistence(errors.New("dial tcp 10.0.0.1:5432")),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{"error": "Request could not be processed, please retry", "code": "ERROR_CODE_PERSISTENCE"},
		},
		{
			name:     "plain error",
			err:      errors.New("secret detail"),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]any{"error": "Internal server error", "code": "ERROR_CODE_INTERNAL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			r := newTestRouter(t, "app: {}")
			r.POST("/fail", func(*Request) (any, error) { return nil, tt.err })
			rec := httptest.NewRecorder()

			// Act
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/fail", nil))

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rec))
		})
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/api/v1/passcode/verify", func(*Request) (any, error) { return nil, nil })
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/passcode/verify", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", decodeBody(t, rec)["error"])
}

func TestRouterRecoversPanic(t *testing.T) {
	r := newTestRouter(t, "app: {}")
	r.POST("/panic", func(*Request) (any, error) { panic("kaboom") })
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "ERROR_CODE_INTERNAL", decodeBody(t, rec)["code"])
}

func TestRouterRateLimitPerIP(t *testing.T) {
	// Arrange
	r := newTestRouter(t, `
app:
  rate_limit:
    enabled: true
    requests: 2
    window_seconds: 60
`)
	r.POST("/limited", func(*Request) (any, error) { return map[string]bool{"success": true}, nil })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	// Act
	first, second, third := send("10.0.0.1"), send("10.0.0.1"), send("10.0.0.1")
	other := send("10.0.0.2")

	// Assert
	assert.Equal(t, http.StatusOK, first)
	assert.Equal(t, http.StatusOK, second)
	assert.Equal(t, http.StatusTooManyRequests, third)
	assert.Equal(t, http.StatusOK, other)
}

func TestRouterMaintenance(t *testing.T) {
	r := newTestRouter(t, `
app:
  maintenance:
    endpoints: "/down"
`)
	r.POST("/down", func(*Request) (any, error) { return map[string]bool{"success": true}, nil })
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/down", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
