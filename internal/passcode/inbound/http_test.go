package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/passcode/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUC struct {
	issueIn   usecase.IssueInput
	verifyIn  usecase.VerifyInput
	issueOut  *usecase.IssueOutput
	verifyOut *usecase.VerifyOutput
	err       error
}

func (f *fakeUC) Issue(_ context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error) {
	f.issueIn = in
	return f.issueOut, f.err
}

func (f *fakeUC) Verify(_ context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	f.verifyIn = in
	return f.verifyOut, f.err
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func serve(t *testing.T, uc uc, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)
	r := router.NewRouter(router.Config{Config: cfg, UUID: fixedID("cid")})
	RegisterHTTPEndpoint(r, uc)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestIssue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{issueOut: &usecase.IssueOutput{DeliveryID: "msg-1", Delivered: true}}

		// Act
		rec, body := serve(t, uc, http.MethodPost, "/api/v1/passcode/issue", `{"userId":"42"}`, map[string]string{
			"Authorization":   "Bearer tok",
			"Idempotency-Key": "k1",
		})

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"success": true, "deliveryId": "msg-1", "delivered": true}, body)
		assert.Equal(t, usecase.IssueInput{UserID: 42, Credential: "tok", IdempotencyKey: "k1"}, uc.issueIn)
	})

	t.Run("delivery failure is reported", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{issueOut: &usecase.IssueOutput{DeliveryFailure: usecase.DeliveryFailureTimeout}}

		// Act
		rec, body := serve(t, uc, http.MethodPost, "/api/v1/passcode/issue", `{"userId":42}`, nil)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "timeout", body["deliveryFailure"])
		assert.Equal(t, false, body["delivered"])
	})

	t.Run("non numeric user id", func(t *testing.T) {
		// Act
		rec, body := serve(t, &fakeUC{}, http.MethodPost, "/api/v1/passcode/issue", `{"userId":"abc"}`, nil)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body, "error")
	})

	t.Run("wrong method", func(t *testing.T) {
		// Act
		rec, body := serve(t, &fakeUC{}, http.MethodGet, "/api/v1/passcode/issue", "", nil)

		// Assert
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, body, "error")
	})

	t.Run("identity mismatch", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{err: goerror.NewBusiness("Credential does not belong to the requested user", goerror.CodeIdentityMismatch)}

		// Act
		rec, body := serve(t, uc, http.MethodPost, "/api/v1/passcode/issue", `{"userId":42}`, nil)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Credential does not belong to the requested user", body["error"])
	})
}

func TestVerify(t *testing.T) {
	t.Run("numeric totp", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{verifyOut: &usecase.VerifyOutput{Success: true}}

		// Act
		rec, body := serve(t, uc, http.MethodPost, "/api/v1/passcode/verify", `{"userId":42,"totp":123456}`, nil)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"success": true}, body)
		assert.Equal(t, usecase.VerifyInput{UserID: 42, Code: "123456"}, uc.verifyIn)
	})

	t.Run("wrong code answers success false", func(t *testing.T) {
		// Arrange
		uc := &fakeUC{verifyOut: &usecase.VerifyOutput{Success: false}}

		// Act
		rec, body := serve(t, uc, http.MethodPost, "/api/v1/passcode/verify", `{"userId":42,"totp":"000000"}`, nil)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"success": false}, body)
	})

	t.Run("errors map to status codes", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{err: goerror.NewBusiness("x", goerror.CodeTooManyRequest), want: http.StatusTooManyRequests},
			{err: goerror.NewBusiness("x", goerror.CodeAttemptCeiling), want: http.StatusForbidden},
			{err: goerror.NewBusiness("x", goerror.CodeNoActiveCode), want: http.StatusBadRequest},
			{err: goerror.NewPersistence(assert.AnError), want: http.StatusBadRequest},
		}
		for _, tt := range tests {
			// Act
			rec, body := serve(t, &fakeUC{err: tt.err}, http.MethodPost, "/api/v1/passcode/verify", `{"userId":42,"totp":"123456"}`, nil)

			// Assert
			assert.Equal(t, tt.want, rec.Code)
			assert.NotContains(t, body["error"], assert.AnError.Error())
		}
	})
}
