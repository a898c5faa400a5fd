package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendSend(t *testing.T) {
	// Arrange
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer srv.Close()

	r, err := NewResend(ResendConfig{APIKey: "re_test", Endpoint: srv.URL, From: "noreply@otpgate.dev", HTTPClient: srv.Client()})
	require.NoError(t, err)

	// Act
	id, err := r.Send(context.Background(), Message{To: []string{"user@example.com"}, Subject: "s", HTMLBody: "<p>b</p>"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "email-123", id)
	assert.Equal(t, "noreply@otpgate.dev", got.From)
	assert.Equal(t, []string{"user@example.com"}, got.To)
}

func TestResendRetriesServerErrors(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"email-2"}`))
	}))
	defer srv.Close()

	r, err := NewResend(ResendConfig{APIKey: "k", Endpoint: srv.URL, From: "n@o.p", MaxRetries: 2, HTTPClient: srv.Client()})
	require.NoError(t, err)

	// Act
	id, err := r.Send(context.Background(), Message{To: []string{"u@e.c"}, TextBody: "b"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "email-2", id)
	assert.EqualValues(t, 2, calls.Load())
}

func TestResendRejected(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	r, err := NewResend(ResendConfig{APIKey: "k", Endpoint: srv.URL, From: "n@o.p", MaxRetries: 3, HTTPClient: srv.Client()})
	require.NoError(t, err)

	// Act
	_, err = r.Send(context.Background(), Message{To: []string{"u@e.c"}, TextBody: "b"})

	// Assert
	var rerr *ResendError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusUnprocessableEntity, rerr.StatusCode)
	assert.Equal(t, "invalid from", rerr.Message)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewResendRequiresKey(t *testing.T) {
	_, err := NewResend(ResendConfig{})

	assert.ErrorIs(t, err, ErrResendAPIKeyRequired)
}
