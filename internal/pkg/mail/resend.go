package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultResendEndpoint is the Resend send-email endpoint.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ErrResendAPIKeyRequired is returned when the API key is empty.
var ErrResendAPIKeyRequired = errors.New("mail: resend api key is required")

// ResendConfig configures the Resend driver.
type ResendConfig struct {
	APIKey   string
	Endpoint string
	From     string
	// MaxRetries bounds retries of 5xx and 429 answers.
	MaxRetries uint64
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Resend is a Mail implementation calling the Resend HTTP API.
type Resend struct {
	apiKey      string
	endpoint    string
	defaultFrom string
	maxRetries  uint64
	httpClient  *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ResendError is a non-success answer from the API.
type ResendError struct {
	StatusCode int
	Message    string
}

func (e *ResendError) Error() string {
	return fmt.Sprintf("mail: resend responded %d: %s", e.StatusCode, e.Message)
}

// NewResend constructs a Resend mail sender.
func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, ErrResendAPIKeyRequired
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultResendEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &Resend{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		defaultFrom: cfg.From,
		maxRetries:  cfg.MaxRetries,
		httpClient:  cfg.HTTPClient,
	}, nil
}

// Send posts msg to Resend and returns the email id it assigned.
func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	msg, err := msg.normalize(r.defaultFrom)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		HTML:    msg.HTMLBody,
		Text:    msg.TextBody,
	})
	if err != nil {
		return "", err
	}

	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(200*time.Millisecond))

	var id string
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var errSend error
		id, errSend = r.post(ctx, payload)

		var rerr *ResendError
		if errors.As(errSend, &rerr) && (rerr.StatusCode >= http.StatusInternalServerError || rerr.StatusCode == http.StatusTooManyRequests) {
			return retry.RetryableError(errSend)
		}
		return errSend
	})

	return id, err
}

func (r *Resend) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body resendResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	_ = json.Unmarshal(raw, &body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := body.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &ResendError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body.ID, nil
}

// Close implements io.Closer.
func (r *Resend) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}
