package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
)

type authorizeRequest struct {
	Authorize string `json:"authorize"`
}

type authorizeReply struct {
	Authorize *struct {
		UserID valueobject.FlexInt64 `json:"user_id"`
		Email  string                `json:"email"`
	} `json:"authorize"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Authorize posts {"authorize": token} to the authority and reads
// either {"authorize": {...}} or {"error": {...}} back.
type Authorize struct {
	client *http.Client
	url    string
	ins    instrument.Instrumentation
}

func NewAuthorize(client *http.Client, url string, ins instrument.Instrumentation) *Authorize {
	if client == nil {
		client = http.DefaultClient
	}
	return &Authorize{client: client, url: url, ins: ins}
}

func (a *Authorize) Exchange(ctx context.Context, credential string) (_ *entity.Identity, err error) {
	ctx, span := a.ins.Tracer("passcode.outbound.authority").Start(ctx, "Authorize.Exchange")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(authorizeRequest{Authorize: credential})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, classify(err)
	}

	var reply authorizeReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("authority: decode reply with status %d: %w", resp.StatusCode, err)
	}

	switch {
	case reply.Error != nil:
		return nil, rejected("%s: %s", reply.Error.Code, reply.Error.Message)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, rejected("status %d", resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("authority: unexpected status %d", resp.StatusCode)
	case reply.Authorize == nil || !reply.Authorize.UserID.Set:
		return nil, rejected("reply carries no identity")
	}

	return &entity.Identity{UserID: reply.Authorize.UserID.Value, Email: reply.Authorize.Email}, nil
}
