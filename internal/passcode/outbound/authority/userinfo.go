package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
)

type userInfoReply struct {
	Sub   valueobject.FlexInt64 `json:"sub"`
	Email string                `json:"email"`
}

// UserInfo treats the credential as an OAuth2 access token and asks the
// provider's userinfo endpoint who it belongs to.
type UserInfo struct {
	client *http.Client
	url    string
	ins    instrument.Instrumentation
}

func NewUserInfo(client *http.Client, url string, ins instrument.Instrumentation) *UserInfo {
	if client == nil {
		client = http.DefaultClient
	}
	return &UserInfo{client: client, url: url, ins: ins}
}

func (u *UserInfo) Exchange(ctx context.Context, credential string) (_ *entity.Identity, err error) {
	ctx, span := u.ins.Tracer("passcode.outbound.authority").Start(ctx, "UserInfo.Exchange")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential, TokenType: "Bearer"})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, u.client), ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, rejected("status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("authority: unexpected status %d", resp.StatusCode)
	}

	var reply userInfoReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplySize)).Decode(&reply); err != nil {
		return nil, classify(fmt.Errorf("authority: decode userinfo: %w", err))
	}
	if !reply.Sub.Set {
		return nil, rejected("userinfo carries no subject")
	}

	return &entity.Identity{UserID: reply.Sub.Value, Email: reply.Email}, nil
}
