// Package authority exchanges a bearer credential for the identity it belongs to.
package authority

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
)

const (
	DriverAuthorize = "authorize"
	DriverUserInfo  = "userinfo"
	DriverJWT       = "jwt"

	defaultAuthorizeURL = "https://green.derivws.com/websockets/authorize?app_id=1"
	maxReplySize        = 1 << 20
)

// ErrUnknownDriver is returned by New for an unsupported driver name.
var ErrUnknownDriver = errors.New("authority: unknown driver")

// Exchanger resolves a credential into an identity.
type Exchanger interface {
	Exchange(ctx context.Context, credential string) (*entity.Identity, error)
}

// New builds the exchanger selected by modules.passcode.authority.driver.
func New(cfg config.Config, client *http.Client, verifier jwt.JWT, ins instrument.Instrumentation) (Exchanger, error) {
	switch driver := cfg.GetString("modules.passcode.authority.driver"); driver {
	case DriverAuthorize, "":
		url := cfg.GetString("modules.passcode.authority.authorize.url")
		if url == "" {
			url = defaultAuthorizeURL
		}
		return NewAuthorize(client, url, ins), nil
	case DriverUserInfo:
		return NewUserInfo(client, cfg.GetString("modules.passcode.authority.userinfo.url"), ins), nil
	case DriverJWT:
		return NewJWT(verifier, ins), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// classify marks deadline and network timeouts with entity.ErrAuthorityTimeout.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return errors.Join(entity.ErrAuthorityTimeout, err)
	}

	return err
}

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{entity.ErrAuthorityRejected}, args...)...)
}
