package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// New builds the Mail driver selected by mail.driver (smtp, resend or ses).
func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (Mail, error) {
	from := cfg.GetString("mail.from")

	switch driver := strings.ToLower(cfg.GetString("mail.driver")); driver {
	case "smtp", "":
		return NewSMTP(SMTPConfig{
			Host:     cfg.GetString("mail.smtp.host"),
			Port:     cfg.GetInt("mail.smtp.port"),
			Username: cfg.GetString("mail.smtp.username"),
			Password: cfg.GetString("mail.smtp.password"),
			TLS:      cfg.GetBool("mail.smtp.tls"),
			From:     from,
		})
	case "resend":
		return NewResend(ResendConfig{
			APIKey:     cfg.GetString("mail.resend.api_key"),
			Endpoint:   cfg.GetString("mail.resend.endpoint"),
			MaxRetries: uint64(max(cfg.GetInt("mail.resend.max_retries"), 0)),
			HTTPClient: httpClient,
			From:       from,
		})
	case "ses":
		return NewSES(ctx, SESConfig{
			Region:          cfg.GetString("mail.ses.region"),
			AccessKeyID:     cfg.GetString("mail.ses.access_key_id"),
			SecretAccessKey: cfg.GetString("mail.ses.secret_access_key"),
			Endpoint:        cfg.GetString("mail.ses.endpoint"),
			From:            from,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
