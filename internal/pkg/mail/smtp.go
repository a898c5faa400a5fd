package mail

import (
	"context"
	"errors"

	gomail "github.com/wneessen/go-mail"
)

// ErrSMTPHostPortRequired is returned when Host/Port are missing.
var ErrSMTPHostPortRequired = errors.New("mail: smtp host and port are required")

// SMTPConfig configures the SMTP driver.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// TLS forces STARTTLS; otherwise it is used opportunistically.
	TLS bool
}

// SMTP is a Mail implementation backed by wneessen/go-mail.
type SMTP struct {
	client      *gomail.Client
	defaultFrom string
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	policy := gomail.TLSOpportunistic
	if cfg.TLS {
		policy = gomail.TLSMandatory
	}

	opts := []gomail.Option{gomail.WithPort(cfg.Port), gomail.WithTLSPolicy(policy)}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}

	return &SMTP{client: client, defaultFrom: cfg.From}, nil
}

// Send delivers a message over SMTP and returns its Message-ID header.
func (s *SMTP) Send(ctx context.Context, msg Message) (string, error) {
	msg, err := msg.normalize(s.defaultFrom)
	if err != nil {
		return "", err
	}

	m, err := buildMsg(msg)
	if err != nil {
		return "", err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", err
	}

	return m.GetMessageID(), nil
}

func buildMsg(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, err
	}
	if len(msg.To) > 0 {
		if err := m.To(msg.To...); err != nil {
			return nil, err
		}
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, err
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, err
		}
	}
	m.Subject(msg.Subject)
	m.SetMessageID()

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	}

	return m, nil
}

// Close implements io.Closer; connections are per send.
func (s *SMTP) Close() error {
	return nil
}
