package notifier

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/shared/mailtpl"
)

// Mail sends the passcode email synchronously; the delivery id is the
// provider message id.
type Mail struct {
	client mail.Mail
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewMail(client mail.Mail, clk clock.Clocker, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, clock: clk, ins: ins}
}

func (m *Mail) Deliver(ctx context.Context, d entity.Delivery) (_ string, err error) {
	ctx, span := m.ins.Tracer("passcode.outbound.notifier").Start(ctx, "Mail.Deliver")
	defer func() { endSpan(span, err) }()

	msg, err := mailtpl.Render(mailtpl.Passcode{
		To:        d.Destination,
		Code:      d.Code,
		ExpiresAt: d.ExpiresAt,
		Now:       m.clock.Now(),
	})
	if err != nil {
		return "", err
	}

	id, err := m.client.Send(ctx, msg)
	if err != nil {
		return "", classify(err)
	}

	return id, nil
}
