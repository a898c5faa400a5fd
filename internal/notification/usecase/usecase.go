package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Outcomes recorded on the notification.passcode_mails counter.
const (
	outcomeSent    = "sent"
	outcomeDropped = "dropped"
	outcomeExpired = "expired"
	outcomeFailed  = "failed"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// Usecase turns broker events into outgoing mail.
type Usecase struct {
	repoMail  repoMail
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	mails     metric.Int64Counter
}

type Dependency struct {
	RepoMail   repoMail
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	uc := &Usecase{
		repoMail:  dep.RepoMail,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}

	mails, err := dep.Instrument.Meter("notification.usecase").Int64Counter("notification.passcode_mails",
		metric.WithDescription("Passcode mails handled by outcome"))
	if err != nil {
		slog.Error("failed to create counter", "name", "notification.passcode_mails", "error", err)
	}
	uc.mails = mails

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) record(ctx context.Context, outcome string) {
	if s.mails == nil {
		return
	}
	s.mails.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
