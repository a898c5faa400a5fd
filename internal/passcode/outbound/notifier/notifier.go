// Package notifier delivers issued passcodes to their owners.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverMail   = "mail"
	DriverBroker = "broker"

	keyOfCorrelationID = "cID"
	keyOfDeliveryID    = "deliveryID"
)

var (
	// ErrUnknownDriver is returned by New for an unsupported driver name.
	ErrUnknownDriver = errors.New("notifier: unknown driver")
	// ErrMissingBackend is returned by New when the selected driver has no client.
	ErrMissingBackend = errors.New("notifier: backend is not configured")
)

type Notifier interface {
	Deliver(ctx context.Context, d entity.Delivery) (string, error)
}

type Dependency struct {
	Config     config.Config
	Mail       mail.Mail
	Messaging  messaging.Publisher
	UUID       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// New builds the notifier selected by modules.passcode.notifier.driver.
func New(dep Dependency) (Notifier, error) {
	switch driver := dep.Config.GetString("modules.passcode.notifier.driver"); driver {
	case DriverMail, "":
		if dep.Mail == nil {
			return nil, fmt.Errorf("%w: mail", ErrMissingBackend)
		}
		return NewMail(dep.Mail, dep.Clock, dep.Instrument), nil
	case DriverBroker:
		if dep.Messaging == nil {
			return nil, fmt.Errorf("%w: messaging", ErrMissingBackend)
		}
		return NewBroker(dep.Messaging, dep.UUID, dep.Instrument), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// classify keeps deadline errors as they are so callers can tell a timeout
// from a refusal, and marks everything else as entity.ErrDeliveryRejected.
func classify(err error) error {
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(entity.ErrDeliveryRejected, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
