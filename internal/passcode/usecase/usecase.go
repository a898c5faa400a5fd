package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	// CreateOTP inserts otp; with invalidatePrior it also expires the user's
	// older ACTIVE records in the same transaction.
	CreateOTP(ctx context.Context, otp entity.OTP, invalidatePrior bool) error
	CountRecentAttempts(ctx context.Context, userID int64, since time.Time) (int, error)
	GetActiveOTP(ctx context.Context, userID int64, now time.Time) (*entity.OTP, error)
	GetLatestUnexpiredOTP(ctx context.Context, userID int64, now time.Time) (*entity.OTP, error)
	// RecordAttempt returns goerror.ErrConflict when the record changed since it was read.
	RecordAttempt(ctx context.Context, attempt entity.Attempt) error
}

type identityAuthority interface {
	Exchange(ctx context.Context, credential string) (*entity.Identity, error)
}

type notifier interface {
	Deliver(ctx context.Context, d entity.Delivery) (string, error)
}

type Usecase struct {
	repoDB    repoDB
	authority identityAuthority
	notifier  notifier
	idemp     idempotency.Idempotency
	validator validator.Validator
	hmac      hash.Hash
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	policy    Policy

	issuedCounter   metric.Int64Counter
	verifyCounter   metric.Int64Counter
	deliveryCounter metric.Int64Counter
}

type Dependency struct {
	RepoDB      repoDB
	Authority   identityAuthority
	Notifier    notifier
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	HMAC        hash.Hash
	UID         uid.NumberID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
	Policy      Policy
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:    dep.RepoDB,
		authority: dep.Authority,
		notifier:  dep.Notifier,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		hmac:      dep.HMAC,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		policy:    dep.Policy.withDefaults(),
	}

	meter := uc.ins.Meter("passcode.usecase")
	uc.issuedCounter = newCounter(meter, "passcode.issued", "Passcodes persisted")
	uc.verifyCounter = newCounter(meter, "passcode.verifications", "Verification attempts by outcome")
	uc.deliveryCounter = newCounter(meter, "passcode.deliveries", "Passcode deliveries by outcome")

	return uc
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Error("failed to create counter", "name", name, "error", err)
		return nil
	}
	return c
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, outcome string) {
	if c == nil {
		return
	}
	if outcome == "" {
		c.Add(ctx, 1)
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("passcode.usecase").Start(ctx, name)
}

// storeError logs a record store failure and maps it to a caller-safe error.
func (s *Usecase) storeError(ctx context.Context, op string, err error, args ...any) error {
	slog.ErrorContext(ctx, "failed to repo "+op, append(args, "error", err)...)
	if errors.Is(err, context.DeadlineExceeded) {
		return goerror.NewTimeout(err, "Record store did not respond in time")
	}
	return goerror.NewPersistence(err)
}
