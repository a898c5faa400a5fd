package passcode

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/passcode/inbound"
	"github.com/shandysiswandi/otpgate/internal/passcode/outbound/authority"
	"github.com/shandysiswandi/otpgate/internal/passcode/outbound/db"
	"github.com/shandysiswandi/otpgate/internal/passcode/outbound/notifier"
	"github.com/shandysiswandi/otpgate/internal/passcode/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

// Dependency lists what the passcode module needs. Mail, Messaging and JWT
// are only required by the driver that uses them.
type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	HMAC        hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	HTTPClient  *http.Client               `validate:"required"`
	Mail        mail.Mail
	Messaging   messaging.Messaging
	JWT         jwt.JWT
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	exchanger, err := authority.New(dep.Config, dep.HTTPClient, dep.JWT, dep.Instrument)
	if err != nil {
		return err
	}

	var publisher messaging.Publisher
	if dep.Messaging != nil {
		publisher = dep.Messaging
	}
	sender, err := notifier.New(notifier.Dependency{
		Config:     dep.Config,
		Mail:       dep.Mail,
		Messaging:  publisher,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DBConn, dep.Instrument),
		Authority:   exchanger,
		Notifier:    sender,
		Idempotency: dep.Idempotency,
		Validator:   dep.Validator,
		HMAC:        dep.HMAC,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
		Policy:      usecase.NewPolicy(dep.Config),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
