package messaging

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

const (
	// DriverNATS selects the NATS backend.
	DriverNATS = "nats"
	// DriverKafka selects the Kafka backend.
	DriverKafka = "kafka"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// NewFromConfig builds the client selected by messaging.driver.
func NewFromConfig(cfg config.Config) (Messaging, error) {
	switch driver := strings.ToLower(strings.TrimSpace(cfg.GetString("messaging.driver"))); driver {
	case DriverNATS:
		return NewNATS(NATSConfig{
			URL: cfg.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(cfg.GetString("instrument.service_name")),
				nats.MaxReconnects(-1),
				nats.ReconnectWait(2 * time.Second),
			},
		})
	case DriverKafka:
		return NewKafka(KafkaConfig{Brokers: cfg.GetArray("messaging.kafka.brokers")})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
