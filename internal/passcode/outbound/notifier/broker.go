package notifier

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/passcode/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

// Broker hands the passcode to the notification consumer over the message
// broker. The delivery id is generated here and travels with the event.
type Broker struct {
	publisher messaging.Publisher
	uuid      uid.StringID
	ins       instrument.Instrumentation
}

func NewBroker(publisher messaging.Publisher, uuid uid.StringID, ins instrument.Instrumentation) *Broker {
	return &Broker{publisher: publisher, uuid: uuid, ins: ins}
}

func (b *Broker) Deliver(ctx context.Context, d entity.Delivery) (_ string, err error) {
	ctx, span := b.ins.Tracer("passcode.outbound.notifier").Start(ctx, "Broker.Deliver")
	defer func() { endSpan(span, err) }()

	deliveryID := b.uuid.Generate()
	body, err := json.Marshal(event.PasscodeIssuedMessage{
		DeliveryID: deliveryID,
		OTPID:      d.OTPID,
		UserID:     d.UserID,
		Email:      d.Destination,
		Passcode:   d.Code,
		ExpiresAt:  d.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", err
	}

	if _, err := b.publisher.Publish(ctx, event.PasscodeIssuedDestination, messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(strconv.FormatInt(d.UserID, 10)),
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))},
			{Key: keyOfDeliveryID, Value: []byte(deliveryID)},
		},
	}); err != nil {
		return "", classify(err)
	}

	return deliveryID, nil
}
