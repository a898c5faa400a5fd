package inbound

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/notification/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

type uc interface {
	ConsumePasscodeIssued(ctx context.Context, in usecase.ConsumePasscodeIssuedInput) error
}

type consumer struct {
	name    string
	topic   string // destination where publisher sent message
	group   string // kafka consumer group or nats queue group
	handler messaging.Handler
}

// RegisterMQConsumer starts every consumer listed in
// modules.notification.consumer_names on the goroutine manager and returns
// how many were started.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) int {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	consumers := []consumer{
		{
			name:    event.PasscodeIssuedConsumerNotification,
			topic:   event.PasscodeIssuedDestination,
			group:   event.PasscodeIssuedConsumerNotification,
			handler: mqHandler.PasscodeIssuedNotification,
		},
	}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := cfg.GetInt("modules.notification.concurrency")

	started := 0
	for _, c := range lo.Filter(consumers, func(c consumer, _ int) bool { return lo.Contains(enabled, c.name) }) {
		ok := routine.Go(ctx, c.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return messenger.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithGroup(c.group),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
			)
		})
		if !ok {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", c.name)
			continue
		}
		started++
	}

	return started
}
