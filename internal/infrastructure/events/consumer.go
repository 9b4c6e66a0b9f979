package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/contracts"
	"github.com/hilthontt/breakout/internal/infrastructure/logging"
	"github.com/hilthontt/breakout/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type AuditConsumer struct {
	rabbitmq *messaging.RabbitMQ
	repo     domain.AuditRepository
	logger   logging.Logger
}

func NewAuditConsumer(rabbitmq *messaging.RabbitMQ, repo domain.AuditRepository, logger logging.Logger) *AuditConsumer {
	return &AuditConsumer{
		rabbitmq: rabbitmq,
		repo:     repo,
		logger:   logger,
	}
}

func (c *AuditConsumer) Listen(ctx context.Context) error {
	return c.rabbitmq.ConsumeMessages(ctx, messaging.AuditQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		ev, err := decodeEvent(msg.Body)
		if err != nil {
			return err
		}

		c.logger.Debug(logging.RabbitMQ, logging.Consume, "audit event received", map[logging.ExtraKey]any{
			"event_type":      string(ev.Type),
			logging.MeetingID: ev.MeetingID,
		})

		return c.repo.Log(ctx, domain.NewAuditLog(ev))
	})
}

func decodeEvent(body []byte) (domain.Event, error) {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	var ev domain.Event
	if err := json.Unmarshal(message.Data, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if ev.MeetingID == "" {
		ev.MeetingID = message.MeetingID
	}

	return ev, nil
}
