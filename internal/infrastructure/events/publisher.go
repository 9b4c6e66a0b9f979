package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/breakout/internal/domain"
	"github.com/hilthontt/breakout/internal/infrastructure/contracts"
	"github.com/hilthontt/breakout/internal/infrastructure/messaging"
)

type EventPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewEventPublisher(rabbitmq *messaging.RabbitMQ) *EventPublisher {
	return &EventPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, ev domain.Event) error {
	eventJSON, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, string(ev.Type), contracts.AmqpMessage{
		MeetingID: ev.MeetingID,
		Data:      eventJSON,
	})
}
