package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InvalidationPublisher publishes pricing invalidation events to RabbitMQ.
type InvalidationPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewInvalidationPublisher creates a new pricing invalidation publisher
func NewInvalidationPublisher(conn *RabbitMQConnection) *InvalidationPublisher {
	return &InvalidationPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// PublishPricingInvalidated publishes an invalidation event to the
// pricing_invalidated_events queue.
func (p *InvalidationPublisher) PublishPricingInvalidated(ctx context.Context, ev PricingInvalidatedEvent) error {
	_, err := p.conn.Channel.QueueDeclare(
		PricingInvalidatedQueue, // queue name
		true,                    // durable
		false,                   // delete when unused
		false,                   // exclusive
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal invalidation event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                      // exchange
		PricingInvalidatedQueue, // routing key (queue name)
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish invalidation event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Pricing invalidation event published",
		"queue", PricingInvalidatedQueue,
		"level", ev.Level,
		"node_id", ev.NodeID,
		"reason", ev.Reason,
	)

	return nil
}
