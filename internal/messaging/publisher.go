package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"water-delivery/internal/logger"
	"water-delivery/internal/models"
)

// Publisher publishes order events to the topic exchange
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishOrderCreated announces a committed order
func (p *Publisher) PublishOrderCreated(ctx context.Context, msg *models.OrderCreatedMessage) error {
	return p.publishMessage(ctx, models.RoutingKeyOrderCreated, msg)
}

// PublishStatusUpdate announces a committed status change
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error {
	return p.publishMessage(ctx, models.StatusRoutingKey(msg.NewStatus), msg)
}

func (p *Publisher) publishMessage(ctx context.Context, routingKey string, message any) error {
	requestID := logger.RequestID(ctx)

	channel, err := p.conn.Channel(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp091.Persistent,
		Timestamp:     time.Now(),
		CorrelationId: requestID,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = channel.PublishWithContext(
		ctx,
		p.conn.Exchange(), // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", p.conn.Exchange()),
		requestID, map[string]any{
			"exchange":     p.conn.Exchange(),
			"routing_key":  routingKey,
			"message_size": len(body),
		})

	return nil
}

// Close closes the publisher
func (p *Publisher) Close() error {
	return p.conn.Close()
}
