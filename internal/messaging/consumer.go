package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"water-delivery/internal/logger"
)

// MessageHandler processes one delivery. A returned error requeues a first delivery once.
type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

// Consumer binds a queue to the order events exchange and consumes from it
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	bindingKey  string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer. An empty queueName declares a
// server-named exclusive queue that disappears with the consumer.
func NewConsumer(conn *Connection, log *logger.Logger, queueName, bindingKey, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		bindingKey:  bindingKey,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

func (c *Consumer) declareQueue(channel *amqp091.Channel) (string, error) {
	temporary := c.queueName == ""
	queue, err := channel.QueueDeclare(
		c.queueName, // name
		!temporary,  // durable
		temporary,   // delete when unused
		temporary,   // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,        // queue name
		c.bindingKey,      // routing key
		c.conn.Exchange(), // exchange
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return "", fmt.Errorf("failed to bind queue %s with routing key %s: %w", queue.Name, c.bindingKey, err)
	}
	return queue.Name, nil
}

// StartConsuming consumes until ctx is done
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	channel, err := c.conn.Channel(ctx)
	if err != nil {
		return err
	}

	err = channel.Qos(
		c.prefetch, // prefetch count
		0,          // prefetch size
		false,      // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	queueName, err := c.declareQueue(channel)
	if err != nil {
		return err
	}

	msgs, err := channel.Consume(
		queueName,     // queue
		c.consumerTag, // consumer
		false,         // auto-ack (we'll ack manually)
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", queueName),
		"", map[string]any{
			"queue":       queueName,
			"binding_key": c.bindingKey,
			"consumer":    c.consumerTag,
			"prefetch":    c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil)
				return c.StartConsuming(ctx, handler)
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

// processMessage handles a single message
func (c *Consumer) processMessage(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	startTime := time.Now()
	requestID := delivery.CorrelationId

	processingCtx, cancel := context.WithTimeout(logger.WithRequestID(ctx, requestID), 30*time.Second)
	defer cancel()

	err := handler(processingCtx, delivery.RoutingKey, delivery.Body)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("message_processing_failed",
			"Failed to process message",
			requestID, err, map[string]any{
				"routing_key":  delivery.RoutingKey,
				"duration_ms":  duration.Milliseconds(),
				"delivery_tag": delivery.DeliveryTag,
			})

		// malformed payloads would loop forever if requeued; other failures get one retry
		requeue := !IsMalformed(err) && !delivery.Redelivered
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", requestID, nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed",
		"Successfully processed message",
		requestID, map[string]any{
			"routing_key":  delivery.RoutingKey,
			"duration_ms":  duration.Milliseconds(),
			"delivery_tag": delivery.DeliveryTag,
		})

	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", requestID, ackErr, nil)
	}
}

// malformedError marks a payload that can never be processed
type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return "malformed message: " + e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

// ParseMessage parses a JSON message into v. Decoding failures are reported
// as malformed so the consumer drops them instead of requeueing.
func ParseMessage(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &malformedError{err: err}
	}
	return nil
}

// IsMalformed reports whether err came from an undecodable payload
func IsMalformed(err error) bool {
	var m *malformedError
	return errors.As(err, &m)
}

// Close cancels the consumer and closes the connection
func (c *Consumer) Close() error {
	if !c.conn.IsClosed() {
		if channel, err := c.conn.Channel(context.Background()); err == nil {
			if err := channel.Cancel(c.consumerTag, false); err != nil {
				c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
			}
		}
	}
	return c.conn.Close()
}
