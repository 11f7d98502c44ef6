// Package notification prints a human-readable feed of order events for
// the dispatch desk.
package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"water-delivery/internal/logger"
	"water-delivery/internal/messaging"
	"water-delivery/internal/models"
)

// Subscriber turns order events into console notifications
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes events until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.HandleEvent)
	if errors.Is(err, context.Canceled) {
		s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)
		return s.consumer.Close()
	}
	return err
}

// HandleEvent decodes one event by routing key and prints it
func (s *Subscriber) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	var line string

	switch {
	case routingKey == models.RoutingKeyOrderCreated:
		var msg models.OrderCreatedMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			return fmt.Errorf("failed to parse order created event: %w", err)
		}
		line = FormatOrderCreated(&msg)
	case strings.HasPrefix(routingKey, "order.status."):
		var msg models.StatusUpdateMessage
		if err := messaging.ParseMessage(body, &msg); err != nil {
			return fmt.Errorf("failed to parse status event: %w", err)
		}
		line = FormatStatusUpdate(&msg)
	default:
		s.logger.Debug("event_ignored", "Ignoring unknown routing key", logger.RequestID(ctx), map[string]any{
			"routing_key": routingKey,
		})
		return nil
	}

	if _, err := fmt.Fprintln(s.out, line); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", logger.RequestID(ctx), map[string]any{
		"routing_key": routingKey,
	})
	return nil
}

const timeLayout = "2006-01-02 15:04:05"

// FormatOrderCreated renders a new-order notification
func FormatOrderCreated(msg *models.OrderCreatedMessage) string {
	return fmt.Sprintf("[%s] New order #%d for %s at %s: %d item(s), %s %s",
		msg.CreatedAt.Format(timeLayout),
		msg.OrderID,
		msg.CustomerName,
		msg.Address,
		msg.ItemCount,
		msg.Total,
		msg.PaymentMethod,
	)
}

// FormatStatusUpdate renders a status-change notification
func FormatStatusUpdate(msg *models.StatusUpdateMessage) string {
	timestamp := msg.Timestamp.Format(timeLayout)

	switch msg.NewStatus {
	case models.StatusInTransit:
		return fmt.Sprintf("[%s] Order #%d is out for delivery (dispatched by user %d).", timestamp, msg.OrderID, msg.ChangedBy)
	case models.StatusDelivered:
		return fmt.Sprintf("[%s] Order #%d has been delivered.", timestamp, msg.OrderID)
	case models.StatusCanceled:
		return fmt.Sprintf("[%s] Order #%d was canceled by %s %d.", timestamp, msg.OrderID, msg.Role, msg.ChangedBy)
	default:
		return fmt.Sprintf("[%s] Order #%d status changed from %s to %s by user %d.",
			timestamp, msg.OrderID, msg.OldStatus, msg.NewStatus, msg.ChangedBy)
	}
}
