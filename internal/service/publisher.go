package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-booking/internal/queue"
)

// EventPublisher emits booking status events.  Implementations must not
// block the caller for long; errors are logged by callers and otherwise ignored.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error
}

// AMQPPublisher publishes to a durable RabbitMQ queue.  It dials per
// message: status changes are rare admin actions.
type AMQPPublisher struct {
	URL   string
	Queue string
	Log   *zap.Logger
}

func NewAMQPPublisher(url, queueName string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{URL: url, Queue: queueName, Log: log}
}

// PublishStatusChanged publishes ev as a persistent JSON message on the
// default exchange with the queue name as routing key.
func (p *AMQPPublisher) PublishStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.Warn("rabbitmq: queue declare failed", zap.String("queue", p.Queue), zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.ChangedAt + "-" + ev.Status,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		p.Log.Warn("rabbitmq: publish failed", zap.Uint64("booking_id", ev.BookingID), zap.Error(err))
		return err
	}
	return nil
}

// NopPublisher drops events; used when no broker is configured and in tests.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, queue.BookingStatusChangedEvent) error {
	return nil
}
