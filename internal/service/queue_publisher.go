// Package service holds adapters that deliver booking events to outside
// systems.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

// Publisher sends reservation events to a durable RabbitMQ queue through the
// default exchange.  The connection is opened lazily and re-opened after a
// failure.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ booking.EventPublisher = (*Publisher)(nil)

// NewPublisher returns a Publisher for queueName on the broker at url.
func NewPublisher(url, queueName string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, queue: queueName, log: log}
}

// Publish implements booking.EventPublisher.  Messages are persistent.
func (p *Publisher) Publish(ctx context.Context, ev booking.Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.channel()
	if err != nil {
		p.log.Warn("rabbitmq: connect failed", zap.Error(err))
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.String("type", string(ev.Type)), zap.Error(err))
		p.reset()
		return err
	}
	p.log.Debug("reservation event published",
		zap.String("type", string(ev.Type)),
		zap.Uint64("reservation_id", ev.Reservation.ID),
		zap.String("message_id", msg.MessageId))
	return nil
}

// Encode builds the AMQP message for ev.
func Encode(ev booking.Event) (amqp.Publishing, error) {
	payload := queue.FromBooking(ev)
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    payload.EventID,
		Type:         payload.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
