package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"quickDeliver/internal/metrics"
	"quickDeliver/models"
)

// RabbitBridge shares order snapshots between backend instances. Every
// instance publishes to a fanout exchange and feeds its local Hub from an
// exclusive queue bound to it, so a watcher on any instance sees every update.
type RabbitBridge struct {
	conn     *amqp.Connection
	exchange string
	hub      *Hub
	log      *slog.Logger

	mu    sync.Mutex // amqp channels are not safe for concurrent publishing
	pubCh *amqp.Channel
}

// DialRabbit connects to url and declares the fanout exchange.
func DialRabbit(url, exchange string, hub *Hub, l *slog.Logger) (*RabbitBridge, error) {
	if hub == nil {
		return nil, errors.New("hub is nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if l == nil {
		l = hub.log
	}
	return &RabbitBridge{conn: conn, exchange: exchange, hub: hub, log: l.With("component", "rabbit-bridge"), pubCh: ch}, nil
}

// Start binds an exclusive queue to the exchange and consumes it until ctx is done.
// Non-blocking: the consumer runs in its own goroutine.
func (b *RabbitBridge) Start(ctx context.Context) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		false, // manual ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					b.log.Warn("rabbitmq delivery channel closed")
					return
				}
				if err := b.handle(d.Body); err != nil {
					b.log.Error("bad order update", "err", err)
					metrics.ExternalEvents.WithLabelValues("rabbitmq", "error").Inc()
					_ = d.Nack(false, false) // drop poison
					continue
				}
				metrics.ExternalEvents.WithLabelValues("rabbitmq", "ok").Inc()
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}

func (b *RabbitBridge) handle(body []byte) error {
	var o models.Order
	if err := json.Unmarshal(body, &o); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if o.ID == "" {
		return errors.New("order update without id")
	}
	b.hub.Publish(o)
	return nil
}

// PublishOrder sends o to the exchange. If the broker is unavailable the
// snapshot is still delivered to local watchers before the error is returned.
func (b *RabbitBridge) PublishOrder(ctx context.Context, o models.Order) error {
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	b.mu.Lock()
	err = b.pubCh.PublishWithContext(ctx,
		b.exchange, // exchange
		"",         // routing key (ignored by fanout)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   fmt.Sprintf("%s:%d", o.ID, o.Version),
			Body:        body,
		})
	b.mu.Unlock()
	if err != nil {
		b.hub.Publish(o)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close closes the connection and every channel opened on it.
func (b *RabbitBridge) Close() error {
	return b.conn.Close()
}

var _ Publisher = (*RabbitBridge)(nil)
