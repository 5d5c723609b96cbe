package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"quickDeliver/internal/backend"
	"quickDeliver/internal/metrics"
	"quickDeliver/models"
)

// StatusChangedEvent is the payload kitchen and dispatch systems emit on the
// order-status-changed topic.
type StatusChangedEvent struct {
	OrderID           string  `json:"order_id"`
	Status            string  `json:"status,omitempty"`
	DriverName        *string `json:"driver_name,omitempty"`
	EstimatedDelivery *string `json:"estimated_delivery,omitempty"`
}

// Applier applies an external order change.
type Applier interface {
	ApplyStatusChange(ctx context.Context, ch backend.StatusChange) (*models.Order, error)
}

// NewGroup creates a consumer group that starts from the newest offset.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}

// Consumer feeds order status events into the backend.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Apply  Applier
	Logger *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, a Applier, l *slog.Logger) *Consumer {
	return &Consumer{Group: group, Topics: topics, Apply: a, Logger: l.With("component", "kafka-consumer")}
}

// Start consumes until ctx is cancelled. It blocks; run it in a goroutine.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{apply: c.Apply, log: c.Logger}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		// Consume returns on rebalance or cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	return c.Group.Close()
}

type cgHandler struct {
	apply Applier
	log   *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if h.process(sess.Context(), msg) {
			sess.MarkMessage(msg, "")
		}
	}
	return nil
}

// process applies one message and reports whether its offset may be committed.
// Malformed or rejected events are committed so they do not block the partition;
// infrastructure errors are left uncommitted for redelivery.
func (h *cgHandler) process(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	var ev StatusChangedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		h.log.Error("kafka decode error", "err", err, "offset", msg.Offset)
		metrics.ExternalEvents.WithLabelValues("kafka", "decode_error").Inc()
		return true
	}
	if ev.OrderID == "" && len(msg.Key) > 0 {
		ev.OrderID = string(msg.Key)
	}
	_, err := h.apply.ApplyStatusChange(ctx, backend.StatusChange{
		OrderID:           ev.OrderID,
		Status:            models.OrderStatus(ev.Status),
		DriverName:        ev.DriverName,
		EstimatedDelivery: ev.EstimatedDelivery,
	})
	switch {
	case err == nil:
		metrics.ExternalEvents.WithLabelValues("kafka", "ok").Inc()
		return true
	case errors.Is(err, backend.ErrInvalidArgument), errors.Is(err, backend.ErrNotFound), errors.Is(err, backend.ErrConflict):
		h.log.Warn("order event rejected", "order_id", ev.OrderID, "err", err, "offset", msg.Offset)
		metrics.ExternalEvents.WithLabelValues("kafka", "rejected").Inc()
		return true
	default:
		h.log.Error("handler error", "order_id", ev.OrderID, "err", fmt.Sprint(err), "key", string(msg.Key), "offset", msg.Offset)
		metrics.ExternalEvents.WithLabelValues("kafka", "error").Inc()
		return false
	}
}
