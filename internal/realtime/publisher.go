package realtime

import (
	"context"

	"quickDeliver/models"
)

// Publisher announces a new order snapshot to everyone watching it.
type Publisher interface {
	PublishOrder(ctx context.Context, o models.Order) error
}

// PublishOrder makes the hub a Publisher for single-instance deployments.
func (h *Hub) PublishOrder(_ context.Context, o models.Order) error {
	h.Publish(o)
	return nil
}

var _ Publisher = (*Hub)(nil)
