package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quickDeliver/internal/auth"
	"quickDeliver/models"
	"quickDeliver/repository"
)

const maxUpdateAttempts = 3

// StatusChange is an externally driven order mutation: an admin call or a
// kitchen/dispatch event. Empty fields are left untouched.
type StatusChange struct {
	OrderID           string             `json:"order_id"`
	Status            models.OrderStatus `json:"status,omitempty"`
	DriverName        *string            `json:"driver_name,omitempty"`
	EstimatedDelivery *string            `json:"estimated_delivery,omitempty"`
}

// UpdateOrderStatus moves an order to status. Admin only.
func (s *Service) UpdateOrderStatus(ctx context.Context, p *auth.Principal, id string, status models.OrderStatus) (*models.Order, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	return s.ApplyStatusChange(ctx, StatusChange{OrderID: id, Status: status})
}

// AssignDriver records the driver and an optional ETA label. Admin only.
func (s *Service) AssignDriver(ctx context.Context, p *auth.Principal, id, driverName, eta string) (*models.Order, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	driverName = strings.TrimSpace(driverName)
	if driverName == "" {
		return nil, invalidf("driver_name is required")
	}
	eta = strings.TrimSpace(eta)
	return s.ApplyStatusChange(ctx, StatusChange{OrderID: id, DriverName: &driverName, EstimatedDelivery: &eta})
}

// ApplyStatusChange validates and persists ch, then publishes the new snapshot.
// Delivered and cancelled orders no longer change status.
func (s *Service) ApplyStatusChange(ctx context.Context, ch StatusChange) (*models.Order, error) {
	if ch.OrderID == "" {
		return nil, invalidf("order id is required")
	}
	var change repository.OrderChange
	if ch.Status != "" {
		if !ch.Status.Valid() {
			return nil, invalidf("unknown status %q", ch.Status)
		}
		st := ch.Status
		change.Status = &st
	}
	change.DriverName = ch.DriverName
	change.EstimatedDelivery = ch.EstimatedDelivery
	if change.Empty() {
		return nil, invalidf("nothing to change")
	}

	var updated *models.Order
	for attempt := 0; ; attempt++ {
		cur, err := s.orders.GetByID(ctx, ch.OrderID)
		if err != nil {
			return nil, fmt.Errorf("get order: %w", err)
		}
		if cur == nil {
			return nil, notFoundf("order %s", ch.OrderID)
		}
		if change.Status != nil && *change.Status != cur.Status &&
			(cur.Status == models.OrderStatusDelivered || cur.Status == models.OrderStatusCancelled) {
			return nil, conflictf("order %s is already %s", cur.ID, cur.Status)
		}

		// the terminal check above only holds for the version it read
		change.ExpectVersion = cur.Version
		updated, err = s.orders.Update(ctx, ch.OrderID, change)
		if errors.Is(err, repository.ErrStaleVersion) {
			if attempt+1 < maxUpdateAttempts {
				continue
			}
			return nil, conflictf("order %s changed concurrently", ch.OrderID)
		}
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
		if updated == nil {
			return nil, notFoundf("order %s", ch.OrderID)
		}
		break
	}
	s.log.Info("order updated", "order_id", updated.ID, "status", updated.Status, "version", updated.Version)
	s.publish(ctx, updated)
	return updated, nil
}
