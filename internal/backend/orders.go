package backend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/metrics"
	"quickDeliver/internal/realtime"
	"quickDeliver/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PlaceOrder persists a pending order for the caller. Items must all come from
// in.RestaurantID and match the current menu; TotalAmount must equal their sum.
// The flat DeliveryFee is stored alongside so the record reproduces the charged total.
func (s *Service) PlaceOrder(ctx context.Context, p *auth.Principal, in models.NewOrder) (*models.Order, error) {
	u, err := s.currentUser(ctx, p)
	if err != nil {
		return nil, err
	}
	if in.UserID != 0 && in.UserID != u.ID {
		return nil, deniedf("cannot place an order for another user")
	}
	if len(in.Items) == 0 {
		return nil, invalidf("order has no items")
	}
	if in.Status != "" && in.Status != models.OrderStatusPending {
		return nil, invalidf("new orders must be pending, got %q", in.Status)
	}
	items, err := s.priceItems(ctx, in)
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price)
	}
	if !in.TotalAmount.Equal(subtotal) {
		return nil, invalidf("total_amount %s does not match items subtotal %s", in.TotalAmount, subtotal)
	}

	scope := strconv.FormatInt(u.ID, 10)
	locked := false
	if in.IdempotencyKey != "" && s.idem != nil {
		if o, err := s.recallOrder(ctx, scope, in.IdempotencyKey); err != nil || o != nil {
			return o, err
		}
		ok, err := s.idem.TryLock(ctx, scope, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn("idempotency store unavailable, placing without it", "err", err)
		case !ok:
			if o, err := s.recallOrder(ctx, scope, in.IdempotencyKey); err != nil || o != nil {
				return o, err
			}
			return nil, conflictf("an order with this idempotency key is already in progress")
		default:
			locked = true
		}
	}

	created, err := s.orders.Create(ctx, &models.Order{
		UserID:       u.ID,
		RestaurantID: in.RestaurantID,
		Items:        items,
		TotalAmount:  subtotal,
		DeliveryFee:  DeliveryFee,
		Status:       models.OrderStatusPending,
	})
	if err != nil {
		if locked {
			_ = s.idem.Release(ctx, scope, in.IdempotencyKey)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	if locked {
		if err := s.idem.Remember(ctx, scope, in.IdempotencyKey, created.ID); err != nil {
			s.log.Warn("remember idempotency key", "order_id", created.ID, "err", err)
		}
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info("order placed", "order_id", created.ID, "user_id", u.ID, "restaurant_id", created.RestaurantID, "total", created.ChargedTotal().StringFixed(2))
	s.publish(ctx, created)
	return created, nil
}

// priceItems checks every line against the restaurant's menu and returns the canonical snapshot.
func (s *Service) priceItems(ctx context.Context, in models.NewOrder) ([]models.OrderItem, error) {
	r, err := s.restaurants.GetByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if r == nil {
		return nil, notFoundf("restaurant %d", in.RestaurantID)
	}
	menu := make(map[int64]models.MenuItem, len(r.MenuItems))
	for _, mi := range r.MenuItems {
		menu[mi.ID] = mi
	}
	out := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.RestaurantID != 0 && it.RestaurantID != in.RestaurantID {
			return nil, invalidf("items from more than one restaurant (%d and %d)", in.RestaurantID, it.RestaurantID)
		}
		mi, ok := menu[it.MenuItemID]
		if !ok {
			return nil, invalidf("menu item %d is not offered by restaurant %d", it.MenuItemID, in.RestaurantID)
		}
		if !it.Price.Equal(mi.Price) {
			return nil, conflictf("price of %q changed from %s to %s", mi.Name, it.Price, mi.Price)
		}
		out = append(out, models.OrderItem{
			MenuItemID:   mi.ID,
			RestaurantID: r.ID,
			Name:         mi.Name,
			Description:  mi.Description,
			Price:        mi.Price,
		})
	}
	return out, nil
}

func (s *Service) recallOrder(ctx context.Context, scope, key string) (*models.Order, error) {
	id, found, err := s.idem.Recall(ctx, scope, key)
	if err != nil {
		s.log.Warn("idempotency recall failed", "err", err)
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetOrder returns an order visible to the caller: its owner or an admin.
func (s *Service) GetOrder(ctx context.Context, p *auth.Principal, id string) (*models.Order, error) {
	u, err := s.currentUser(ctx, p)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, invalidf("order id is required")
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if o == nil {
		return nil, notFoundf("order %s", id)
	}
	if o.UserID != u.ID && !u.IsAdmin() {
		return nil, deniedf("cannot read another user's order")
	}
	return o, nil
}

// ListOrders returns the caller's orders, newest first, one page at a time.
// nextToken is empty on the last page.
func (s *Service) ListOrders(ctx context.Context, p *auth.Principal, pageSize int, pageToken string) ([]models.Order, string, error) {
	u, err := s.currentUser(ctx, p)
	if err != nil {
		return nil, "", err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	var afterCreated, afterID string
	if pageToken != "" {
		if afterCreated, afterID, err = decodeCursor(pageToken); err != nil {
			return nil, "", invalidf("invalid page_token: %v", err)
		}
	}
	list, err := s.orders.ListByUserIDPage(ctx, u.ID, pageSize, afterCreated, afterID)
	if err != nil {
		return nil, "", fmt.Errorf("list orders: %w", err)
	}
	next := ""
	if len(list) == pageSize {
		last := list[len(list)-1]
		next = encodeCursor(last.CreatedAt, last.ID)
	}
	return list, next, nil
}

// WatchOrder subscribes to updates for one order and returns the current snapshot.
// The subscription is opened before the snapshot is read so no update falls in between;
// callers forward only updates whose Version is newer than the snapshot's.
func (s *Service) WatchOrder(ctx context.Context, p *auth.Principal, id string, buffer int) (*realtime.Subscription, *models.Order, error) {
	sub := s.hub.Subscribe(id, buffer)
	o, err := s.GetOrder(ctx, p, id)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	return sub, o, nil
}

func (s *Service) publish(ctx context.Context, o *models.Order) {
	if err := s.pub.PublishOrder(ctx, *o); err != nil {
		s.log.Warn("publish order update", "order_id", o.ID, "version", o.Version, "err", err)
	}
}
