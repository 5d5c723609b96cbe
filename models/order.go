package models

import "github.com/shopspring/decimal"

// OrderStatus is the delivery progress of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	// OrderStatusCancelled is accepted by the backend but is not a progress step.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// StatusSequence is the ordered progress enumeration. Position defines progress.
var StatusSequence = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// Valid reports whether the backend accepts s as an order status.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	return s.Position() >= 0
}

// Position returns the index of s in StatusSequence, or -1 when s is not a progress step.
func (s OrderStatus) Position() int {
	for i, st := range StatusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// OrderItem is one cart line captured at submission time.
type OrderItem struct {
	MenuItemID   int64           `json:"id"`
	RestaurantID int64           `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
}

// Order is a placed purchase. After creation it is only mutated by admin calls
// or external status events; every mutation bumps Version.
type Order struct {
	ID                string          `db:"id" json:"id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	RestaurantID      int64           `db:"restaurant_id" json:"restaurant_id"`
	Items             []OrderItem     `db:"items" json:"items"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	DeliveryFee       decimal.Decimal `db:"delivery_fee" json:"delivery_fee"`
	Status            OrderStatus     `db:"status" json:"status"`
	DriverName        *string         `db:"driver_name" json:"driver_name,omitempty"`
	EstimatedDelivery *string         `db:"estimated_delivery" json:"estimated_delivery,omitempty"`
	Version           int64           `db:"version" json:"version"`
	CreatedAt         string          `db:"created_at" json:"created_at"`
	UpdatedAt         string          `db:"updated_at" json:"updated_at"`
}

// ChargedTotal is the amount shown to the customer: the persisted subtotal plus the delivery fee.
func (o *Order) ChargedTotal() decimal.Decimal {
	return o.TotalAmount.Add(o.DeliveryFee)
}

// NewOrder is the record a storefront submits. UserID is optional; when set it
// must match the caller. IdempotencyKey lets a retried submission return the
// order created by the first attempt.
type NewOrder struct {
	UserID         int64           `json:"user_id,omitempty"`
	RestaurantID   int64           `json:"restaurant_id"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         OrderStatus     `json:"status,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}
