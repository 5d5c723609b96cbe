// Package storefront is the client core of QuickDeliver: session mirror,
// catalog snapshot, cart, order submission and the live order tracker.
// It talks to the backend only through AuthClient and DataClient.
package storefront

import (
	"context"

	"quickDeliver/models"
)

// Session is the signed-in identity as seen by the client.
type Session struct {
	UserID int64
	Email  string
	Token  string
}

// AuthClient is the authentication collaborator.
type AuthClient interface {
	CurrentSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn for every sign-in or sign-out and returns an unsubscribe func.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
}

// DataClient is the storage and change-notification collaborator.
type DataClient interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	InsertOrder(ctx context.Context, o models.NewOrder) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	SubscribeOrder(ctx context.Context, id string) (Subscription, error)
}

// Subscription delivers pushed snapshots of one order. Updates is closed when
// the subscription ends; Err then reports why (nil after Close).
type Subscription interface {
	Updates() <-chan models.Order
	Err() error
	Close() error
}
