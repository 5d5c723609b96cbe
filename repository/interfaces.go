package repository

import (
	"context"

	"quickDeliver/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// RestaurantRepositoryI defines operations on the catalog.
type RestaurantRepositoryI interface {
	Create(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error)
	AddMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	GetByID(ctx context.Context, id int64) (*models.Restaurant, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	ListWithMenu(ctx context.Context) ([]models.Restaurant, error)
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUserIDPage(ctx context.Context, userID int64, pageSize int, afterCreated, afterID string) ([]models.Order, error)
	Update(ctx context.Context, id string, ch OrderChange) (*models.Order, error)
}

var (
	_ UserRepositoryI       = (*UserRepository)(nil)
	_ RestaurantRepositoryI = (*RestaurantRepository)(nil)
	_ OrderRepositoryI      = (*OrderRepository)(nil)
)
