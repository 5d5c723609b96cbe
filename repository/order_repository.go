package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quickDeliver/internal/db"
	"quickDeliver/models"
)

// OrderRepository is the core repository for Order entities.
type OrderRepository struct {
	db *db.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(d *db.DB) *OrderRepository {
	return &OrderRepository{db: d}
}

const orderColumns = `id, user_id, restaurant_id, items, total_amount, delivery_fee, status, driver_name, estimated_delivery, version, created_at, updated_at`

// ErrStaleVersion is returned by Update when ExpectVersion no longer matches the stored row.
var ErrStaleVersion = errors.New("order version changed")

// OrderChange lists the externally driven fields of an order. Nil fields are left untouched.
// A non-zero ExpectVersion makes the update conditional on the stored version.
type OrderChange struct {
	Status            *models.OrderStatus
	DriverName        *string
	EstimatedDelivery *string
	ExpectVersion     int64
}

// Empty reports whether the change would not touch any column.
func (c OrderChange) Empty() bool {
	return c.Status == nil && c.DriverName == nil && c.EstimatedDelivery == nil
}

// Create inserts a new order. The id is generated when empty, status defaults to 'pending'
// and version starts at 1. Returns the stored row.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	rec := *o
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = models.OrderStatusPending
	}
	rec.Version = 1
	rec.CreatedAt = timestamp()
	rec.UpdatedAt = rec.CreatedAt
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO orders (id, user_id, restaurant_id, items, total_amount, delivery_fee, status, driver_name, estimated_delivery, version, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`),
		rec.ID, rec.UserID, rec.RestaurantID, string(items), rec.TotalAmount, rec.DeliveryFee, string(rec.Status),
		rec.DriverName, rec.EstimatedDelivery, rec.Version, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	stored, err := r.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("created order not found: id=%s", rec.ID)
	}
	return stored, nil
}

// GetByID fetches an order by its ID. Returns (nil, nil) when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// ListByUserIDPage returns a page of orders for a user ordered by created_at desc, id desc.
// Uses keyset pagination with the (created_at, id) of the last row of the previous page.
func (r *OrderRepository) ListByUserIDPage(ctx context.Context, userID int64, pageSize int, afterCreated, afterID string) ([]models.Order, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rows *sql.Rows
	var err error
	if afterCreated != "" && afterID != "" {
		rows, err = r.db.QueryContext(ctx, r.db.Rebind(`
SELECT `+orderColumns+`
FROM orders
WHERE user_id = ?
  AND (created_at < ? OR (created_at = ? AND id < ?))
ORDER BY created_at DESC, id DESC
LIMIT ?`), userID, afterCreated, afterCreated, afterID, pageSize)
	} else {
		rows, err = r.db.QueryContext(ctx, r.db.Rebind(`
SELECT `+orderColumns+`
FROM orders
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`), userID, pageSize)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies ch to the order, bumps version and updated_at, and returns the new row.
// Returns (nil, nil) when the order does not exist and ErrStaleVersion when
// ch.ExpectVersion is set and the row has moved on.
func (r *OrderRepository) Update(ctx context.Context, id string, ch OrderChange) (*models.Order, error) {
	if ch.Empty() {
		return r.GetByID(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sets := []string{"version = version + 1", "updated_at = ?"}
	args := []any{timestamp()}
	if ch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*ch.Status))
	}
	if ch.DriverName != nil {
		sets = append(sets, "driver_name = ?")
		args = append(args, nullIfEmpty(*ch.DriverName))
	}
	if ch.EstimatedDelivery != nil {
		sets = append(sets, "estimated_delivery = ?")
		args = append(args, nullIfEmpty(*ch.EstimatedDelivery))
	}
	where := "id = ?"
	args = append(args, id)
	if ch.ExpectVersion != 0 {
		where += " AND version = ?"
		args = append(args, ch.ExpectVersion)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE `+where), args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if ch.ExpectVersion == 0 {
			return nil, nil
		}
		cur, err := r.GetByID(ctx, id)
		if err != nil || cur == nil {
			return nil, err
		}
		return nil, ErrStaleVersion
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus sets the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	return r.Update(ctx, id, OrderChange{Status: &status})
}

// AssignDriver sets the driver name and the estimated delivery label. An empty eta clears it.
func (r *OrderRepository) AssignDriver(ctx context.Context, id, driverName, eta string) (*models.Order, error) {
	return r.Update(ctx, id, OrderChange{DriverName: &driverName, EstimatedDelivery: &eta})
}

// Delete removes an order by ID.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM orders WHERE id = ?`), id)
	return err
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status string
	var items []byte
	var driver, eta sql.NullString
	if err := row.Scan(&o.ID, &o.UserID, &o.RestaurantID, &items, &o.TotalAmount, &o.DeliveryFee, &status,
		&driver, &eta, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
		}
	}
	if driver.Valid {
		v := driver.String
		o.DriverName = &v
	}
	if eta.Valid {
		v := eta.String
		o.EstimatedDelivery = &v
	}
	return &o, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
