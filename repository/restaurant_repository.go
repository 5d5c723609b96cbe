package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"quickDeliver/internal/db"
	"quickDeliver/models"
)

// RestaurantRepository stores restaurants and their menu items.
type RestaurantRepository struct {
	db *db.DB
}

// NewRestaurantRepository creates a new RestaurantRepository.
func NewRestaurantRepository(d *db.DB) *RestaurantRepository {
	return &RestaurantRepository{db: d}
}

const restaurantColumns = `id, name, cuisine_type, delivery_time, distance, icon, lat, lng`

// Create inserts a restaurant. Menu items on r are inserted as well, in order.
func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) (*models.Restaurant, error) {
	if rest == nil {
		return nil, errors.New("restaurant is nil")
	}
	if strings.TrimSpace(rest.Name) == "" {
		return nil, errors.New("restaurant name is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := *rest
	out.MenuItems = nil
	err = tx.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO restaurants (name, cuisine_type, delivery_time, distance, icon, lat, lng) VALUES (?,?,?,?,?,?,?) RETURNING id`),
		rest.Name, rest.CuisineType, rest.DeliveryTime, rest.Distance, rest.Icon, rest.Lat, rest.Lng).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	insertItem := r.db.Rebind(`INSERT INTO menu_items (restaurant_id, name, description, price) VALUES (?,?,?,?) RETURNING id`)
	for _, it := range rest.MenuItems {
		it.RestaurantID = out.ID
		if err := tx.QueryRowContext(ctx, insertItem, it.RestaurantID, it.Name, it.Description, it.Price).Scan(&it.ID); err != nil {
			return nil, err
		}
		out.MenuItems = append(out.MenuItems, it)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddMenuItem appends a menu item to an existing restaurant.
func (r *RestaurantRepository) AddMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if item == nil {
		return nil, errors.New("menu item is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := *item
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO menu_items (restaurant_id, name, description, price) VALUES (?,?,?,?) RETURNING id`),
		item.RestaurantID, item.Name, item.Description, item.Price).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID fetches a restaurant and its menu.
func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`), id)
	rest, err := scanRestaurant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT id, restaurant_id, name, description, price FROM menu_items WHERE restaurant_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, err := scanMenuItems(rows)
	if err != nil {
		return nil, err
	}
	rest.MenuItems = items
	return rest, nil
}

// GetMenuItem fetches a single menu item by id.
func (r *RestaurantRepository) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var it models.MenuItem
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT id, restaurant_id, name, description, price FROM menu_items WHERE id = ?`), id).
		Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Description, &it.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// ListWithMenu returns every restaurant ordered by id, each with its menu items ordered by id.
func (r *RestaurantRepository) ListWithMenu(ctx context.Context) ([]models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	var out []models.Restaurant
	index := map[int64]int{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[rest.ID] = len(out)
		out = append(out, *rest)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	itemRows, err := r.db.QueryContext(ctx, `SELECT id, restaurant_id, name, description, price FROM menu_items ORDER BY restaurant_id, id`)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	items, err := scanMenuItems(itemRows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if i, ok := index[it.RestaurantID]; ok {
			out[i].MenuItems = append(out[i].MenuItems, it)
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*models.Restaurant, error) {
	var rest models.Restaurant
	var lat, lng sql.NullFloat64
	if err := row.Scan(&rest.ID, &rest.Name, &rest.CuisineType, &rest.DeliveryTime, &rest.Distance, &rest.Icon, &lat, &lng); err != nil {
		return nil, err
	}
	if lat.Valid {
		v := lat.Float64
		rest.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		rest.Lng = &v
	}
	return &rest, nil
}

func scanMenuItems(rows *sql.Rows) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
