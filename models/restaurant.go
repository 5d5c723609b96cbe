package models

import "github.com/shopspring/decimal"

// DefaultRestaurantIcon is shown when a restaurant has no icon of its own.
const DefaultRestaurantIcon = "🍔"

// Restaurant is a catalog entry with its menu.
// Lat/Lng are optional; when both are set the catalog can derive Distance
// relative to the caller's location.
type Restaurant struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	CuisineType  string     `db:"cuisine_type" json:"cuisine_type"`
	DeliveryTime int        `db:"delivery_time" json:"delivery_time"` // minutes
	Distance     string     `db:"distance" json:"distance"`
	Icon         string     `db:"icon" json:"icon"`
	Lat          *float64   `db:"lat" json:"lat,omitempty"`
	Lng          *float64   `db:"lng" json:"lng,omitempty"`
	MenuItems    []MenuItem `json:"menu_items"`
}

// DisplayIcon returns the restaurant icon or the default glyph.
func (r *Restaurant) DisplayIcon() string {
	if r == nil || r.Icon == "" {
		return DefaultRestaurantIcon
	}
	return r.Icon
}

// MenuItem belongs to exactly one restaurant and is read-only to the storefront.
type MenuItem struct {
	ID           int64           `db:"id" json:"id"`
	RestaurantID int64           `db:"restaurant_id" json:"restaurant_id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
}
