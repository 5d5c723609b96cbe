package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/geo"
	"quickDeliver/models"
)

// ListRestaurants returns every restaurant with its menu. When origin is set,
// restaurants that carry coordinates get their distance label computed from it.
func (s *Service) ListRestaurants(ctx context.Context, origin *geo.Point) ([]models.Restaurant, error) {
	list, err := s.restaurants.ListWithMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	if origin != nil && origin.Valid() {
		for i := range list {
			r := &list[i]
			if r.Lat == nil || r.Lng == nil {
				continue
			}
			if label, ok := geo.DistanceLabel(*origin, geo.Point{Lat: *r.Lat, Lng: *r.Lng}); ok {
				r.Distance = label
			}
		}
	}
	return list, nil
}

// CreateRestaurant adds a restaurant (and any menu items it carries). Admin only.
func (s *Service) CreateRestaurant(ctx context.Context, p *auth.Principal, r models.Restaurant) (*models.Restaurant, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return nil, invalidf("restaurant name is required")
	}
	if r.DeliveryTime < 0 {
		return nil, invalidf("delivery_time must not be negative")
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return nil, invalidf("lat and lng must be set together")
	}
	if r.Lat != nil && !(geo.Point{Lat: *r.Lat, Lng: *r.Lng}).Valid() {
		return nil, invalidf("coordinates out of range")
	}
	for _, it := range r.MenuItems {
		if err := validateMenuItem(it); err != nil {
			return nil, err
		}
	}
	created, err := s.restaurants.Create(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	s.log.Info("restaurant created", "restaurant_id", created.ID, "items", len(created.MenuItems))
	return created, nil
}

// AddMenuItem appends a menu item to an existing restaurant. Admin only.
func (s *Service) AddMenuItem(ctx context.Context, p *auth.Principal, item models.MenuItem) (*models.MenuItem, error) {
	if _, err := s.requireAdmin(ctx, p); err != nil {
		return nil, err
	}
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}
	r, err := s.restaurants.GetByID(ctx, item.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	if r == nil {
		return nil, notFoundf("restaurant %d", item.RestaurantID)
	}
	created, err := s.restaurants.AddMenuItem(ctx, &item)
	if err != nil {
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	return created, nil
}

func validateMenuItem(it models.MenuItem) error {
	if strings.TrimSpace(it.Name) == "" {
		return invalidf("menu item name is required")
	}
	if it.Price.LessThan(decimal.Zero) {
		return invalidf("menu item %q has a negative price", it.Name)
	}
	return nil
}
