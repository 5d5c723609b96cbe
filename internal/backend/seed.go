package backend

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"quickDeliver/models"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func coord(v float64) *float64 { return &v }

// demoCatalog is loaded by Seed into an empty database.
var demoCatalog = []models.Restaurant{
	{
		Name: "Burger Palace", CuisineType: "American", DeliveryTime: 25, Distance: "1.2 km", Icon: "🍔",
		Lat: coord(40.7411), Lng: coord(-73.9897),
		MenuItems: []models.MenuItem{
			{Name: "Classic Burger", Description: "Beef patty, lettuce, tomato, house sauce", Price: price("9.99")},
			{Name: "Cheese Fries", Description: "Crispy fries with cheddar", Price: price("4.50")},
			{Name: "Vanilla Shake", Description: "Thick and creamy", Price: price("3.75")},
		},
	},
	{
		Name: "Pizza Napoli", CuisineType: "Italian", DeliveryTime: 35, Distance: "2.5 km", Icon: "🍕",
		Lat: coord(40.7306), Lng: coord(-73.9866),
		MenuItems: []models.MenuItem{
			{Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: price("11.00")},
			{Name: "Diavola", Description: "Spicy salami, chili oil", Price: price("13.50")},
		},
	},
	{
		Name: "Sakura Sushi", CuisineType: "Japanese", DeliveryTime: 40, Distance: "3.1 km", Icon: "🍣",
		Lat: coord(40.7527), Lng: coord(-73.9772),
		MenuItems: []models.MenuItem{
			{Name: "Salmon Nigiri", Description: "Two pieces", Price: price("6.25")},
			{Name: "California Roll", Description: "Crab, avocado, cucumber", Price: price("8.00")},
			{Name: "Miso Soup", Price: price("2.50")},
		},
	},
	{
		Name: "Green Bowl", CuisineType: "Healthy", DeliveryTime: 20, Distance: "0.8 km",
		MenuItems: []models.MenuItem{
			{Name: "Quinoa Salad", Description: "Quinoa, chickpeas, feta", Price: price("10.25")},
		},
	},
}

// Seed loads the demo catalog when no restaurant exists yet. It returns the number of restaurants created.
func (s *Service) Seed(ctx context.Context) (int, error) {
	existing, err := s.restaurants.ListWithMenu(ctx)
	if err != nil {
		return 0, fmt.Errorf("list restaurants: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range demoCatalog {
		r := demoCatalog[i]
		if _, err := s.restaurants.Create(ctx, &r); err != nil {
			return i, fmt.Errorf("seed %s: %w", r.Name, err)
		}
	}
	s.log.Info("demo catalog seeded", "restaurants", len(demoCatalog))
	return len(demoCatalog), nil
}
