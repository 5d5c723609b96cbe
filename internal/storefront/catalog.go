package storefront

import (
	"context"
	"fmt"
	"sync"

	"quickDeliver/models"
)

// Catalog holds the last loaded restaurant list. There is no caching policy
// beyond that single snapshot.
type Catalog struct {
	data DataClient

	mu          sync.RWMutex
	restaurants []models.Restaurant
}

func NewCatalog(data DataClient) *Catalog {
	return &Catalog{data: data}
}

// Load fetches the catalog. On failure the previous snapshot is kept.
func (c *Catalog) Load(ctx context.Context) error {
	list, err := c.data.ListRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("load restaurants: %w", err)
	}
	c.mu.Lock()
	c.restaurants = list
	c.mu.Unlock()
	return nil
}

// Restaurants returns the current snapshot.
func (c *Catalog) Restaurants() []models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Restaurant(nil), c.restaurants...)
}

// MenuItem finds an item of a restaurant in the snapshot.
func (c *Catalog) MenuItem(restaurantID, itemID int64) (models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.restaurants {
		if r.ID != restaurantID {
			continue
		}
		for _, it := range r.MenuItems {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return models.MenuItem{}, false
}
