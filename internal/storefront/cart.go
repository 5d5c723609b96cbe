package storefront

import (
	"sync"

	"github.com/shopspring/decimal"

	"quickDeliver/models"
)

// DeliveryFee is the flat fee added to every non-empty cart.
var DeliveryFee = decimal.RequireFromString("3.99")

// CartLine is a menu item copied at selection time plus its restaurant.
type CartLine struct {
	MenuItemID   int64
	RestaurantID int64
	Name         string
	Description  string
	Price        decimal.Decimal
}

// OrderItem converts the line to the persisted order snapshot.
func (l CartLine) OrderItem() models.OrderItem {
	return models.OrderItem{
		MenuItemID:   l.MenuItemID,
		RestaurantID: l.RestaurantID,
		Name:         l.Name,
		Description:  l.Description,
		Price:        l.Price,
	}
}

// Cart is an ordered, client-local list of lines. Safe for concurrent use.
type Cart struct {
	mu    sync.Mutex
	lines []CartLine
	rev   uint64
}

// Add appends item as a new line. Adding the same item twice yields two lines.
func (c *Cart) Add(item models.MenuItem, restaurantID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, CartLine{
		MenuItemID:   item.ID,
		RestaurantID: restaurantID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
	})
	c.rev++
}

// Remove drops the line at pos; later lines shift down. Out of range is a no-op.
func (c *Cart) Remove(pos int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.lines) {
		return false
	}
	c.lines = append(c.lines[:pos:pos], c.lines[pos+1:]...)
	c.rev++
	return true
}

// Subtotal is the sum of line prices.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal()
}

func (c *Cart) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Price)
	}
	return sum
}

// DeliveryFee is DeliveryFee for a non-empty cart and zero otherwise.
func (c *Cart) DeliveryFee() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fee()
}

func (c *Cart) fee() decimal.Decimal {
	if len(c.lines) == 0 {
		return decimal.Zero
	}
	return DeliveryFee
}

// Total is Subtotal plus DeliveryFee.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotal().Add(c.fee())
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CartLine(nil), c.lines...)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) > 0 {
		c.lines = nil
		c.rev++
	}
}

// RestaurantIDs lists the distinct restaurants in first-seen order.
func (c *Cart) RestaurantIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[int64]bool)
	var out []int64
	for _, l := range c.lines {
		if !seen[l.RestaurantID] {
			seen[l.RestaurantID] = true
			out = append(out, l.RestaurantID)
		}
	}
	return out
}

// CartSnapshot is a consistent copy of the cart taken under one lock.
type CartSnapshot struct {
	Lines       []CartLine
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Revision    uint64
}

// Snapshot copies the cart and its amounts atomically.
func (c *Cart) Snapshot() CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, fee := c.subtotal(), c.fee()
	return CartSnapshot{
		Lines:       append([]CartLine(nil), c.lines...),
		Subtotal:    sub,
		DeliveryFee: fee,
		Total:       sub.Add(fee),
		Revision:    c.rev,
	}
}

// clearIf empties the cart only if it has not changed since rev.
func (c *Cart) clearIf(rev uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rev != rev {
		return false
	}
	c.lines = nil
	c.rev++
	return true
}
