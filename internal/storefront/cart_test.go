package storefront

import (
	"testing"

	"github.com/shopspring/decimal"

	"quickDeliver/models"
)

func item(id int64, name, price string) models.MenuItem {
	return models.MenuItem{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestCartTotals(t *testing.T) {
	var c Cart
	if !c.Subtotal().IsZero() || !c.DeliveryFee().IsZero() || !c.Total().IsZero() {
		t.Fatalf("empty cart must be all zero: %s %s %s", c.Subtotal(), c.DeliveryFee(), c.Total())
	}
	c.Add(item(1, "Burger", "8.00"), 1)
	c.Add(item(2, "Fries", "3.00"), 1)
	if got := c.Subtotal().StringFixed(2); got != "11.00" {
		t.Fatalf("subtotal=%s", got)
	}
	if got := c.DeliveryFee().StringFixed(2); got != "3.99" {
		t.Fatalf("fee=%s", got)
	}
	if got := c.Total().StringFixed(2); got != "14.99" {
		t.Fatalf("total=%s", got)
	}
}

func TestCartAddKeepsDuplicates(t *testing.T) {
	var c Cart
	it := item(1, "Soda", "1.50")
	c.Add(it, 4)
	c.Add(it, 4)
	if c.Len() != 2 {
		t.Fatalf("len=%d want 2", c.Len())
	}
	if got := c.Subtotal().StringFixed(2); got != "3.00" {
		t.Fatalf("subtotal=%s", got)
	}
}

func TestCartRemove(t *testing.T) {
	var c Cart
	c.Add(item(1, "Burger", "8.00"), 1)
	c.Add(item(2, "Fries", "3.00"), 1)

	for _, pos := range []int{-1, 2, 99} {
		if c.Remove(pos) {
			t.Fatalf("Remove(%d) should be a no-op", pos)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("len=%d after no-op removes", c.Len())
	}
	if !c.Remove(0) {
		t.Fatal("Remove(0) failed")
	}
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Name != "Fries" {
		t.Fatalf("remaining lines: %+v", lines)
	}
	c.Remove(0)
	if !c.DeliveryFee().IsZero() {
		t.Fatalf("fee on emptied cart=%s", c.DeliveryFee())
	}
}

// Subtotal tracks the lines present through an arbitrary add/remove sequence.
func TestCartSubtotalInvariant(t *testing.T) {
	var c Cart
	prices := []string{"1.10", "2.25", "0.99", "10.00", "4.40"}
	ops := []int{0, 1, 2, -1, 3, -2, 4, 0, -1, -1, 1}
	for i, op := range ops {
		before := c.Len()
		if op >= 0 {
			c.Add(item(int64(op), "x", prices[op]), 1)
			if c.Len() != before+1 {
				t.Fatalf("step %d: add changed len by %d", i, c.Len()-before)
			}
		} else if c.Remove(c.Len() + op) {
			if c.Len() != before-1 {
				t.Fatalf("step %d: remove changed len by %d", i, before-c.Len())
			}
		}
		sum := decimal.Zero
		for _, l := range c.Lines() {
			sum = sum.Add(l.Price)
		}
		if !c.Subtotal().Equal(sum) {
			t.Fatalf("step %d: subtotal %s != sum %s", i, c.Subtotal(), sum)
		}
		wantFee := decimal.Zero
		if c.Len() > 0 {
			wantFee = DeliveryFee
		}
		if !c.DeliveryFee().Equal(wantFee) || !c.Total().Equal(sum.Add(wantFee)) {
			t.Fatalf("step %d: fee=%s total=%s", i, c.DeliveryFee(), c.Total())
		}
	}
}

func TestCartSnapshotAndRestaurants(t *testing.T) {
	var c Cart
	c.Add(item(1, "A", "1.00"), 3)
	c.Add(item(2, "B", "2.00"), 5)
	c.Add(item(3, "C", "3.00"), 3)
	if ids := c.RestaurantIDs(); len(ids) != 2 || ids[0] != 3 || ids[1] != 5 {
		t.Fatalf("restaurant ids=%v", ids)
	}
	snap := c.Snapshot()
	c.Clear()
	if len(snap.Lines) != 3 || snap.Total.StringFixed(2) != "9.99" {
		t.Fatalf("snapshot=%+v", snap)
	}
	if c.Len() != 0 {
		t.Fatal("clear left lines behind")
	}
	if c.clearIf(snap.Revision) {
		t.Fatal("clearIf must refuse a stale revision")
	}
}
