package storefront

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"quickDeliver/models"
)

// DefaultETA is shown when a driver is assigned without an estimate.
const DefaultETA = "20-30 mins"

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// RenderHeader shows the brand and the signed-in email, if any.
func RenderHeader(sess *Session) string {
	if sess == nil {
		return "🚚 QuickDeliver                [Sign In]"
	}
	return fmt.Sprintf("🚚 QuickDeliver    %s  [Sign Out]", sess.Email)
}

// RenderRestaurantCard renders one catalog entry with its numbered menu.
func RenderRestaurantCard(r models.Restaurant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  (#%d)\n", r.DisplayIcon(), r.Name, r.ID)
	if r.CuisineType != "" {
		fmt.Fprintf(&b, "   %s\n", r.CuisineType)
	}
	fmt.Fprintf(&b, "   ⏱️ %d mins • 📍 %s\n", r.DeliveryTime, r.Distance)
	if len(r.MenuItems) == 0 {
		return b.String()
	}
	b.WriteString("   Menu Items:\n")
	for _, it := range r.MenuItems {
		fmt.Fprintf(&b, "   [%d] %-24s %8s", it.ID, it.Name, money(it.Price))
		if it.Description != "" {
			fmt.Fprintf(&b, "  %s", it.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderCart renders the cart panel. The checkout affordance depends on the session.
func RenderCart(c CartSnapshot, signedIn bool) string {
	var b strings.Builder
	b.WriteString("Your Cart\n")
	if len(c.Lines) == 0 {
		b.WriteString("   🛒 Your cart is empty\n")
		return b.String()
	}
	for i, l := range c.Lines {
		fmt.Fprintf(&b, "   %d. %-24s %8s  ✕\n", i, l.Name, money(l.Price))
	}
	fmt.Fprintf(&b, "   Subtotal:     %10s\n", money(c.Subtotal))
	fmt.Fprintf(&b, "   Delivery Fee: %10s\n", money(c.DeliveryFee))
	fmt.Fprintf(&b, "   Total:        %10s\n", money(c.Total))
	if signedIn {
		b.WriteString("   [Place Order]\n")
	} else {
		b.WriteString("   [Sign in to Order]\n")
	}
	return b.String()
}

// RenderTracker renders the tracking panel for an order snapshot.
func RenderTracker(o models.Order) string {
	var b strings.Builder
	b.WriteString("Order Tracking\n")
	fmt.Fprintf(&b, "   Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "   Total: %s\n", money(o.ChargedTotal()))
	p := DeriveProgress(o.Status)
	for _, s := range p.Steps {
		mark := "[ ]"
		if s.Active {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "   %s %s %s", mark, s.Icon, s.Label)
		if s.Current {
			b.WriteString("  In Progress...")
		}
		b.WriteByte('\n')
	}
	if p.Index < 0 {
		fmt.Fprintf(&b, "   Status: %s\n", o.Status)
	}
	if o.DriverName != nil && *o.DriverName != "" {
		eta := DefaultETA
		if o.EstimatedDelivery != nil && *o.EstimatedDelivery != "" {
			eta = *o.EstimatedDelivery
		}
		b.WriteString("   Your Driver\n")
		fmt.Fprintf(&b, "   %s\n", *o.DriverName)
		fmt.Fprintf(&b, "   ETA: %s\n", eta)
	}
	return b.String()
}
