package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quickDeliver/internal/testutil"
	"quickDeliver/models"
)

func seedCustomerAndRestaurant(t *testing.T, ctx context.Context, users *UserRepository, rests *RestaurantRepository) (*models.User, *models.Restaurant) {
	t.Helper()
	u, err := users.Create(ctx, "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	r, err := rests.Create(ctx, &models.Restaurant{
		Name:      "Burger Joint",
		MenuItems: []models.MenuItem{{Name: "Cheeseburger", Price: decimal.RequireFromString("9.99")}},
	})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	return u, r
}

func TestOrderRepository_CreateGetUpdate(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "orderrepo")
	orders := NewOrderRepository(d)
	ctx := context.Background()
	u, r := seedCustomerAndRestaurant(t, ctx, NewUserRepository(d), NewRestaurantRepository(d))

	item := r.MenuItems[0]
	o, err := orders.Create(ctx, &models.Order{
		UserID:       u.ID,
		RestaurantID: r.ID,
		Items: []models.OrderItem{
			{MenuItemID: item.ID, RestaurantID: r.ID, Name: item.Name, Price: item.Price},
			{MenuItemID: item.ID, RestaurantID: r.ID, Name: item.Name, Price: item.Price},
		},
		TotalAmount: decimal.RequireFromString("19.98"),
		DeliveryFee: decimal.RequireFromString("3.99"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" || o.Status != models.OrderStatusPending || o.Version != 1 || o.CreatedAt == "" {
		t.Fatalf("unexpected created order: %+v", o)
	}
	if len(o.Items) != 2 || !o.Items[1].Price.Equal(item.Price) {
		t.Fatalf("items not stored: %+v", o.Items)
	}
	if !o.ChargedTotal().Equal(decimal.RequireFromString("23.97")) {
		t.Fatalf("charged total: %s", o.ChargedTotal())
	}
	if o.DriverName != nil || o.EstimatedDelivery != nil {
		t.Fatalf("driver should be empty: %+v", o)
	}

	// Status change bumps version.
	up, err := orders.UpdateStatus(ctx, o.ID, models.OrderStatusPreparing)
	if err != nil || up == nil {
		t.Fatalf("update status: %v %+v", err, up)
	}
	if up.Status != models.OrderStatusPreparing || up.Version != 2 {
		t.Fatalf("unexpected after status update: %+v", up)
	}

	// Driver assignment with ETA.
	up, err = orders.AssignDriver(ctx, o.ID, "Dana", "15 mins")
	if err != nil || up == nil {
		t.Fatalf("assign driver: %v", err)
	}
	if up.DriverName == nil || *up.DriverName != "Dana" || up.EstimatedDelivery == nil || *up.EstimatedDelivery != "15 mins" || up.Version != 3 {
		t.Fatalf("unexpected after driver update: %+v", up)
	}

	// Empty ETA clears the column.
	up, err = orders.AssignDriver(ctx, o.ID, "Dana", "")
	if err != nil || up.EstimatedDelivery != nil {
		t.Fatalf("expected cleared eta: %v %+v", err, up)
	}

	// Empty change returns the row untouched.
	same, err := orders.Update(ctx, o.ID, OrderChange{})
	if err != nil || same.Version != up.Version {
		t.Fatalf("empty change: %v %+v", err, same)
	}

	// Conditional update: a stale version is refused and leaves the row alone.
	if _, err := orders.Update(ctx, o.ID, OrderChange{Status: statusPtr(models.OrderStatusCancelled), ExpectVersion: same.Version - 1}); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
	cas, err := orders.Update(ctx, o.ID, OrderChange{Status: statusPtr(models.OrderStatusOutForDelivery), ExpectVersion: same.Version})
	if err != nil || cas == nil || cas.Status != models.OrderStatusOutForDelivery || cas.Version != same.Version+1 {
		t.Fatalf("conditional update: %v %+v", err, cas)
	}
	if gone, err := orders.Update(ctx, "missing", OrderChange{Status: statusPtr(models.OrderStatusDelivered), ExpectVersion: 1}); err != nil || gone != nil {
		t.Fatalf("expected nil for unknown order, got %+v err=%v", gone, err)
	}

	// Unknown order
	missing, err := orders.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", models.OrderStatusDelivered)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown order, got %+v err=%v", missing, err)
	}
	if g, err := orders.GetByID(ctx, "nope"); err != nil || g != nil {
		t.Fatalf("expected nil get, got %+v err=%v", g, err)
	}

	if err := orders.Delete(ctx, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if g, _ := orders.GetByID(ctx, o.ID); g != nil {
		t.Fatalf("expected order deleted")
	}
}

func TestOrderRepository_ListByUserIDPage(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "orderpage")
	orders := NewOrderRepository(d)
	ctx := context.Background()
	u, r := seedCustomerAndRestaurant(t, ctx, NewUserRepository(d), NewRestaurantRepository(d))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	nowFunc = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	t.Cleanup(func() { nowFunc = time.Now })

	var ids []string
	for i := 0; i < 5; i++ {
		o, err := orders.Create(ctx, &models.Order{UserID: u.ID, RestaurantID: r.ID, TotalAmount: decimal.NewFromInt(int64(i))})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, o.ID)
	}

	page1, err := orders.ListByUserIDPage(ctx, u.ID, 2, "", "")
	if err != nil || len(page1) != 2 {
		t.Fatalf("page1: %v len=%d", err, len(page1))
	}
	if page1[0].ID != ids[4] || page1[1].ID != ids[3] {
		t.Fatalf("page1 should be newest first: %v", []string{page1[0].ID, page1[1].ID})
	}
	last := page1[len(page1)-1]
	page2, err := orders.ListByUserIDPage(ctx, u.ID, 2, last.CreatedAt, last.ID)
	if err != nil || len(page2) != 2 || page2[0].ID != ids[2] {
		t.Fatalf("page2: %v %+v", err, page2)
	}
	last = page2[len(page2)-1]
	page3, err := orders.ListByUserIDPage(ctx, u.ID, 2, last.CreatedAt, last.ID)
	if err != nil || len(page3) != 1 || page3[0].ID != ids[0] {
		t.Fatalf("page3: %v %+v", err, page3)
	}

	other, err := orders.ListByUserIDPage(ctx, u.ID+100, 10, "", "")
	if err != nil || len(other) != 0 {
		t.Fatalf("expected no orders for other user: %v %d", err, len(other))
	}
}

func statusPtr(s models.OrderStatus) *models.OrderStatus { return &s }
