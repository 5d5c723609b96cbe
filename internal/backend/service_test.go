package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/cache"
	"quickDeliver/internal/geo"
	"quickDeliver/internal/logging"
	"quickDeliver/internal/testutil"
	"quickDeliver/models"
	"quickDeliver/repository"
)

const testSecret = "backend-test-secret"

type fixture struct {
	svc      *Service
	users    *repository.UserRepository
	customer *auth.Principal
	other    *auth.Principal
	admin    *auth.Principal
	pizza    *models.Restaurant
	sushi    *models.Restaurant
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	users := repository.NewUserRepository(d)
	rests := repository.NewRestaurantRepository(d)
	svc, err := New(Options{
		Users:       users,
		Restaurants: rests,
		Orders:      repository.NewOrderRepository(d),
		Idempotency: cache.NewMemoryIdempotencyStore(time.Hour),
		JWTSecret:   testSecret,
		Logger:      logging.Discard(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	f := &fixture{svc: svc, users: users}
	f.customer = f.signUp(t, "carol@example.com")
	f.other = f.signUp(t, "dave@example.com")
	f.admin = f.signUp(t, "root@example.com")
	if err := svc.PromoteAdmin(ctx, "root@example.com"); err != nil {
		t.Fatalf("promote admin: %v", err)
	}

	lat, lng := 40.0, -73.0
	f.pizza, err = svc.CreateRestaurant(ctx, f.admin, models.Restaurant{
		Name: "Pizza", Lat: &lat, Lng: &lng,
		MenuItems: []models.MenuItem{
			{Name: "Margherita", Price: decimal.RequireFromString("10.00")},
			{Name: "Calzone", Price: decimal.RequireFromString("12.50")},
		},
	})
	if err != nil {
		t.Fatalf("create pizza: %v", err)
	}
	f.sushi, err = svc.CreateRestaurant(ctx, f.admin, models.Restaurant{
		Name:      "Sushi",
		MenuItems: []models.MenuItem{{Name: "Roll", Price: decimal.RequireFromString("7.25")}},
	})
	if err != nil {
		t.Fatalf("create sushi: %v", err)
	}
	return f
}

func (f *fixture) signUp(t *testing.T, email string) *auth.Principal {
	t.Helper()
	sess, err := f.svc.SignUp(context.Background(), email, "password123")
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	p, err := auth.ParseToken(sess.Token, testSecret)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	return p
}

func line(r *models.Restaurant, i int) models.OrderItem {
	mi := r.MenuItems[i]
	return models.OrderItem{MenuItemID: mi.ID, RestaurantID: r.ID, Name: mi.Name, Price: mi.Price}
}

func (f *fixture) newOrder(items ...models.OrderItem) models.NewOrder {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return models.NewOrder{RestaurantID: items[0].RestaurantID, Items: items, TotalAmount: total, Status: models.OrderStatusPending}
}

func TestSignUpSignInAndSession(t *testing.T) {
	f := newFixture(t, "svc_auth")
	ctx := context.Background()

	if _, err := f.svc.SignUp(ctx, "Carol@Example.com", "password123"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
	if _, err := f.svc.SignUp(ctx, "not-an-email", "password123"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad email, got %v", err)
	}
	if _, err := f.svc.SignUp(ctx, "eve@example.com", "123"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short password, got %v", err)
	}

	sess, err := f.svc.SignIn(ctx, "carol@example.com", "password123")
	if err != nil || sess.Token == "" || sess.User.ID != f.customer.UserID {
		t.Fatalf("sign in: %v %+v", err, sess)
	}
	if _, err := f.svc.SignIn(ctx, "carol@example.com", "wrong-password"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.SignIn(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown user, got %v", err)
	}

	u, err := f.svc.GetSession(ctx, f.customer)
	if err != nil || u.Email != "carol@example.com" {
		t.Fatalf("get session: %v %+v", err, u)
	}
	if _, err := f.svc.GetSession(ctx, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for nil principal, got %v", err)
	}
	if err := f.svc.PromoteAdmin(ctx, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound promoting unknown user, got %v", err)
	}
}

func TestPlaceOrder_PersistsAndPublishes(t *testing.T) {
	f := newFixture(t, "svc_place")
	ctx := context.Background()

	in := f.newOrder(line(f.pizza, 0), line(f.pizza, 1), line(f.pizza, 0))
	o, err := f.svc.PlaceOrder(ctx, f.customer, in)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if o.Status != models.OrderStatusPending || o.UserID != f.customer.UserID || o.RestaurantID != f.pizza.ID {
		t.Fatalf("unexpected order: %+v", o)
	}
	if !o.TotalAmount.Equal(decimal.RequireFromString("32.50")) || !o.DeliveryFee.Equal(DeliveryFee) {
		t.Fatalf("amounts: total=%s fee=%s", o.TotalAmount, o.DeliveryFee)
	}
	if !o.ChargedTotal().Equal(decimal.RequireFromString("36.49")) {
		t.Fatalf("charged total: %s", o.ChargedTotal())
	}
	if len(o.Items) != 3 || o.Items[2].Name != "Margherita" {
		t.Fatalf("items snapshot: %+v", o.Items)
	}
	last, ok := f.svc.Hub().Last(o.ID)
	if !ok || last.Version != 1 {
		t.Fatalf("expected hub snapshot after placing, got %+v ok=%v", last, ok)
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	f := newFixture(t, "svc_reject")
	ctx := context.Background()

	cases := []struct {
		name string
		p    *auth.Principal
		in   models.NewOrder
		want error
	}{
		{"no principal", nil, f.newOrder(line(f.pizza, 0)), ErrUnauthenticated},
		{"empty", f.customer, models.NewOrder{RestaurantID: f.pizza.ID}, ErrInvalidArgument},
		{"mixed restaurants", f.customer, f.newOrder(line(f.pizza, 0), line(f.sushi, 0)), ErrInvalidArgument},
		{"other user", f.customer, func() models.NewOrder {
			in := f.newOrder(line(f.pizza, 0))
			in.UserID = f.other.UserID
			return in
		}(), ErrPermissionDenied},
		{"wrong total", f.customer, func() models.NewOrder {
			in := f.newOrder(line(f.pizza, 0))
			in.TotalAmount = decimal.RequireFromString("1.00")
			return in
		}(), ErrInvalidArgument},
		{"stale price", f.customer, func() models.NewOrder {
			it := line(f.pizza, 0)
			it.Price = decimal.RequireFromString("9.00")
			return f.newOrder(it)
		}(), ErrConflict},
		{"unknown item", f.customer, func() models.NewOrder {
			it := line(f.pizza, 0)
			it.MenuItemID = 9999
			return f.newOrder(it)
		}(), ErrInvalidArgument},
		{"not pending", f.customer, func() models.NewOrder {
			in := f.newOrder(line(f.pizza, 0))
			in.Status = models.OrderStatusDelivered
			return in
		}(), ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.PlaceOrder(ctx, tc.p, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
	list, _, err := f.svc.ListOrders(ctx, f.customer, 10, "")
	if err != nil || len(list) != 0 {
		t.Fatalf("rejected orders must not be stored: %v len=%d", err, len(list))
	}
}

func TestPlaceOrder_Idempotent(t *testing.T) {
	f := newFixture(t, "svc_idem")
	ctx := context.Background()

	in := f.newOrder(line(f.sushi, 0))
	in.IdempotencyKey = "key-1"
	first, err := f.svc.PlaceOrder(ctx, f.customer, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.svc.PlaceOrder(ctx, f.customer, in)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("retry created a new order: %s vs %s", first.ID, second.ID)
	}
	// Same key from another user is a different scope.
	third, err := f.svc.PlaceOrder(ctx, f.other, in)
	if err != nil || third.ID == first.ID {
		t.Fatalf("other user: %v %+v", err, third)
	}
	list, _, _ := f.svc.ListOrders(ctx, f.customer, 10, "")
	if len(list) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(list))
	}
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture(t, "svc_list")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		o, err := f.svc.PlaceOrder(ctx, f.customer, f.newOrder(line(f.pizza, 0)))
		if err != nil {
			t.Fatalf("place %d: %v", i, err)
		}
		ids = append(ids, o.ID)
	}
	if _, err := f.svc.GetOrder(ctx, f.other, ids[0]); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for other user, got %v", err)
	}
	if o, err := f.svc.GetOrder(ctx, f.admin, ids[0]); err != nil || o.ID != ids[0] {
		t.Fatalf("admin read: %v", err)
	}
	if _, err := f.svc.GetOrder(ctx, f.customer, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	seen := map[string]bool{}
	token := ""
	for page := 0; page < 3; page++ {
		list, next, err := f.svc.ListOrders(ctx, f.customer, 2, token)
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		for _, o := range list {
			seen[o.ID] = true
		}
		if next == "" {
			break
		}
		token = next
	}
	if len(seen) != 3 {
		t.Fatalf("pagination saw %d orders, want 3", len(seen))
	}
	if _, _, err := f.svc.ListOrders(ctx, f.customer, 2, "%%%"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad token, got %v", err)
	}
}

func TestWatchOrderAndAdminUpdates(t *testing.T) {
	f := newFixture(t, "svc_watch")
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, f.customer, f.newOrder(line(f.pizza, 1)))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, _, err := f.svc.WatchOrder(ctx, f.other, o.ID, 4); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied watching another user's order, got %v", err)
	}
	sub, snap, err := f.svc.WatchOrder(ctx, f.customer, o.ID, 4)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer sub.Close()
	if snap.Version != 1 {
		t.Fatalf("snapshot version %d", snap.Version)
	}

	if _, err := f.svc.UpdateOrderStatus(ctx, f.customer, o.ID, models.OrderStatusConfirmed); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected customer to be denied, got %v", err)
	}
	if _, err := f.svc.UpdateOrderStatus(ctx, f.admin, o.ID, "teleported"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	up, err := f.svc.UpdateOrderStatus(ctx, f.admin, o.ID, models.OrderStatusOutForDelivery)
	if err != nil || up.Version != 2 {
		t.Fatalf("update status: %v %+v", err, up)
	}
	up, err = f.svc.AssignDriver(ctx, f.admin, o.ID, " Sam ", "")
	if err != nil || up.DriverName == nil || *up.DriverName != "Sam" || up.EstimatedDelivery != nil {
		t.Fatalf("assign driver: %v %+v", err, up)
	}
	if _, err := f.svc.AssignDriver(ctx, f.admin, o.ID, "  ", "5 mins"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected driver name required, got %v", err)
	}

	for _, want := range []int64{2, 3} {
		select {
		case got := <-sub.C:
			if got.Version != want {
				t.Fatalf("got version %d, want %d", got.Version, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for version %d", want)
		}
	}

	if _, err := f.svc.ApplyStatusChange(ctx, StatusChange{OrderID: o.ID, Status: models.OrderStatusDelivered}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if _, err := f.svc.ApplyStatusChange(ctx, StatusChange{OrderID: o.ID, Status: models.OrderStatusPreparing}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict after delivery, got %v", err)
	}
	if _, err := f.svc.ApplyStatusChange(ctx, StatusChange{OrderID: "missing", Status: models.OrderStatusPreparing}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.ApplyStatusChange(ctx, StatusChange{OrderID: o.ID}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty change, got %v", err)
	}
}

func TestCatalogAdminAndSeed(t *testing.T) {
	f := newFixture(t, "svc_catalog")
	ctx := context.Background()

	if _, err := f.svc.CreateRestaurant(ctx, f.customer, models.Restaurant{Name: "Nope"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected customer denied, got %v", err)
	}
	if _, err := f.svc.CreateRestaurant(ctx, f.admin, models.Restaurant{Name: " "}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected name required, got %v", err)
	}
	item, err := f.svc.AddMenuItem(ctx, f.admin, models.MenuItem{RestaurantID: f.sushi.ID, Name: "Tempura", Price: decimal.RequireFromString("9.00")})
	if err != nil || item.ID == 0 {
		t.Fatalf("add menu item: %v %+v", err, item)
	}
	if _, err := f.svc.AddMenuItem(ctx, f.admin, models.MenuItem{RestaurantID: 9999, Name: "X", Price: decimal.NewFromInt(1)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown restaurant, got %v", err)
	}
	if _, err := f.svc.AddMenuItem(ctx, f.admin, models.MenuItem{RestaurantID: f.sushi.ID, Name: "X", Price: decimal.NewFromInt(-1)}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected negative price rejected, got %v", err)
	}

	list, err := f.svc.ListRestaurants(ctx, &geo.Point{Lat: 40.0, Lng: -73.01})
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if list[0].Distance != "850 m" {
		t.Fatalf("expected computed distance for pizza, got %q", list[0].Distance)
	}
	if list[1].Distance != "" || len(list[1].MenuItems) != 2 {
		t.Fatalf("sushi: %+v", list[1])
	}

	// Seed is a no-op on a non-empty catalog.
	if n, err := f.svc.Seed(ctx); err != nil || n != 0 {
		t.Fatalf("seed on populated catalog: n=%d err=%v", n, err)
	}
}

func TestSeed_EmptyCatalog(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "svc_seed")
	svc, err := New(Options{
		Users:       repository.NewUserRepository(d),
		Restaurants: repository.NewRestaurantRepository(d),
		Orders:      repository.NewOrderRepository(d),
		JWTSecret:   testSecret,
		Logger:      logging.Discard(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	n, err := svc.Seed(context.Background())
	if err != nil || n != len(demoCatalog) {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	list, _ := svc.ListRestaurants(context.Background(), nil)
	if len(list) != len(demoCatalog) || len(list[0].MenuItems) == 0 {
		t.Fatalf("seeded catalog: %+v", list)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	tok := encodeCursor("2024-01-01T00:00:00.000000Z", "abc")
	created, id, err := decodeCursor(tok)
	if err != nil || created != "2024-01-01T00:00:00.000000Z" || id != "abc" {
		t.Fatalf("round trip: %q %q %v", created, id, err)
	}
	if _, _, err := decodeCursor("bm9zZXA"); err == nil {
		t.Fatalf("expected error for token without separator")
	}
}

// interleavedOrders runs before once, right before the first Update reaches the store.
type interleavedOrders struct {
	repository.OrderRepositoryI
	once   sync.Once
	before func()
}

func (r *interleavedOrders) Update(ctx context.Context, id string, ch repository.OrderChange) (*models.Order, error) {
	r.once.Do(r.before)
	return r.OrderRepositoryI.Update(ctx, id, ch)
}

func TestApplyStatusChange_TerminalSurvivesConcurrentUpdate(t *testing.T) {
	f := newFixture(t, "svc_terminal_race")
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, f.customer, f.newOrder(line(f.pizza, 0)))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := f.svc.ApplyStatusChange(ctx, StatusChange{OrderID: o.ID, Status: models.OrderStatusOutForDelivery}); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}

	store := f.svc.orders
	delivered := models.OrderStatusDelivered
	f.svc.orders = &interleavedOrders{
		OrderRepositoryI: store,
		before: func() {
			// a delivery event lands between the read and the write of the admin change
			if _, err := store.Update(ctx, o.ID, repository.OrderChange{Status: &delivered}); err != nil {
				t.Errorf("deliver: %v", err)
			}
		},
	}

	if _, err := f.svc.UpdateOrderStatus(ctx, f.admin, o.ID, models.OrderStatusPreparing); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := f.svc.GetOrder(ctx, f.customer, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.OrderStatusDelivered {
		t.Fatalf("terminal status lost: %s", got.Status)
	}
}

func TestApplyStatusChange_RetriesNonTerminalRace(t *testing.T) {
	f := newFixture(t, "svc_retry_race")
	ctx := context.Background()

	o, err := f.svc.PlaceOrder(ctx, f.customer, f.newOrder(line(f.pizza, 0)))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	store := f.svc.orders
	driver := "Sam"
	f.svc.orders = &interleavedOrders{
		OrderRepositoryI: store,
		before: func() {
			if _, err := store.Update(ctx, o.ID, repository.OrderChange{DriverName: &driver}); err != nil {
				t.Errorf("assign: %v", err)
			}
		},
	}

	up, err := f.svc.UpdateOrderStatus(ctx, f.admin, o.ID, models.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update after retry: %v", err)
	}
	if up.Status != models.OrderStatusConfirmed || up.DriverName == nil || *up.DriverName != "Sam" || up.Version != 3 {
		t.Fatalf("unexpected order: %+v", up)
	}
}
