package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"quickDeliver/internal/logging"
	"quickDeliver/models"
)

var (
	ErrNotSignedIn      = errors.New("please sign in to place an order")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMixedRestaurants = errors.New("cart holds items from more than one restaurant")
	ErrUnknownItem      = errors.New("menu item not in catalog")

	errStorefrontClosed = errors.New("storefront is closed")
)

// SubmitError wraps a failed order write. The cart is left as it was, so the
// same submission can be retried.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return "order submission failed: " + e.Err.Error() }
func (e *SubmitError) Unwrap() error { return e.Err }

// NoticeKind classifies user-facing notices.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Options configure a Storefront.
type Options struct {
	Notify   func(Notice)       // user-facing notices; may be nil
	OnUpdate func(models.Order) // tracker updates; may be nil
	Logger   *slog.Logger
}

// Storefront is the composition root: it owns the session subscription, the
// catalog snapshot, the cart and at most one open tracker.
type Storefront struct {
	auth AuthClient
	data DataClient
	opts Options
	log  *slog.Logger

	Session *SessionState
	Catalog *Catalog
	Cart    *Cart

	unsubscribe func()

	mu      sync.Mutex
	tracker *Tracker
	pending string // idempotency key of the last failed submission
	pendRev uint64
	closed  bool
}

func New(auth AuthClient, data DataClient, opts Options) *Storefront {
	l := opts.Logger
	if l == nil {
		l = logging.Discard()
	}
	return &Storefront{
		auth:    auth,
		data:    data,
		opts:    opts,
		log:     l,
		Session: NewSessionState(),
		Catalog: NewCatalog(data),
		Cart:    &Cart{},
	}
}

// Start mirrors the current session, subscribes to session changes and loads
// the catalog. A catalog failure is reported but does not stop the storefront.
// Calling Start again replaces the session subscription.
func (s *Storefront) Start(ctx context.Context) error {
	// subscribe before reading so a change in between is not missed
	var (
		seenMu sync.Mutex
		seen   bool
	)
	unsub := s.auth.OnSessionChange(func(sess *Session) {
		seenMu.Lock()
		defer seenMu.Unlock()
		seen = true
		s.Session.Set(sess)
	})
	sess, err := s.auth.CurrentSession(ctx)
	if err != nil {
		unsub()
		return fmt.Errorf("check session: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return errStorefrontClosed
	}
	prev := s.unsubscribe
	s.unsubscribe = unsub
	s.mu.Unlock()
	if prev != nil {
		prev()
	}

	seenMu.Lock()
	if !seen {
		s.Session.Set(sess)
	}
	seenMu.Unlock()

	if err := s.Catalog.Load(ctx); err != nil {
		s.log.Warn("catalog load failed", "err", err)
		s.notify(NoticeError, err.Error())
		return err
	}
	return nil
}

func (s *Storefront) notify(kind NoticeKind, msg string) {
	if s.opts.Notify != nil {
		s.opts.Notify(Notice{Kind: kind, Message: msg})
	}
}

// SignIn delegates to the auth collaborator; the session change arrives through the subscription.
func (s *Storefront) SignIn(ctx context.Context, email, password string) error {
	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.Session.Set(sess)
	return nil
}

func (s *Storefront) SignOut(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.Session.Set(nil)
	return nil
}

// AddToCart looks the item up in the catalog snapshot and appends it.
func (s *Storefront) AddToCart(restaurantID, itemID int64) error {
	it, ok := s.Catalog.MenuItem(restaurantID, itemID)
	if !ok {
		return fmt.Errorf("%w: restaurant %d item %d", ErrUnknownItem, restaurantID, itemID)
	}
	s.Cart.Add(it, restaurantID)
	return nil
}

// Submit turns the cart into a pending order. On success the cart is cleared
// and a tracker is opened for the new order. A retry of a failed submission
// with an unchanged cart reuses the idempotency key.
func (s *Storefront) Submit(ctx context.Context) (*models.Order, error) {
	sess := s.Session.Current()
	if sess == nil {
		s.notify(NoticeError, "Please sign in to place an order")
		return nil, ErrNotSignedIn
	}
	snap := s.Cart.Snapshot()
	if len(snap.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range snap.Lines[1:] {
		if l.RestaurantID != snap.Lines[0].RestaurantID {
			s.notify(NoticeError, ErrMixedRestaurants.Error())
			return nil, ErrMixedRestaurants
		}
	}

	items := make([]models.OrderItem, len(snap.Lines))
	for i, l := range snap.Lines {
		items[i] = l.OrderItem()
	}
	in := models.NewOrder{
		UserID:         sess.UserID,
		RestaurantID:   snap.Lines[0].RestaurantID,
		Items:          items,
		TotalAmount:    snap.Subtotal,
		Status:         models.OrderStatusPending,
		IdempotencyKey: s.idempotencyKey(snap.Revision),
	}

	o, err := s.data.InsertOrder(ctx, in)
	if err != nil {
		s.log.Warn("order submission failed", "err", err)
		s.notify(NoticeError, "Could not place your order, please try again")
		return nil, &SubmitError{Err: err}
	}

	s.mu.Lock()
	s.pending = ""
	s.mu.Unlock()
	s.Cart.clearIf(snap.Revision)
	s.notify(NoticeSuccess, "Order placed successfully!")
	s.log.Info("order placed", "order_id", o.ID)

	if _, err := s.OpenTracker(ctx, o.ID); err != nil {
		s.log.Warn("open tracker", "order_id", o.ID, "err", err)
		s.notify(NoticeError, "Order placed, but live tracking is unavailable")
	}
	return o, nil
}

func (s *Storefront) idempotencyKey(rev uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == "" || s.pendRev != rev {
		s.pending = uuid.NewString()
		s.pendRev = rev
	}
	return s.pending
}

// OpenTracker starts tracking id, closing any tracker for another order.
// The tracker outlives ctx cancellation only until Close.
func (s *Storefront) OpenTracker(ctx context.Context, id string) (*Tracker, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errStorefrontClosed
	}
	prev := s.tracker
	if prev != nil && prev.OrderID() == id {
		s.mu.Unlock()
		return prev, nil
	}
	s.tracker = nil
	s.mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}

	t, err := OpenTracker(context.WithoutCancel(ctx), s.data, id, s.opts.OnUpdate, s.log)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = t.Close()
		return nil, errStorefrontClosed
	}
	other := s.tracker
	if other != nil && other.OrderID() == id {
		// a concurrent call already opened this order
		s.mu.Unlock()
		_ = t.Close()
		return other, nil
	}
	s.tracker = t
	s.mu.Unlock()
	if other != nil {
		_ = other.Close()
	}
	return t, nil
}

// Tracker returns the open tracker, if any.
func (s *Storefront) Tracker() *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker
}

// CloseTracker dismisses the open tracker.
func (s *Storefront) CloseTracker() error {
	s.mu.Lock()
	t := s.tracker
	s.tracker = nil
	s.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}

// Close releases the session subscription and the tracker. Idempotent.
func (s *Storefront) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	t := s.tracker
	s.tracker = nil
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if t != nil {
		return t.Close()
	}
	return nil
}
