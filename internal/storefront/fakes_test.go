package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quickDeliver/models"
)

type fakeAuth struct {
	mu        sync.Mutex
	sess      *Session
	listeners []func(*Session)
	unsubbed  int
}

func (f *fakeAuth) CurrentSession(context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sess, nil
}

func (f *fakeAuth) OnSessionChange(fn func(*Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	return func() {
		f.mu.Lock()
		f.unsubbed++
		f.mu.Unlock()
	}
}

func (f *fakeAuth) emit(s *Session) {
	f.mu.Lock()
	f.sess = s
	fns := append([]func(*Session){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*Session, error) {
	if password != "secret" {
		return nil, errors.New("invalid credentials")
	}
	s := &Session{UserID: 7, Email: email, Token: "tok"}
	f.emit(s)
	return s, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.emit(nil)
	return nil
}

type fakeSub struct {
	ch     chan models.Order
	once   sync.Once
	closed chan struct{}
	err    error
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan models.Order, 8), closed: make(chan struct{})}
}

func (s *fakeSub) Updates() <-chan models.Order { return s.ch }
func (s *fakeSub) Err() error { return s.err }
func (s *fakeSub) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSub) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeData struct {
	mu          sync.Mutex
	restaurants []models.Restaurant
	orders      map[string]models.Order
	inserted    []models.NewOrder
	byKey       map[string]string
	subs        map[string][]*fakeSub
	failInsert  error
	failList    error
	seq         int
}

func newFakeData(rs ...models.Restaurant) *fakeData {
	return &fakeData{
		restaurants: rs,
		orders:      map[string]models.Order{},
		byKey:       map[string]string{},
		subs:        map[string][]*fakeSub{},
	}
}

func (f *fakeData) ListRestaurants(context.Context) ([]models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	return append([]models.Restaurant(nil), f.restaurants...), nil
}

func (f *fakeData) InsertOrder(_ context.Context, in models.NewOrder) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, in)
	if f.failInsert != nil {
		return nil, f.failInsert
	}
	if id, ok := f.byKey[in.IdempotencyKey]; ok && in.IdempotencyKey != "" {
		o := f.orders[id]
		return &o, nil
	}
	f.seq++
	o := models.Order{
		ID:           fmt.Sprintf("order-%d", f.seq),
		UserID:       in.UserID,
		RestaurantID: in.RestaurantID,
		Items:        in.Items,
		TotalAmount:  in.TotalAmount,
		DeliveryFee:  DeliveryFee,
		Status:       models.OrderStatusPending,
		Version:      1,
	}
	f.orders[o.ID] = o
	f.byKey[in.IdempotencyKey] = o.ID
	return &o, nil
}

func (f *fakeData) GetOrder(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &o, nil
}

func (f *fakeData) SubscribeOrder(_ context.Context, id string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeSub()
	f.subs[id] = append(f.subs[id], s)
	return s, nil
}

// push stores o and delivers it to every open subscriber of its id.
func (f *fakeData) push(o models.Order) {
	f.mu.Lock()
	f.orders[o.ID] = o
	subs := append([]*fakeSub(nil), f.subs[o.ID]...)
	f.mu.Unlock()
	for _, s := range subs {
		if !s.isClosed() {
			s.ch <- o
		}
	}
}

func (f *fakeData) lastSub(id string) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subs[id]
	if len(subs) == 0 {
		return nil
	}
	return subs[len(subs)-1]
}
