package client

import (
	"context"
	"sync"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/backend"
	"quickDeliver/internal/realtime"
	"quickDeliver/internal/storefront"
	"quickDeliver/models"
)

// Local runs the storefront against an in-process backend.Service. The
// session lives in memory only.
type Local struct {
	svc    *backend.Service
	secret string

	listeners sessionListeners
	mu        sync.Mutex
	session   *storefront.Session
}

// NewLocal wraps svc. secret must be the one svc signs tokens with.
func NewLocal(svc *backend.Service, secret string) *Local {
	return &Local{svc: svc, secret: secret}
}

func (l *Local) principal() (*auth.Principal, error) {
	l.mu.Lock()
	s := l.session
	l.mu.Unlock()
	if s == nil {
		return nil, backend.ErrUnauthenticated
	}
	return auth.ParseToken(s.Token, l.secret)
}

func (l *Local) CurrentSession(context.Context) (*storefront.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == nil {
		return nil, nil
	}
	cp := *l.session
	return &cp, nil
}

func (l *Local) OnSessionChange(fn func(*storefront.Session)) func() {
	return l.listeners.add(fn)
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*storefront.Session, error) {
	sess, err := l.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return l.adopt(sess), nil
}

// SignUp registers an account and signs it in.
func (l *Local) SignUp(ctx context.Context, email, password string) (*storefront.Session, error) {
	sess, err := l.svc.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return l.adopt(sess), nil
}

func (l *Local) adopt(sess *backend.Session) *storefront.Session {
	s := &storefront.Session{UserID: sess.User.ID, Email: sess.User.Email, Token: sess.Token}
	l.mu.Lock()
	l.session = s
	l.mu.Unlock()
	l.listeners.emit(s)
	return s
}

func (l *Local) SignOut(context.Context) error {
	l.mu.Lock()
	l.session = nil
	l.mu.Unlock()
	l.listeners.emit(nil)
	return nil
}

func (l *Local) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return l.svc.ListRestaurants(ctx, nil)
}

func (l *Local) InsertOrder(ctx context.Context, o models.NewOrder) (*models.Order, error) {
	p, err := l.principal()
	if err != nil {
		return nil, err
	}
	return l.svc.PlaceOrder(ctx, p, o)
}

func (l *Local) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	p, err := l.principal()
	if err != nil {
		return nil, err
	}
	return l.svc.GetOrder(ctx, p, id)
}

// SubscribeOrder forwards hub snapshots newer than the current one.
func (l *Local) SubscribeOrder(ctx context.Context, id string) (storefront.Subscription, error) {
	p, err := l.principal()
	if err != nil {
		return nil, err
	}
	hs, snap, err := l.svc.WatchOrder(ctx, p, id, realtime.DefaultBuffer)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &hubSub{ch: make(chan models.Order, realtime.DefaultBuffer), cancel: cancel}
	go s.pump(ctx, hs, snap.Version)
	return s, nil
}

type hubSub struct {
	ch     chan models.Order
	cancel context.CancelFunc
	once   sync.Once
}

func (s *hubSub) pump(ctx context.Context, hs *realtime.Subscription, last int64) {
	defer close(s.ch)
	defer hs.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-hs.C:
			if !ok {
				return
			}
			if o.Version <= last {
				continue
			}
			last = o.Version
			select {
			case s.ch <- o:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *hubSub) Updates() <-chan models.Order { return s.ch }
func (s *hubSub) Err() error { return nil }

func (s *hubSub) Close() error {
	s.once.Do(s.cancel)
	return nil
}
