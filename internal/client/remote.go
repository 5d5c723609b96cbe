// Package client adapts the QuickDeliver backend to the storefront
// collaborator interfaces, either over gRPC or in-process.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/config"
	"quickDeliver/internal/logging"
	"quickDeliver/internal/storefront"
	"quickDeliver/models"
)

// Dial opens a plaintext connection to the backend with reconnect backoff.
func Dial(cfg config.Client) (*grpc.ClientConn, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return grpc.NewClient(cfg.ServerAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  200 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   5 * time.Second,
			},
			MinConnectTimeout: timeout,
		}),
	)
}

// Remote talks to the backend over gRPC and keeps the session in a token file.
type Remote struct {
	conn    grpc.ClientConnInterface
	auth    qdv1.AuthServiceClient
	catalog qdv1.CatalogServiceClient
	orders  qdv1.OrderServiceClient
	admin   qdv1.AdminServiceClient
	tokens  TokenFile
	timeout time.Duration
	origin  *[2]float64
	log     *slog.Logger

	listeners sessionListeners
	mu        sync.Mutex
	session   *storefront.Session
}

// NewRemote builds a Remote over conn. timeout bounds every unary call.
func NewRemote(conn grpc.ClientConnInterface, tokens TokenFile, timeout time.Duration, l *slog.Logger) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if l == nil {
		l = logging.Discard()
	}
	return &Remote{
		conn:    conn,
		auth:    qdv1.NewAuthServiceClient(conn),
		catalog: qdv1.NewCatalogServiceClient(conn),
		orders:  qdv1.NewOrderServiceClient(conn),
		admin:   qdv1.NewAdminServiceClient(conn),
		tokens:  tokens,
		timeout: timeout,
		log:     l,
	}
}

// SetOrigin makes ListRestaurants request distance labels relative to lat/lng.
func (r *Remote) SetOrigin(lat, lng float64) {
	r.origin = &[2]float64{lat, lng}
}

func (r *Remote) call(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	if s := r.current(); s != nil {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+s.Token)
	}
	return ctx, cancel
}

func (r *Remote) current() *storefront.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *Remote) setSession(s *storefront.Session) {
	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
	r.listeners.emit(s)
}

// CurrentSession loads the saved token and confirms it with the backend.
// A token the backend rejects is discarded.
func (r *Remote) CurrentSession(ctx context.Context) (*storefront.Session, error) {
	if s := r.current(); s != nil {
		return s, nil
	}
	saved, err := r.tokens.Load()
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, nil
	}
	r.mu.Lock()
	r.session = saved
	r.mu.Unlock()

	cctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.auth.GetSession(cctx, &qdv1.GetSessionRequest{})
	if err != nil {
		r.mu.Lock()
		r.session = nil
		r.mu.Unlock()
		if status.Code(err) == codes.Unauthenticated {
			_ = r.tokens.Clear()
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	s := &storefront.Session{UserID: resp.User.ID, Email: resp.User.Email, Token: saved.Token}
	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
	return s, nil
}

func (r *Remote) OnSessionChange(fn func(*storefront.Session)) func() {
	return r.listeners.add(fn)
}

func (r *Remote) SignIn(ctx context.Context, email, password string) (*storefront.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	resp, err := r.auth.SignIn(ctx, &qdv1.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return r.adopt(resp)
}

// SignUp registers an account and signs it in.
func (r *Remote) SignUp(ctx context.Context, email, password string) (*storefront.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	resp, err := r.auth.SignUp(ctx, &qdv1.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return r.adopt(resp)
}

func (r *Remote) adopt(resp *qdv1.SessionResponse) (*storefront.Session, error) {
	if resp.User == nil || resp.AccessToken == "" {
		return nil, errors.New("backend returned an empty session")
	}
	s := &storefront.Session{UserID: resp.User.ID, Email: resp.User.Email, Token: resp.AccessToken}
	exp, _ := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err := r.tokens.Save(s, exp); err != nil {
		r.log.Warn("save token", "err", err)
	}
	r.setSession(s)
	return s, nil
}

// SignOut forgets the token locally; tokens are stateless on the backend.
func (r *Remote) SignOut(context.Context) error {
	if err := r.tokens.Clear(); err != nil {
		return err
	}
	r.setSession(nil)
	return nil
}

func (r *Remote) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	req := &qdv1.ListRestaurantsRequest{}
	if r.origin != nil {
		req.Lat, req.Lng = &r.origin[0], &r.origin[1]
	}
	resp, err := r.catalog.ListRestaurants(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Restaurants, nil
}

func (r *Remote) InsertOrder(ctx context.Context, o models.NewOrder) (*models.Order, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.orders.PlaceOrder(ctx, &qdv1.PlaceOrderRequest{Order: o})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (r *Remote) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.orders.GetOrder(ctx, &qdv1.GetOrderRequest{OrderID: id})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// ListOrders returns one page of the caller's order history.
func (r *Remote) ListOrders(ctx context.Context, pageSize int, pageToken string) ([]models.Order, string, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.orders.ListOrders(ctx, &qdv1.ListOrdersRequest{PageSize: int32(pageSize), PageToken: pageToken})
	if err != nil {
		return nil, "", err
	}
	return resp.Orders, resp.NextPageToken, nil
}

// SubscribeOrder opens a WatchOrder stream. The stream lives until ctx is
// cancelled or the subscription is closed; unary timeouts do not apply.
func (r *Remote) SubscribeOrder(ctx context.Context, id string) (storefront.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	if s := r.current(); s != nil {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+s.Token)
	}
	stream, err := r.orders.WatchOrder(ctx, &qdv1.WatchOrderRequest{OrderID: id})
	if err != nil {
		cancel()
		return nil, err
	}
	sub := &streamSub{ctx: ctx, ch: make(chan models.Order, 8), cancel: cancel}
	go sub.pump(stream)
	return sub, nil
}

// UpdateOrderStatus is an admin call.
func (r *Remote) UpdateOrderStatus(ctx context.Context, id string, st models.OrderStatus) (*models.Order, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.admin.UpdateOrderStatus(ctx, &qdv1.UpdateOrderStatusRequest{OrderID: id, Status: st})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// AssignDriver is an admin call.
func (r *Remote) AssignDriver(ctx context.Context, id, driver, eta string) (*models.Order, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.admin.AssignDriver(ctx, &qdv1.AssignDriverRequest{OrderID: id, DriverName: driver, EstimatedDelivery: eta})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// CreateRestaurant is an admin call.
func (r *Remote) CreateRestaurant(ctx context.Context, rest models.Restaurant) (*models.Restaurant, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.admin.CreateRestaurant(ctx, &qdv1.CreateRestaurantRequest{Restaurant: rest})
	if err != nil {
		return nil, err
	}
	return resp.Restaurant, nil
}

// AddMenuItem is an admin call.
func (r *Remote) AddMenuItem(ctx context.Context, item models.MenuItem) (*models.MenuItem, error) {
	ctx, cancel := r.call(ctx)
	defer cancel()
	resp, err := r.admin.AddMenuItem(ctx, &qdv1.AddMenuItemRequest{Item: item})
	if err != nil {
		return nil, err
	}
	return resp.Item, nil
}

type streamSub struct {
	ctx    context.Context
	ch     chan models.Order
	cancel context.CancelFunc
	once   sync.Once

	mu  sync.Mutex
	err error
}

func (s *streamSub) pump(stream qdv1.OrderService_WatchOrderClient) {
	defer close(s.ch)
	for {
		ev, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}
		if ev.Order == nil {
			continue
		}
		select {
		case s.ch <- *ev.Order:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *streamSub) Updates() <-chan models.Order { return s.ch }

func (s *streamSub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *streamSub) Close() error {
	s.once.Do(s.cancel)
	return nil
}
