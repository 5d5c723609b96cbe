package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/logging"
	"quickDeliver/internal/realtime"
	"quickDeliver/models"
	"quickDeliver/repository"
)

// DeliveryFee is the flat fee charged on every non-empty order.
var DeliveryFee = decimal.RequireFromString("3.99")

// UserStore is the user persistence the service needs.
type UserStore interface {
	repository.UserRepositoryI
	UpdateRoleByEmail(ctx context.Context, email, role string) error
}

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// Options wires the service's collaborators. Publisher defaults to Hub.
type Options struct {
	Users       UserStore
	Restaurants repository.RestaurantRepositoryI
	Orders      repository.OrderRepositoryI
	Hub         *realtime.Hub
	Publisher   realtime.Publisher
	Idempotency IdempotencyStore
	JWTSecret   string
	TokenTTL    time.Duration
	Logger      *slog.Logger
}

// Service implements the storefront backend: accounts, catalog, orders and admin mutations.
type Service struct {
	users       UserStore
	restaurants repository.RestaurantRepositoryI
	orders      repository.OrderRepositoryI
	hub         *realtime.Hub
	pub         realtime.Publisher
	idem        IdempotencyStore
	secret      string
	ttl         time.Duration
	log         *slog.Logger
}

// New builds a Service. Users, Restaurants, Orders and JWTSecret are required.
func New(o Options) (*Service, error) {
	if o.Users == nil || o.Restaurants == nil || o.Orders == nil {
		return nil, fmt.Errorf("backend: repositories are required")
	}
	if o.JWTSecret == "" {
		return nil, fmt.Errorf("backend: jwt secret is required")
	}
	if o.Logger == nil {
		o.Logger = logging.New("backend")
	}
	if o.Hub == nil {
		o.Hub = realtime.NewHub(o.Logger)
	}
	if o.Publisher == nil {
		o.Publisher = o.Hub
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	return &Service{
		users:       o.Users,
		restaurants: o.Restaurants,
		orders:      o.Orders,
		hub:         o.Hub,
		pub:         o.Publisher,
		idem:        o.Idempotency,
		secret:      o.JWTSecret,
		ttl:         o.TokenTTL,
		log:         o.Logger,
	}, nil
}

// Hub exposes the realtime hub the service publishes into.
func (s *Service) Hub() *realtime.Hub { return s.hub }

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	Token     string       `json:"access_token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SignUp registers a customer account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return nil, invalidf("email %q is not valid", email)
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, conflictf("email %s is already registered", email)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			return nil, invalidf("%v", err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("email %s is already registered", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user signed up", "user_id", u.ID)
	return s.issue(u)
}

// SignIn checks the password and returns a fresh session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	return s.issue(u)
}

// GetSession resolves the principal to its current user record.
func (s *Service) GetSession(ctx context.Context, p *auth.Principal) (*models.User, error) {
	return s.currentUser(ctx, p)
}

// PromoteAdmin grants the admin role to an existing account.
func (s *Service) PromoteAdmin(ctx context.Context, email string) error {
	if err := s.users.UpdateRoleByEmail(ctx, email, models.RoleAdmin); err != nil {
		return notFoundf("user %s", email)
	}
	return nil
}

func (s *Service) issue(u *models.User) (*Session, error) {
	tok, exp, err := auth.IssueToken(s.secret, auth.Principal{UserID: u.ID, Email: u.Email, Kind: u.Role}, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

func (s *Service) currentUser(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing principal", ErrUnauthenticated)
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}
	return u, nil
}

// requireAdmin confirms the admin role against the users table so a forged
// or stale token kind cannot grant admin rights.
func (s *Service) requireAdmin(ctx context.Context, p *auth.Principal) (*models.User, error) {
	u, err := s.currentUser(ctx, p)
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, deniedf("only admin can perform this action")
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
