package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"quickDeliver/internal/backend"
	"quickDeliver/internal/config"
	"quickDeliver/internal/metrics"
)

// NewRouter builds the browser-facing HTTP API wrapped in CORS handling.
func NewRouter(svc *backend.Service, jwtSecret string, allowedOrigins []string, l *slog.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware(), Logging(l))

	h := &Handler{Svc: svc}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/signup", h.SignUp)
		v1.POST("/auth/signin", h.SignIn)
		v1.GET("/restaurants", h.ListRestaurants)

		authed := v1.Group("", RequireAuth(jwtSecret, false))
		authed.GET("/session", h.Session)
		authed.POST("/orders", h.PlaceOrder)
		authed.GET("/orders", h.ListOrders)
		authed.GET("/orders/:id", h.GetOrder)

		v1.GET("/orders/:id/events", RequireAuth(jwtSecret, true), h.OrderEvents)

		admin := v1.Group("/admin", RequireAuth(jwtSecret, false))
		admin.POST("/restaurants", h.CreateRestaurant)
		admin.POST("/restaurants/:id/menu", h.AddMenuItem)
		admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		admin.PUT("/orders/:id/driver", h.AssignDriver)
	}

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Authorization", "X-Request-Id", "X-Idempotency-Key"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return c.Handler(r)
}

// StartHTTP serves the API on cfg.HTTP.Address and returns a shutdown function.
func StartHTTP(cfg *config.Config, svc *backend.Service, l *slog.Logger) (func(context.Context) error, error) {
	if cfg.HTTP.Address == "" {
		return nil, errors.New("http address is empty")
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(svc, cfg.Auth.JWTSecret, cfg.HTTP.AllowedOrigins, l),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http serve", "err", err)
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return nil, err
	case <-time.After(100 * time.Millisecond):
	}
	return srv.Shutdown, nil
}
