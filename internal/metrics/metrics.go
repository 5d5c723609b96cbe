package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickdeliver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quickdeliver_http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	grpcRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quickdeliver_grpc_requests_total",
			Help: "Total number of gRPC calls by method and code",
		},
		[]string{"method", "code"},
	)

	// OrdersPlaced counts successfully persisted orders.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickdeliver_orders_placed_total",
		Help: "Orders persisted by the backend",
	})

	// OrderUpdates counts hub publishes by outcome ("delivered" or "stale").
	OrderUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickdeliver_order_updates_total",
		Help: "Order snapshots published to the realtime hub",
	}, []string{"outcome"})

	// DroppedUpdates counts snapshots evicted from a slow subscriber's buffer.
	DroppedUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickdeliver_order_updates_dropped_total",
		Help: "Order snapshots dropped because a subscriber was slow",
	})

	// ActiveSubscriptions is the number of open order watches.
	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quickdeliver_active_subscriptions",
		Help: "Open order update subscriptions",
	})

	// ExternalEvents counts broker messages by source and outcome.
	ExternalEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickdeliver_external_events_total",
		Help: "Messages consumed from Kafka or RabbitMQ",
	}, []string{"source", "outcome"})
)

// GinMiddleware records request counts and latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start).Milliseconds())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequests.WithLabelValues(c.Request.Method, path,
			http.StatusText(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// ObserveGRPC records the outcome of one gRPC call.
func ObserveGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
