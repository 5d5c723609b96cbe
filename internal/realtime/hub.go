package realtime

import (
	"log/slog"
	"sync"

	"quickDeliver/internal/logging"
	"quickDeliver/internal/metrics"
	"quickDeliver/models"
)

// DefaultBuffer is the per-subscriber queue length used when Subscribe gets a non-positive size.
const DefaultBuffer = 8

// Hub fans order snapshots out to local subscribers. It remembers the last
// snapshot per order id and drops publishes whose Version is not newer.
type Hub struct {
	mu      sync.Mutex
	entries map[string]*entry
	log     *slog.Logger
}

type entry struct {
	last models.Order
	seen bool
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub(l *slog.Logger) *Hub {
	if l == nil {
		l = logging.New("realtime")
	}
	return &Hub{entries: make(map[string]*entry), log: l}
}

// Subscription receives snapshots for one order. C is closed by Close.
type Subscription struct {
	OrderID string
	C       <-chan models.Order

	ch   chan models.Order
	hub  *Hub
	once sync.Once
}

// Subscribe registers interest in orderID. Buffer bounds the number of queued
// snapshots; when full the oldest is discarded so a slow reader always ends on the newest.
func (h *Hub) Subscribe(orderID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan models.Order, buffer)
	s := &Subscription{OrderID: orderID, C: ch, ch: ch, hub: h}

	h.mu.Lock()
	e := h.entry(orderID)
	e.subs[s] = struct{}{}
	h.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()
	return s
}

// Close unregisters the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if e, ok := h.entries[s.OrderID]; ok {
			delete(e.subs, s)
			if len(e.subs) == 0 && (!e.seen || isTerminal(e.last.Status)) {
				delete(h.entries, s.OrderID)
			}
		}
		close(s.ch)
		h.mu.Unlock()
		metrics.ActiveSubscriptions.Dec()
	})
}

// Publish delivers o to every subscriber of o.ID. It returns false when o is
// not newer than the last snapshot seen for that order.
func (h *Hub) Publish(o models.Order) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.entry(o.ID)
	if e.seen && o.Version <= e.last.Version {
		metrics.OrderUpdates.WithLabelValues("stale").Inc()
		h.log.Debug("stale order update dropped", "order_id", o.ID, "version", o.Version, "last", e.last.Version)
		return false
	}
	e.last = o
	e.seen = true
	for s := range e.subs {
		offer(s.ch, o)
	}
	metrics.OrderUpdates.WithLabelValues("delivered").Inc()

	if len(e.subs) == 0 && isTerminal(o.Status) {
		delete(h.entries, o.ID)
	}
	return true
}

// Last returns the newest snapshot published for orderID.
func (h *Hub) Last(orderID string) (models.Order, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.entries[orderID]
	if !ok || !e.seen {
		return models.Order{}, false
	}
	return e.last, true
}

// Subscribers returns the number of open subscriptions for orderID.
func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.entries[orderID]; ok {
		return len(e.subs)
	}
	return 0
}

// entry must be called with h.mu held.
func (h *Hub) entry(id string) *entry {
	e, ok := h.entries[id]
	if !ok {
		e = &entry{subs: make(map[*Subscription]struct{})}
		h.entries[id] = e
	}
	return e
}

// offer enqueues o, evicting the oldest queued snapshot when the buffer is full.
// Callers hold the hub lock, so there is exactly one writer per channel.
func offer(ch chan models.Order, o models.Order) {
	for {
		select {
		case ch <- o:
			return
		default:
		}
		select {
		case <-ch:
			metrics.DroppedUpdates.Inc()
		default:
		}
	}
}

func isTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}
