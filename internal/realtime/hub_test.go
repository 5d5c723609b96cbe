package realtime

import (
	"sync"
	"testing"
	"time"

	"quickDeliver/internal/logging"
	"quickDeliver/models"
)

func snap(id string, v int64, st models.OrderStatus) models.Order {
	return models.Order{ID: id, Version: v, Status: st}
}

func recv(t *testing.T, s *Subscription) models.Order {
	t.Helper()
	select {
	case o, ok := <-s.C:
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return o
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}
	return models.Order{}
}

func TestHub_PublishFansOutByKey(t *testing.T) {
	h := NewHub(logging.Discard())
	a1 := h.Subscribe("a", 4)
	a2 := h.Subscribe("a", 4)
	b := h.Subscribe("b", 4)
	defer a1.Close()
	defer a2.Close()
	defer b.Close()

	if !h.Publish(snap("a", 1, models.OrderStatusPending)) {
		t.Fatalf("first publish rejected")
	}
	if got := recv(t, a1); got.Version != 1 {
		t.Fatalf("a1 got %+v", got)
	}
	if got := recv(t, a2); got.Version != 1 {
		t.Fatalf("a2 got %+v", got)
	}
	select {
	case o := <-b.C:
		t.Fatalf("b must not receive updates for a: %+v", o)
	default:
	}
	if h.Subscribers("a") != 2 || h.Subscribers("b") != 1 {
		t.Fatalf("subscriber counts: a=%d b=%d", h.Subscribers("a"), h.Subscribers("b"))
	}
}

func TestHub_DropsStaleVersions(t *testing.T) {
	h := NewHub(logging.Discard())
	s := h.Subscribe("o", 4)
	defer s.Close()

	h.Publish(snap("o", 3, models.OrderStatusPreparing))
	if h.Publish(snap("o", 2, models.OrderStatusConfirmed)) {
		t.Fatalf("older version accepted")
	}
	if h.Publish(snap("o", 3, models.OrderStatusPreparing)) {
		t.Fatalf("duplicate version accepted")
	}
	h.Publish(snap("o", 4, models.OrderStatusOutForDelivery))

	if got := recv(t, s); got.Version != 3 {
		t.Fatalf("first = %+v", got)
	}
	if got := recv(t, s); got.Version != 4 {
		t.Fatalf("second = %+v", got)
	}
	last, ok := h.Last("o")
	if !ok || last.Status != models.OrderStatusOutForDelivery {
		t.Fatalf("Last = %+v ok=%v", last, ok)
	}
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	h := NewHub(logging.Discard())
	s := h.Subscribe("o", 2)
	defer s.Close()
	for v := int64(1); v <= 5; v++ {
		h.Publish(snap("o", v, models.OrderStatusPending))
	}
	if got := recv(t, s); got.Version != 4 {
		t.Fatalf("expected oldest kept to be 4, got %d", got.Version)
	}
	if got := recv(t, s); got.Version != 5 {
		t.Fatalf("expected newest 5, got %d", got.Version)
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(logging.Discard())
	s := h.Subscribe("o", 1)
	s.Close()
	s.Close()
	if _, ok := <-s.C; ok {
		t.Fatalf("expected closed channel")
	}
	if h.Subscribers("o") != 0 {
		t.Fatalf("subscription not removed")
	}
	// Publishing after close must not panic.
	h.Publish(snap("o", 1, models.OrderStatusPending))
}

func TestHub_TerminalEntryForgottenWithoutSubscribers(t *testing.T) {
	h := NewHub(logging.Discard())
	h.Publish(snap("o", 1, models.OrderStatusPending))
	if _, ok := h.Last("o"); !ok {
		t.Fatalf("expected snapshot to be remembered")
	}
	h.Publish(snap("o", 2, models.OrderStatusDelivered))
	if _, ok := h.Last("o"); ok {
		t.Fatalf("expected delivered order without watchers to be forgotten")
	}
}

func TestHub_ConcurrentPublishAndClose(t *testing.T) {
	h := NewHub(logging.Discard())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := h.Subscribe("o", 1)
			time.Sleep(time.Millisecond)
			s.Close()
		}()
	}
	for v := int64(1); v <= 100; v++ {
		h.Publish(snap("o", v, models.OrderStatusPreparing))
	}
	wg.Wait()
	if h.Subscribers("o") != 0 {
		t.Fatalf("leaked subscribers: %d", h.Subscribers("o"))
	}
}
