package storefront

import (
	"testing"

	"quickDeliver/models"
)

func TestDeriveProgressKnownStatuses(t *testing.T) {
	for i, st := range models.StatusSequence {
		p := DeriveProgress(st)
		if p.Index != i {
			t.Fatalf("%s: index=%d want %d", st, p.Index, i)
		}
		if got := p.ActiveCount(); got != i+1 {
			t.Fatalf("%s: active=%d want %d", st, got, i+1)
		}
		cur, ok := p.Current()
		if st == models.OrderStatusDelivered {
			if ok || !p.Complete {
				t.Fatalf("delivered: current=%v complete=%v", ok, p.Complete)
			}
			continue
		}
		if !ok || cur.Status != st || p.Complete {
			t.Fatalf("%s: current=%+v ok=%v complete=%v", st, cur, ok, p.Complete)
		}
	}
}

func TestDeriveProgressUnknownStatus(t *testing.T) {
	for _, st := range []models.OrderStatus{"cancelled", "", "PENDING", "lost"} {
		p := DeriveProgress(st)
		if p.Index != -1 {
			t.Fatalf("%q: index=%d want -1", st, p.Index)
		}
		if p.ActiveCount() != 0 {
			t.Fatalf("%q: %d active steps", st, p.ActiveCount())
		}
		if _, ok := p.Current(); ok || p.Complete {
			t.Fatalf("%q: unexpected current or complete", st)
		}
		if len(p.Steps) != 5 {
			t.Fatalf("%q: %d steps", st, len(p.Steps))
		}
	}
}

func TestStepLabels(t *testing.T) {
	p := DeriveProgress(models.OrderStatusPending)
	want := []string{"Order Received", "Confirmed", "Preparing", "Out for Delivery", "Delivered"}
	for i, s := range p.Steps {
		if s.Label != want[i] || s.Icon == "" {
			t.Fatalf("step %d: %+v", i, s)
		}
	}
}
