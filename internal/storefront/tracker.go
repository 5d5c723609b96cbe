package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"quickDeliver/internal/logging"
	"quickDeliver/models"
)

// Tracker follows one order: it subscribes to pushed updates, loads the
// current snapshot once, and replaces the held snapshot with every update.
// It stays open after delivery; the owner closes it.
type Tracker struct {
	id       string
	sub      Subscription
	onUpdate func(models.Order)
	log      *slog.Logger

	mu      sync.Mutex
	order   *models.Order
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	once    sync.Once
	err     error
}

// OpenTracker subscribes before fetching so no update is lost in between.
// onUpdate, if set, runs on the tracker goroutine after each replacement.
// It must not call Close on its own tracker: Close waits for it to return.
func OpenTracker(ctx context.Context, data DataClient, id string, onUpdate func(models.Order), l *slog.Logger) (*Tracker, error) {
	if id == "" {
		return nil, errors.New("tracker: order id is empty")
	}
	if l == nil {
		l = logging.Discard()
	}
	ctx, cancel := context.WithCancel(ctx)
	sub, err := data.SubscribeOrder(ctx, id)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to order %s: %w", id, err)
	}
	t := &Tracker{
		id:       id,
		sub:      sub,
		onUpdate: onUpdate,
		log:      l.With("order_id", id),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	snap, err := data.GetOrder(ctx, id)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("load order %s: %w", id, err)
	}
	if snap != nil {
		t.apply(*snap)
	}
	t.started = true
	go t.run(ctx)
	return t, nil
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-t.sub.Updates():
			if !ok {
				if err := t.sub.Err(); err != nil {
					t.mu.Lock()
					t.err = err
					t.mu.Unlock()
					t.log.Warn("order subscription ended", "err", err)
				}
				return
			}
			if t.apply(o) && t.onUpdate != nil {
				t.onUpdate(o)
			}
		}
	}
}

// apply replaces the held snapshot wholesale. Snapshots older than the held
// one are ignored; the initial fetch can race with the first pushed update.
func (t *Tracker) apply(o models.Order) bool {
	if o.ID != "" && o.ID != t.id {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.order != nil && o.Version != 0 && o.Version < t.order.Version {
		return false
	}
	cp := o
	t.order = &cp
	return true
}

func (t *Tracker) OrderID() string { return t.id }

// Snapshot returns a copy of the held order, or false before the first load.
func (t *Tracker) Snapshot() (models.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.order == nil {
		return models.Order{}, false
	}
	return *t.order, true
}

// Progress derives the step view from the held snapshot.
func (t *Tracker) Progress() Progress {
	o, ok := t.Snapshot()
	if !ok {
		return DeriveProgress("")
	}
	return DeriveProgress(o.Status)
}

// Err reports why the update stream ended on its own, if it did.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed once the tracker stops receiving updates.
func (t *Tracker) Done() <-chan struct{} { return t.done }

// Close releases the subscription and waits for an onUpdate in progress to
// return. No callback runs after Close returns. Safe to call more than once.
func (t *Tracker) Close() error {
	var err error
	t.once.Do(func() {
		t.cancel()
		err = t.sub.Close()
	})
	if t.started {
		<-t.done
	}
	return err
}
