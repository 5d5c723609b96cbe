package storefront

import "quickDeliver/models"

// Step is one row of the tracker's progress display.
type Step struct {
	Status  models.OrderStatus
	Label   string
	Icon    string
	Active  bool
	Current bool
}

// Progress is the derived view of an order status.
// Index is -1 when the status is not a progress step; then no step is active.
type Progress struct {
	Index    int
	Steps    []Step
	Complete bool
}

var stepMeta = map[models.OrderStatus]struct{ label, icon string }{
	models.OrderStatusPending:        {"Order Received", "📝"},
	models.OrderStatusConfirmed:      {"Confirmed", "✅"},
	models.OrderStatusPreparing:      {"Preparing", "👨‍🍳"},
	models.OrderStatusOutForDelivery: {"Out for Delivery", "🚚"},
	models.OrderStatusDelivered:      {"Delivered", "🎉"},
}

// DeriveProgress maps a status onto the five-step sequence. Steps up to the
// status are active and the step at it is current, except delivered, which
// marks every step active and none current.
func DeriveProgress(status models.OrderStatus) Progress {
	idx := status.Position()
	p := Progress{Index: idx, Steps: make([]Step, len(models.StatusSequence))}
	last := len(models.StatusSequence) - 1
	for i, st := range models.StatusSequence {
		meta := stepMeta[st]
		step := Step{Status: st, Label: meta.label, Icon: meta.icon}
		if idx >= 0 {
			step.Active = i <= idx
			step.Current = i == idx && idx != last
		}
		p.Steps[i] = step
	}
	p.Complete = idx == last
	return p
}

// ActiveCount is the number of active steps.
func (p Progress) ActiveCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Active {
			n++
		}
	}
	return n
}

// Current returns the current step, if any.
func (p Progress) Current() (Step, bool) {
	for _, s := range p.Steps {
		if s.Current {
			return s, true
		}
	}
	return Step{}, false
}
