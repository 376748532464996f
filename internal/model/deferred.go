package model

import (
	"context"
	"sync"
)

// Choice is what the user did with a popup.
type Choice string

const (
	ChoiceConfirmed Choice = "confirmed"
	ChoiceCancelled Choice = "cancelled"
	ChoiceDismissed Choice = "dismissed"
)

// DismissReason explains how a popup went away without being confirmed.
type DismissReason string

const (
	DismissReasonNone     DismissReason = ""
	DismissReasonCancel   DismissReason = "cancel"
	DismissReasonBackdrop DismissReason = "backdrop"
	DismissReasonClose    DismissReason = "close"
	DismissReasonEsc      DismissReason = "esc"
	DismissReasonTimer    DismissReason = "timer"
	DismissReasonReplaced DismissReason = "replaced"
)

// Outcome is the value a Deferred resolves to.
type Outcome struct {
	Choice Choice        `json:"choice" yaml:"choice"`
	Reason DismissReason `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Confirmed is the outcome of pressing the confirm button.
func Confirmed() Outcome {
	return Outcome{Choice: ChoiceConfirmed}
}

// Cancelled is the outcome of pressing the cancel button.
func Cancelled() Outcome {
	return Outcome{Choice: ChoiceCancelled, Reason: DismissReasonCancel}
}

// Dismissed is the outcome of a popup closed for the given reason.
func Dismissed(reason DismissReason) Outcome {
	return Outcome{Choice: ChoiceDismissed, Reason: reason}
}

// IsConfirmed reports whether the user confirmed.
func (o Outcome) IsConfirmed() bool {
	return o.Choice == ChoiceConfirmed
}

// IsDismissed reports whether the popup closed without a confirmation.
func (o Outcome) IsDismissed() bool {
	return o.Choice != ChoiceConfirmed
}

// Deferred is a one-shot future for the result of a popup.
// The first Resolve wins; it is safe to use from multiple goroutines.
type Deferred struct {
	id   string
	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	outcome Outcome
}

// NewDeferred creates an unresolved Deferred for the request ID.
func NewDeferred(id string) *Deferred {
	return &Deferred{
		id:   id,
		done: make(chan struct{}),
	}
}

// Resolved returns a Deferred that already holds the outcome.
func Resolved(id string, outcome Outcome) *Deferred {
	d := NewDeferred(id)
	d.Resolve(outcome)
	return d
}

// ID returns the ID of the request this result belongs to.
func (d *Deferred) ID() string {
	return d.id
}

// Resolve settles the Deferred. It returns false if it was already settled.
func (d *Deferred) Resolve(outcome Outcome) bool {
	resolved := false
	d.once.Do(func() {
		d.mu.Lock()
		d.outcome = outcome
		d.mu.Unlock()
		close(d.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel closed once the Deferred is resolved.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the Deferred resolves or ctx is done.
func (d *Deferred) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-d.done:
		return d.get(), nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the outcome without blocking.
// The second value is false while the Deferred is unresolved.
func (d *Deferred) Outcome() (Outcome, bool) {
	select {
	case <-d.done:
		return d.get(), true
	default:
		return Outcome{}, false
	}
}

func (d *Deferred) get() Outcome {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.outcome
}
