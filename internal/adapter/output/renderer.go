package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jmylchreest/popkit/internal/model"
)

// Answer is the reply the print backend assumes for dialogs.
type Answer string

const (
	AnswerNone Answer = ""
	AnswerYes  Answer = "yes"
	AnswerNo   Answer = "no"
)

// ParseAnswer validates an --assume value.
func ParseAnswer(s string) (Answer, error) {
	switch a := Answer(s); a {
	case AnswerNone, AnswerYes, AnswerNo:
		return a, nil
	default:
		return "", fmt.Errorf("invalid answer %q, must be yes or no", s)
	}
}

// Renderer writes records instead of showing them. Toasts resolve as timed
// out and dialogs resolve at once, with the assumed answer when one is set.
// Loading records stay pending until dismissed or replaced.
type Renderer struct {
	mu      sync.Mutex
	w       io.Writer
	f       Formatter
	assume  Answer
	logger  *slog.Logger
	current *model.Deferred
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithAssume sets the answer given to dialogs.
func WithAssume(a Answer) Option {
	return func(r *Renderer) { r.assume = a }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// NewRenderer creates a print renderer writing to w with f.
func NewRenderer(w io.Writer, f Formatter, opts ...Option) *Renderer {
	r := &Renderer{w: w, f: f}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Present writes the record and its outcome when it resolves at once.
func (r *Renderer) Present(_ context.Context, req *model.Request) (*model.Deferred, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Resolve(model.Dismissed(model.DismissReasonReplaced))
		r.current = nil
	}

	if err := r.f.Format(r.w, Event{Event: EventPresent, Request: req}); err != nil {
		return nil, fmt.Errorf("failed to write record: %w", err)
	}

	outcome, pending := r.outcomeFor(req)
	if pending {
		d := model.NewDeferred(req.ID)
		r.current = d
		return d, nil
	}

	if req.Interactive() {
		if err := r.f.Format(r.w, Event{Event: EventOutcome, ID: req.ID, Outcome: &outcome}); err != nil {
			return nil, fmt.Errorf("failed to write outcome: %w", err)
		}
	}
	r.logger.Debug("print backend resolved", "request_id", req.ID, "choice", outcome.Choice, "reason", outcome.Reason)
	return model.Resolved(req.ID, outcome), nil
}

func (r *Renderer) outcomeFor(req *model.Request) (model.Outcome, bool) {
	switch {
	case req.Mode == model.ModeLoading:
		return model.Outcome{}, true
	case !req.Interactive():
		return model.Dismissed(model.DismissReasonTimer), false
	case r.assume == AnswerYes:
		return model.Confirmed(), false
	case r.assume == AnswerNo && req.ShowCancelButton:
		return model.Cancelled(), false
	default:
		return model.Dismissed(model.DismissReasonClose), false
	}
}

// Dismiss writes a close marker and resolves a pending loading record.
func (r *Renderer) Dismiss(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Resolve(model.Dismissed(model.DismissReasonClose))
		r.current = nil
	}
	if err := r.f.Format(r.w, Event{Event: EventClose}); err != nil {
		return fmt.Errorf("failed to write close: %w", err)
	}
	return nil
}

// Preview writes a record without presenting it.
func Preview(w io.Writer, f Formatter, req *model.Request) error {
	return f.Format(w, Event{Event: EventPreview, Request: req})
}
