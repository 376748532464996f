// Package alerttest provides a recording alert.Renderer for tests.
package alerttest

import (
	"context"
	"sync"

	"github.com/jmylchreest/popkit/internal/model"
)

// Recorder records every presented request. The deferred for each request
// stays pending until the test resolves it, or until the next Present or
// Dismiss replaces it.
type Recorder struct {
	mu        sync.Mutex
	requests  []*model.Request
	deferreds []*model.Deferred
	current   *model.Deferred
	dismissed int

	// Err, when set, is returned from Present and Dismiss.
	Err error
}

// Present implements alert.Renderer.
func (r *Recorder) Present(_ context.Context, req *model.Request) (*model.Deferred, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	if r.current != nil {
		r.current.Resolve(model.Dismissed(model.DismissReasonReplaced))
	}

	d := model.NewDeferred(req.ID)
	r.requests = append(r.requests, req)
	r.deferreds = append(r.deferreds, d)
	r.current = d
	return d, nil
}

// Dismiss implements alert.Renderer.
func (r *Recorder) Dismiss(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}

	r.dismissed++
	if r.current != nil {
		r.current.Resolve(model.Dismissed(model.DismissReasonClose))
		r.current = nil
	}
	return nil
}

// Requests returns the recorded requests in order.
func (r *Recorder) Requests() []*model.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Request(nil), r.requests...)
}

// Last returns the most recent request, or nil.
func (r *Recorder) Last() *model.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return nil
	}
	return r.requests[len(r.requests)-1]
}

// Choose resolves the current deferred with outcome, as if the user acted.
func (r *Recorder) Choose(outcome model.Outcome) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return false
	}
	ok := r.current.Resolve(outcome)
	r.current = nil
	return ok
}

// Dismissals returns how often Dismiss was called.
func (r *Recorder) Dismissals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dismissed
}
