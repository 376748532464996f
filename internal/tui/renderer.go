package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/jmylchreest/popkit/internal/model"
)

// ErrNoTerminal is returned when the renderer's input is not a terminal.
var ErrNoTerminal = errors.New("terminal backend needs an interactive terminal")

// Renderer runs one Bubble Tea program per alert. It implements alert.Renderer.
type Renderer struct {
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	// programOptions is appended to every program; tests use it to drop the renderer.
	programOptions []tea.ProgramOption

	mu      sync.Mutex
	current *run
}

// run is one program on screen.
type run struct {
	program  *tea.Program
	deferred *model.Deferred
	done     chan struct{}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithInput sets the input the programs read keys from.
func WithInput(r io.Reader) Option {
	return func(rd *Renderer) { rd.in = r }
}

// WithOutput sets where alerts are drawn.
func WithOutput(w io.Writer) Option {
	return func(rd *Renderer) { rd.out = w }
}

// WithLogger sets the logger. A nil logger uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rd *Renderer) { rd.logger = logger }
}

// New creates a terminal renderer on stdin and stderr.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		in:  os.Stdin,
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Present starts a program for req, ending any program already running.
// It returns as soon as the program is started.
func (r *Renderer) Present(ctx context.Context, req *model.Request) (*model.Deferred, error) {
	if f, ok := r.in.(*os.File); ok && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil, ErrNoTerminal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked(model.Dismissed(model.DismissReasonReplaced))

	opts := append([]tea.ProgramOption{
		tea.WithInput(r.in),
		tea.WithOutput(r.out),
		tea.WithContext(context.WithoutCancel(ctx)),
	}, r.programOptions...)

	cur := &run{
		program:  tea.NewProgram(NewModel(req), opts...),
		deferred: model.NewDeferred(req.ID),
		done:     make(chan struct{}),
	}
	r.current = cur

	go r.runProgram(cur, req)
	return cur.deferred, nil
}

func (r *Renderer) runProgram(cur *run, req *model.Request) {
	defer close(cur.done)

	final, err := cur.program.Run()
	if err != nil {
		r.logger.Warn("terminal alert failed", "request_id", req.ID, "error", err)
	}

	outcome := model.Dismissed(model.DismissReasonClose)
	if m, ok := final.(Model); ok {
		if o, done := m.Outcome(); done {
			outcome = o
		}
	}

	r.logger.Debug("terminal alert finished", "request_id", req.ID, "choice", outcome.Choice, "reason", outcome.Reason)
	cur.deferred.Resolve(outcome)

	r.mu.Lock()
	if r.current == cur {
		r.current = nil
	}
	r.mu.Unlock()
}

// Dismiss ends the running program, if any.
func (r *Renderer) Dismiss(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked(model.Dismissed(model.DismissReasonClose))
	return nil
}

// stopLocked ends the current program with outcome and waits for it to exit.
func (r *Renderer) stopLocked(outcome model.Outcome) {
	cur := r.current
	if cur == nil {
		return
	}
	r.current = nil

	cur.deferred.Resolve(outcome)
	cur.program.Send(closeMsg{outcome: outcome})

	// runProgram takes the lock after Run returns; release it while waiting
	r.mu.Unlock()
	<-cur.done
	r.mu.Lock()
}

// Wait blocks until the alert on screen finishes or ctx is done.
func (r *Renderer) Wait(ctx context.Context) error {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()

	if cur == nil {
		return nil
	}

	select {
	case <-cur.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
