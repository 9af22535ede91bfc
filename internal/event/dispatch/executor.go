package dispatch

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dshills/keybridge/internal/event/events"
)

// Executor runs handlers with panic recovery and timing.
type Executor struct {
	panicHandler PanicHandler
	now          func() time.Time
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorPanicHandler sets the callback invoked after a recovered panic.
func WithExecutorPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs handler for ev. A panic is recovered and reported through
// the result; it never propagates to the caller.
func (e *Executor) Execute(ctx context.Context, ev events.Event, handler Handler) (result Result) {
	if err := ctx.Err(); err != nil {
		return Result{Error: err, Skipped: true}
	}

	start := e.now()
	defer func() {
		result.Duration = e.now().Sub(start)

		if r := recover(); r != nil {
			stack := debug.Stack()
			result = Result{
				Panicked:   true,
				PanicValue: r,
				PanicStack: stack,
				Duration:   result.Duration,
			}
			if e.panicHandler != nil {
				func() {
					defer func() { _ = recover() }()
					e.panicHandler(ev, r, stack)
				}()
			}
		}
	}()

	if err := handler.Handle(ctx, ev); err != nil {
		return Result{Error: err}
	}
	return Result{Success: true}
}
