package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dshills/keybridge/internal/event/dispatch"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/event/topic"
)

// Handler processes domain events delivered by the bus.
type Handler = dispatch.Handler

// HandlerFunc adapts a function to Handler.
type HandlerFunc = dispatch.HandlerFunc

// Stats contains bus counters.
type Stats struct {
	// Batches is the number of batches dispatched.
	Batches uint64

	// Events is the number of events dispatched, matched or not.
	Events uint64

	// Unhandled is the number of events that matched no registration.
	Unhandled uint64

	// HandlerCalls is the number of handler invocations.
	HandlerCalls uint64

	// HandlerErrors is the number of handlers that returned an error.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// HandlerTime is the total time spent inside handlers.
	HandlerTime time.Duration

	// Registrations is the current number of registrations.
	Registrations int
}

// Bus routes domain events to registered handlers.
// Register and Unregister are safe for concurrent use; Dispatch is intended
// to be called from a single goroutine.
type Bus struct {
	registry   *registry
	dispatcher *dispatch.SyncDispatcher
	logger     *slog.Logger
	reporter   ErrorReporter

	batches   atomic.Uint64
	events    atomic.Uint64
	unhandled atomic.Uint64
}

// NewBus creates a bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.reporter == nil {
		cfg.reporter = LogReporter{Logger: cfg.logger}
	}
	return &Bus{
		registry:   newRegistry(),
		dispatcher: dispatch.NewSyncDispatcher(nil),
		logger:     cfg.logger,
		reporter:   cfg.reporter,
	}
}

// Register adds handler for pattern. A bare domain name such as "document"
// registers for every variant of that domain.
func (b *Bus) Register(pattern topic.Topic, handler Handler) (Registration, error) {
	if handler == nil {
		return Registration{}, ErrNilHandler
	}
	pattern = pattern.Scope()
	if !pattern.IsValid() {
		return Registration{}, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	reg := b.registry.add(pattern, handler)
	b.logger.Debug("handler registered", "id", reg.ID, "pattern", reg.Pattern)
	return reg, nil
}

// RegisterFunc is Register for a plain function.
func (b *Bus) RegisterFunc(pattern topic.Topic, fn func(context.Context, events.Event) error) (Registration, error) {
	if fn == nil {
		return Registration{}, ErrNilHandler
	}
	return b.Register(pattern, HandlerFunc(fn))
}

// Unregister removes a registration.
func (b *Bus) Unregister(reg Registration) error {
	if !b.registry.remove(reg.ID) {
		return ErrRegistrationNotFound
	}
	return nil
}

// Dispatch delivers every event of batch in order. Handler failures are
// reported and counted but do not stop delivery. Dispatch returns early only
// when ctx is done.
func (b *Bus) Dispatch(ctx context.Context, batch events.Batch) error {
	b.batches.Add(1)
	for _, ev := range batch.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.deliver(ctx, ev)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, ev events.Event) {
	b.events.Add(1)
	t := ev.Topic()

	matched := b.registry.match(t)
	if len(matched) == 0 {
		b.unhandled.Add(1)
		return
	}

	for _, e := range matched {
		result := b.dispatcher.Dispatch(ctx, ev, e.handler)
		if result.Skipped {
			return
		}

		switch {
		case result.IsPanic():
			b.reporter.Report(ctx, &PanicError{
				Registration: e.reg,
				Topic:        t,
				Value:        result.PanicValue,
				Stack:        string(result.PanicStack),
			})
		case result.IsError():
			b.reporter.Report(ctx, &HandlerError{Registration: e.reg, Topic: t, Err: result.Error})
		}
	}
}

// Stats returns the current counters.
func (b *Bus) Stats() Stats {
	d := b.dispatcher.Stats()
	return Stats{
		Batches:       b.batches.Load(),
		Events:        b.events.Load(),
		Unhandled:     b.unhandled.Load(),
		HandlerCalls:  d.Dispatched - d.Skipped,
		HandlerErrors: d.Failed,
		HandlerPanics: d.Panicked,
		HandlerTime:   time.Duration(d.TotalNs),
		Registrations: b.registry.count(),
	}
}
