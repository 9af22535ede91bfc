package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/config"
	"github.com/dshills/keybridge/internal/core"
	"github.com/dshills/keybridge/internal/event/events"
	"github.com/dshills/keybridge/internal/types"
)

// Dispatcher delivers one batch of events. *event.Bus implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch events.Batch) error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge's logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the clock driving the outbound debounce timer.
func WithClock(c coalesce.Clock) Option {
	return func(b *Bridge) {
		b.clock = c
	}
}

// WithTranslator installs t ahead of the built-in translation. When t
// returns an error matching ErrUntranslatable the built-in Translate is
// tried; any other result is used as is.
func WithTranslator(t Translator) Option {
	return func(b *Bridge) {
		if t != nil {
			b.extra = append(b.extra, t)
		}
	}
}

// Stats is a point-in-time view of the bridge counters.
type Stats struct {
	// Core to presentation.
	Translated        uint64
	TranslationErrors uint64
	Emitted           uint64
	Drained           uint64
	Outbound          coalesce.Stats

	// Presentation to core.
	Submitted    uint64
	Busy         uint64
	IntentErrors uint64
	Applied      uint64
	ApplyErrors  uint64
	Inbound      coalesce.Stats
}

// Bridge owns both pipelines between the core and the presentation runtime.
type Bridge struct {
	logger *slog.Logger
	clock  coalesce.Clock
	extra  []Translator

	out *coalesce.Stage[events.Event]
	in  *coalesce.Stage[core.Operation]

	translated        atomic.Uint64
	translationErrors atomic.Uint64
	emitted           atomic.Uint64
	drained           atomic.Uint64
	submitted         atomic.Uint64
	busy              atomic.Uint64
	intentErrors      atomic.Uint64
	applied           atomic.Uint64
	applyErrors       atomic.Uint64
}

// New creates a bridge sized by cfg.
func New(cfg config.Bridge, opts ...Option) *Bridge {
	b := &Bridge{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.out = coalesce.NewStage[events.Event](coalesce.Config{
		Capacity:       cfg.OutboundCapacity,
		MaxBatch:       cfg.MaxBatch,
		Debounce:       cfg.Debounce,
		Overflow:       coalesce.OverflowAdmit,
		DisableMerging: cfg.CoalesceDisabled,
		Clock:          b.clock,
	})
	b.in = coalesce.NewStage[core.Operation](coalesce.Config{
		Capacity:       cfg.InboundCapacity,
		Overflow:       coalesce.OverflowReject,
		DisableMerging: cfg.CoalesceDisabled,
		Ack:            true,
	})
	return b
}

// Attach registers one intake hook per notification category.
func (b *Bridge) Attach(src core.HookSource) {
	for _, c := range core.Categories {
		src.OnNotification(c, b.intake)
	}
}

func (b *Bridge) intake(n core.Notification) {
	if err := b.Emit(n); err != nil && !errors.Is(err, ErrClosed) {
		b.logger.Debug("notification dropped", "category", n.Category(), "err", err)
	}
}

// Translate maps n through the installed translators.
func (b *Bridge) Translate(n core.Notification) ([]events.Event, error) {
	for _, t := range b.extra {
		evs, err := t(n)
		if err == nil || !errors.Is(err, ErrUntranslatable) {
			return evs, err
		}
	}
	return Translate(n)
}

// Emit translates n and queues the resulting events for the presentation
// runtime. It never blocks.
func (b *Bridge) Emit(n core.Notification) error {
	evs, err := b.Translate(n)
	if err != nil {
		b.translationErrors.Add(1)
		return err
	}
	b.translated.Add(1)
	for _, ev := range evs {
		if err := b.out.Push(ev); err != nil {
			return err
		}
		b.emitted.Add(1)
	}
	return nil
}

// Ready is signaled when at least one outbound batch can be drained.
func (b *Bridge) Ready() <-chan struct{} {
	return b.out.Ready()
}

// Done is closed by Close.
func (b *Bridge) Done() <-chan struct{} {
	return b.out.Done()
}

// Flush seals the pending outbound batch so the next Drain delivers it.
func (b *Bridge) Flush() error {
	return b.out.Flush()
}

// Drain dispatches every ready outbound batch through d and returns the
// number of events delivered. It never waits for new events.
func (b *Bridge) Drain(ctx context.Context, d Dispatcher) (int, error) {
	n := 0
	for {
		batch, ok, err := b.out.TryReceive()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		b.drained.Add(uint64(batch.Len()))
		n += batch.Len()
		if err := d.Dispatch(ctx, batch); err != nil {
			return n, err
		}
	}
}

// Submit translates an intent and queues the operation for the core. It
// never blocks; a full queue yields ErrCoreBusy. The outcome is reported
// later as an editor.command_executed or editor.operation_failed event
// carrying the returned correlation.
func (b *Bridge) Submit(in Intent) (types.Correlation, error) {
	id := core.NewCorrelation()
	op, err := Operation(in, id)
	if err != nil {
		b.intentErrors.Add(1)
		b.logger.Debug("intent dropped", "err", err)
		return "", err
	}
	switch err := b.in.Push(op); {
	case errors.Is(err, coalesce.ErrFull):
		b.busy.Add(1)
		return "", ErrCoreBusy
	case err != nil:
		return "", err
	}
	b.submitted.Add(1)
	return id, nil
}

// ServeCore applies submitted operations in FIFO order until ctx is done
// or the bridge is closed. Run it as one of the core loop's tasks.
func (b *Bridge) ServeCore(ctx context.Context, a core.Applier) error {
	for {
		if err := b.applyReady(ctx, a); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-b.in.Done():
			return nil
		case <-b.in.Ready():
		}
	}
}

func (b *Bridge) applyReady(ctx context.Context, a core.Applier) error {
	for {
		batch, ok, err := b.in.TryReceive()
		if err != nil || !ok {
			return err
		}
		b.applyBatch(ctx, a, batch.Items)
		b.in.Release(batch.Len())
		if ctx.Err() != nil {
			return nil
		}
	}
}

// applyBatch applies ops in order. Each Apply returns once the core has
// run the operation.
func (b *Bridge) applyBatch(ctx context.Context, a core.Applier, ops []core.Operation) {
	for _, op := range ops {
		if ctx.Err() != nil {
			return
		}
		if err := a.Apply(ctx, op); err != nil {
			b.applyErrors.Add(1)
			b.logger.Debug("operation rejected", "op", op.Name(), "correlation", op.Correlation(), "err", err)
			continue
		}
		b.applied.Add(1)
	}
}

// Close shuts both pipelines and discards everything in flight. It is
// idempotent.
func (b *Bridge) Close() {
	b.out.Close()
	b.in.Close()
	b.logger.Info("bridge closed")
}

// Stats returns the current counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Translated:        b.translated.Load(),
		TranslationErrors: b.translationErrors.Load(),
		Emitted:           b.emitted.Load(),
		Drained:           b.drained.Load(),
		Outbound:          b.out.Stats(),
		Submitted:         b.submitted.Load(),
		Busy:              b.busy.Load(),
		IntentErrors:      b.intentErrors.Load(),
		Applied:           b.applied.Load(),
		ApplyErrors:       b.applyErrors.Load(),
		Inbound:           b.in.Stats(),
	}
}
