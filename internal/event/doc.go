// Package event provides the Domain Event Bus.
//
// The bus is the presentation side's fan-out point. Handlers register against
// a topic pattern; the bridge hands the bus sealed batches of domain events
// which are delivered on the caller's goroutine, normally the presentation
// loop.
//
// # Patterns
//
// A registration pattern is one of:
//
//	document             - every event of the document domain (document.**)
//	document.closed      - one variant
//	*.closed             - one variant name across domains
//	lsp.progress.*       - one segment below a prefix
//	**                   - everything
//
// # Delivery
//
// Dispatch walks a batch in order. For each event, every matching
// registration is invoked exactly once, in registration order. A handler
// that returns an error or panics is reported through the ErrorReporter and
// counted; delivery to the remaining handlers continues.
//
// # Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//	reg, err := bus.RegisterFunc("document", func(ctx context.Context, ev events.Event) error {
//	    if closed, ok := ev.(events.DocumentClosed); ok {
//	        tabs.Remove(closed.Doc)
//	    }
//	    return nil
//	})
//	...
//	bus.Dispatch(ctx, batch)
package event
