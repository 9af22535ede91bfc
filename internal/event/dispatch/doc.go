// Package dispatch executes domain event handlers with panic recovery.
//
// The bus resolves which handlers an event reaches; this package runs them.
// A handler that returns an error or panics yields a Result describing the
// failure instead of unwinding the caller, so one broken handler never stops
// delivery to the remaining handlers in a batch.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher(dispatch.NewExecutor(
//	    dispatch.WithExecutorPanicHandler(func(ev events.Event, v any, stack []byte) {
//	        logger.Error("handler panic", "topic", ev.Topic(), "value", v)
//	    }),
//	))
//	result := d.Dispatch(ctx, ev, handler)
//	if result.IsPanic() || result.IsError() {
//	    // report result.Error or result.PanicValue
//	}
package dispatch
