// Package bridge connects the editing core and the presentation runtime.
//
// Two pipelines run through a Bridge, each behind its own bounded
// coalescing stage:
//
//	core hooks ──Translate──▶ outbound stage ──Drain──▶ event bus ──▶ handlers
//	presentation ──Submit──▶ inbound stage ──ServeCore──▶ core.Applier
//
// Neither side ever blocks on the other. Emit and Submit push without
// waiting; the presentation loop polls Drain when Ready fires and the core
// runs ServeCore as one of its tasks. Translation failures are counted and
// dropped. Closing the bridge discards everything in flight.
package bridge
