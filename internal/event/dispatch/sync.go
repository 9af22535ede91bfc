package dispatch

import (
	"context"
	"sync/atomic"

	"github.com/dshills/keybridge/internal/event/events"
)

// SyncDispatcher executes handlers in the caller's goroutine and counts
// outcomes.
type SyncDispatcher struct {
	executor *Executor

	dispatched  atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	skipped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a synchronous dispatcher running handlers
// through executor. A nil executor gets the defaults.
func NewSyncDispatcher(executor *Executor) *SyncDispatcher {
	if executor == nil {
		executor = NewExecutor()
	}
	return &SyncDispatcher{executor: executor}
}

// Dispatch runs handler for ev and blocks until it returns or panics.
func (d *SyncDispatcher) Dispatch(ctx context.Context, ev events.Event, handler Handler) Result {
	d.dispatched.Add(1)
	result := d.executor.Execute(ctx, ev, handler)
	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	switch {
	case result.Skipped:
		d.skipped.Add(1)
	case result.Panicked:
		d.panicked.Add(1)
	case result.Error != nil:
		d.failed.Add(1)
	default:
		d.succeeded.Add(1)
	}
	return result
}

// SyncStats contains dispatcher counters.
type SyncStats struct {
	Dispatched uint64
	Succeeded  uint64
	Failed     uint64
	Panicked   uint64
	Skipped    uint64
	TotalNs    int64
}

// Stats returns the current counters.
func (d *SyncDispatcher) Stats() SyncStats {
	return SyncStats{
		Dispatched: d.dispatched.Load(),
		Succeeded:  d.succeeded.Load(),
		Failed:     d.failed.Load(),
		Panicked:   d.panicked.Load(),
		Skipped:    d.skipped.Load(),
		TotalNs:    d.totalTimeNs.Load(),
	}
}
