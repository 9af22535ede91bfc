package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Loop is a single-goroutine FIFO task loop. Tasks posted from any
// goroutine run one at a time, in posting order, on the goroutine that
// called Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	stopped chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup

	logger *slog.Logger
}

// NewLoop creates a loop. A nil logger discards output.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Post queues fn without blocking.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLoopClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Call posts fn and waits until it has run. It returns ErrLoopClosed if the
// loop stops first. Call must not be used from the loop goroutine.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if err := l.Post(func() {
		defer close(ran)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopClosed
	}
}

// Go starts a long-lived sub-task. Run waits for every sub-task before it
// returns. A sub-task's error is logged; it does not stop the loop.
func (l *Loop) Go(ctx context.Context, name string, task func(context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := task(ctx); err != nil && ctx.Err() == nil {
			l.logger.Error("core task failed", "task", name, "err", err)
		}
	}()
}

// Run executes posted tasks until ctx is done. Tasks still queued at that
// point are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			dropped := len(l.queue)
			l.queue = nil
			l.mu.Unlock()
			l.stop.Do(func() { close(l.stopped) })
			l.logger.Debug("core loop stopped", "dropped", dropped)
			return nil
		case <-l.wake:
			l.drain()
		}
	}
}

// RunPending executes every queued task on the calling goroutine and
// returns how many ran. It is meant for tests that drive the loop by hand.
func (l *Loop) RunPending() int {
	return l.drain()
}

func (l *Loop) drain() int {
	n := 0
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			l.run(fn)
			n++
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("core task panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	fn()
}
