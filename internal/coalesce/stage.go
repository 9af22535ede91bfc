package coalesce

import (
	"sync"
	"time"
)

// Key identifies the logical subject of an item, e.g. the kind
// "view.selection_changed" with ID "view-1".
type Key struct {
	Kind string
	ID   string
}

// Item is anything a Stage can hold.
type Item interface {
	// CoalesceKey returns the identity used for last-write-wins merging.
	CoalesceKey() Key

	// Coalescible reports whether a newer item with the same key may
	// supersede this one. Discrete transitions must return false.
	Coalescible() bool
}

// Batch is an ordered group of items sealed by one coalescing cycle.
type Batch[T Item] struct {
	// Seq increases by one for every batch a stage seals.
	Seq uint64

	// Items are in first-arrival order.
	Items []T
}

// Len returns the number of items in the batch.
func (b Batch[T]) Len() int {
	return len(b.Items)
}

// Overflow selects what happens when a full stage holds nothing droppable.
type Overflow int

const (
	// OverflowAdmit accepts non-coalescible items above capacity.
	OverflowAdmit Overflow = iota

	// OverflowReject refuses the push with ErrFull.
	OverflowReject
)

// String returns the policy name.
func (o Overflow) String() string {
	switch o {
	case OverflowAdmit:
		return "admit"
	case OverflowReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Config configures a Stage.
type Config struct {
	// Capacity bounds the number of held items. Defaults to 1024.
	Capacity int

	// MaxBatch seals the pending window when it reaches this many items.
	// Defaults to Capacity.
	MaxBatch int

	// Debounce is how long the pending window stays open after its first
	// item. Zero or negative seals every push immediately.
	Debounce time.Duration

	// Overflow is the full-stage policy for non-coalescible items.
	Overflow Overflow

	// DisableMerging turns off last-write-wins merging inside the pending
	// window. Capacity pruning still applies.
	DisableMerging bool

	// Ack keeps received items counted against Capacity until the consumer
	// hands them back with Release.
	Ack bool

	// Clock defaults to SystemClock.
	Clock Clock
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.MaxBatch <= 0 || c.MaxBatch > c.Capacity {
		c.MaxBatch = c.Capacity
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// Stats is a point-in-time view of stage counters.
type Stats struct {
	Pushed       uint64
	Coalesced    uint64
	Dropped      uint64
	Rejected     uint64
	OverCapacity uint64
	Sealed       uint64
	Received     uint64
	Held         int
	InFlight     int
	HighWater    int
}

// Stage is an ordered, bounded, coalescing multi-producer single-consumer
// queue. All methods are safe for concurrent use.
type Stage[T Item] struct {
	cfg Config

	mu      sync.Mutex
	pending []T
	index   map[Key]int
	opened  time.Time
	timer   Timer
	ready   []Batch[T]
	held    int
	flight  int
	seq     uint64
	closed  bool
	stats   Stats

	notify chan struct{}
	done   chan struct{}
}

// NewStage creates a stage.
func NewStage[T Item](cfg Config) *Stage[T] {
	return &Stage[T]{
		cfg:    cfg.withDefaults(),
		index:  make(map[Key]int),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Config returns the effective configuration.
func (s *Stage[T]) Config() Config {
	return s.cfg
}

// Ready is signaled whenever a batch is sealed.
func (s *Stage[T]) Ready() <-chan struct{} {
	return s.notify
}

// Done is closed when the stage is closed.
func (s *Stage[T]) Done() <-chan struct{} {
	return s.done
}

// Push adds an item without blocking.
func (s *Stage[T]) Push(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.stats.Pushed++

	key := item.CoalesceKey()
	merge := item.Coalescible()

	if merge && !s.cfg.DisableMerging {
		if i, ok := s.index[key]; ok {
			s.pending[i] = item
			s.stats.Coalesced++
			return nil
		}
	}

	if s.held >= s.cfg.Capacity {
		// Only slots since the last barrier may be replaced; anything
		// older would move the new value ahead of that barrier.
		if i, ok := s.index[key]; ok && merge {
			s.pending[i] = item
			s.stats.Coalesced++
			return nil
		}
		if !s.dropOldest() {
			switch {
			case s.cfg.Overflow == OverflowReject:
				s.stats.Rejected++
				return ErrFull
			case merge:
				s.stats.Dropped++
				return nil
			default:
				s.stats.OverCapacity++
			}
		}
	}

	if merge {
		s.index[key] = len(s.pending)
	} else {
		clear(s.index)
	}
	s.pending = append(s.pending, item)
	s.held++
	if s.held > s.stats.HighWater {
		s.stats.HighWater = s.held
	}

	switch {
	case s.cfg.Debounce <= 0 || len(s.pending) >= s.cfg.MaxBatch:
		s.seal()
	case len(s.pending) == 1:
		s.opened = s.cfg.Clock.Now()
		s.timer = s.cfg.Clock.AfterFunc(s.cfg.Debounce, s.expire)
	}
	return nil
}

// Flush seals the pending window immediately.
func (s *Stage[T]) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.seal()
	return nil
}

// TryReceive returns the oldest sealed batch without blocking. A pending
// window whose debounce interval has elapsed is sealed first.
func (s *Stage[T]) TryReceive() (Batch[T], bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Batch[T]{}, false, ErrClosed
	}
	if s.due() {
		s.seal()
	}
	if len(s.ready) == 0 {
		return Batch[T]{}, false, nil
	}

	b := s.ready[0]
	s.ready[0] = Batch[T]{}
	s.ready = s.ready[1:]
	if s.cfg.Ack {
		s.flight += len(b.Items)
	} else {
		s.held -= len(b.Items)
	}
	s.stats.Received++
	if len(s.ready) > 0 {
		s.signal()
	}
	return b, true, nil
}

// Release returns n received items to the stage's capacity. It only has an
// effect when Config.Ack is set.
func (s *Stage[T]) Release(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.cfg.Ack {
		return
	}
	n = min(n, s.flight)
	if n <= 0 {
		return
	}
	s.flight -= n
	s.held -= n
}

// Len returns the number of held items, including received items not yet
// released.
func (s *Stage[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Stats returns a snapshot of the counters.
func (s *Stage[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Held = s.held
	st.InFlight = s.flight
	return st
}

// Close discards every held item and wakes consumers. Close is idempotent.
func (s *Stage[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.ready = nil
	s.held = 0
	s.flight = 0
	clear(s.index)
	close(s.done)
}

func (s *Stage[T]) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.due() {
		s.seal()
	}
}

func (s *Stage[T]) due() bool {
	if len(s.pending) == 0 || s.cfg.Debounce <= 0 {
		return false
	}
	return s.cfg.Clock.Now().Sub(s.opened) >= s.cfg.Debounce
}

// seal must be called with mu held.
func (s *Stage[T]) seal() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.pending) == 0 {
		return
	}
	s.seq++
	s.ready = append(s.ready, Batch[T]{Seq: s.seq, Items: s.pending})
	s.pending = nil
	clear(s.index)
	s.stats.Sealed++
	s.signal()
}

func (s *Stage[T]) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// dropOldest removes the oldest held coalescible item.
func (s *Stage[T]) dropOldest() bool {
	for b := range s.ready {
		items := s.ready[b].Items
		for i := range items {
			if !items[i].Coalescible() {
				continue
			}
			s.ready[b].Items = append(items[:i:i], items[i+1:]...)
			if len(s.ready[b].Items) == 0 {
				s.ready = append(s.ready[:b:b], s.ready[b+1:]...)
			}
			s.held--
			s.stats.Dropped++
			return true
		}
	}
	for i := range s.pending {
		if !s.pending[i].Coalescible() {
			continue
		}
		s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
		for k, pos := range s.index {
			switch {
			case pos == i:
				delete(s.index, k)
			case pos > i:
				s.index[k] = pos - 1
			}
		}
		if len(s.pending) == 0 && s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		s.held--
		s.stats.Dropped++
		return true
	}
	return false
}
