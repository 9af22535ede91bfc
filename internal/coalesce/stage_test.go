package coalesce

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Kind  string
	ID    string
	Value int
	Merge bool
}

func (i item) CoalesceKey() Key  { return Key{Kind: i.Kind, ID: i.ID} }
func (i item) Coalescible() bool { return i.Merge }

func sel(view string, v int) item { return item{Kind: "sel", ID: view, Value: v, Merge: true} }
func closed(doc string) item      { return item{Kind: "closed", ID: doc} }

func drain(t *testing.T, s *Stage[item]) []item {
	t.Helper()
	var out []item
	for {
		b, ok, err := s.TryReceive()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, b.Items...)
	}
}

func newTestStage(cfg Config) (*Stage[item], *ManualClock) {
	clock := NewManualClock(time.Unix(0, 0))
	cfg.Clock = clock
	return NewStage[item](cfg), clock
}

func TestStage_MergesSameKeyInWindow(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 64, Debounce: 10 * time.Millisecond})

	require.NoError(t, s.Push(sel("v1", 0)))
	require.NoError(t, s.Push(sel("v2", 0)))
	for i := 1; i <= 50; i++ {
		require.NoError(t, s.Push(sel("v1", i)))
	}
	require.NoError(t, s.Flush())

	want := []item{sel("v1", 50), sel("v2", 0)}
	if diff := cmp.Diff(want, drain(t, s)); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(50), s.Stats().Coalesced)
}

func TestStage_BurstThenCloseDeliversLastSelection(t *testing.T) {
	s, clock := newTestStage(Config{Capacity: 64, Debounce: 16 * time.Millisecond})

	require.NoError(t, s.Push(sel("v1", 0)))
	for i := 1; i < 50; i++ {
		require.NoError(t, s.Push(sel("v1", i)))
	}
	require.NoError(t, s.Push(closed("d7")))
	clock.Advance(16 * time.Millisecond)

	want := []item{sel("v1", 49), closed("d7")}
	if diff := cmp.Diff(want, drain(t, s)); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestStage_NonCoalescibleIsBarrier(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 64, Debounce: time.Second})

	s.Push(sel("v1", 1))
	s.Push(closed("d7"))
	s.Push(sel("v1", 2))
	s.Push(sel("v1", 3))
	s.Flush()

	want := []item{sel("v1", 1), closed("d7"), sel("v1", 3)}
	assert.Equal(t, want, drain(t, s))
}

func TestStage_NonCoalescibleNeverMerged(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 64, Debounce: time.Second})

	s.Push(closed("d1"))
	s.Push(closed("d1"))
	s.Flush()

	assert.Len(t, drain(t, s), 2)
	assert.Zero(t, s.Stats().Coalesced)
}

func TestStage_DebounceSealsWindow(t *testing.T) {
	s, clock := newTestStage(Config{Capacity: 64, Debounce: 16 * time.Millisecond})

	s.Push(sel("v1", 1))
	_, ok, err := s.TryReceive()
	require.NoError(t, err)
	assert.False(t, ok, "window still open")

	clock.Advance(8 * time.Millisecond)
	s.Push(sel("v1", 2))
	_, ok, _ = s.TryReceive()
	assert.False(t, ok, "debounce measured from first arrival")

	clock.Advance(8 * time.Millisecond)
	select {
	case <-s.Ready():
	default:
		t.Fatal("expected ready signal after debounce")
	}

	b, ok, err := s.TryReceive()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), b.Seq)
	assert.Equal(t, []item{sel("v1", 2)}, b.Items)
	assert.Zero(t, clock.Pending())
}

func TestStage_TryReceiveSealsExpiredWindow(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	// A clock whose timers never fire still seals on receive.
	s := NewStage[item](Config{Capacity: 8, Debounce: time.Millisecond, Clock: frozenTimers{clock}})

	s.Push(sel("v1", 1))
	clock.Advance(time.Millisecond)

	b, ok, err := s.TryReceive()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, b.Len())
}

type frozenTimers struct{ *ManualClock }

func (f frozenTimers) AfterFunc(time.Duration, func()) Timer { return stopped{} }

type stopped struct{}

func (stopped) Stop() bool { return false }

func TestStage_MaxBatchSeals(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 64, MaxBatch: 3, Debounce: time.Hour})

	for i := 0; i < 7; i++ {
		s.Push(sel(fmt.Sprintf("v%d", i), i))
	}

	var sizes []int
	for {
		b, ok, _ := s.TryReceive()
		if !ok {
			break
		}
		sizes = append(sizes, b.Len())
	}
	assert.Equal(t, []int{3, 3}, sizes)
	assert.Equal(t, 1, s.Len(), "seventh item still pending")
}

func TestStage_ZeroDebounceSealsEveryPush(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 8})

	s.Push(sel("v1", 1))
	s.Push(sel("v1", 2))

	b1, ok, _ := s.TryReceive()
	require.True(t, ok)
	b2, ok, _ := s.TryReceive()
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2}, []uint64{b1.Seq, b2.Seq})
}

func TestStage_OverflowDropsOldestCoalescible(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 11, Debounce: time.Hour})

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Push(item{Kind: "diag", ID: fmt.Sprintf("d%d", i), Merge: true}))
	}
	require.NoError(t, s.Push(closed("buf")))
	require.Equal(t, 11, s.Len())

	for i := 0; i < 100; i++ {
		require.NoError(t, s.Push(item{Kind: "diag", ID: fmt.Sprintf("n%d", i), Merge: true}))
		require.LessOrEqual(t, s.Len(), 11)
	}
	s.Flush()

	got := drain(t, s)
	assert.Len(t, got, 11)
	assert.Contains(t, got, closed("buf"))
	assert.Equal(t, uint64(100), s.Stats().Dropped)
}

func TestStage_OverflowNeverMergesIntoSealedBatches(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 2})

	require.NoError(t, s.Push(sel("v1", 1)))
	require.NoError(t, s.Push(closed("d7")))
	require.NoError(t, s.Push(sel("v1", 2)))

	want := []item{closed("d7"), sel("v1", 2)}
	if diff := cmp.Diff(want, drain(t, s)); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
	st := s.Stats()
	assert.Zero(t, st.Coalesced)
	assert.Equal(t, uint64(1), st.Dropped)
}

func TestStage_OverflowKeepsOrderAcrossBarrier(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 3, Debounce: time.Hour})

	require.NoError(t, s.Push(sel("v1", 1)))
	require.NoError(t, s.Push(closed("d7")))
	require.NoError(t, s.Push(sel("v2", 0)))
	require.NoError(t, s.Push(sel("v1", 2)))
	require.NoError(t, s.Flush())

	want := []item{closed("d7"), sel("v2", 0), sel("v1", 2)}
	if diff := cmp.Diff(want, drain(t, s)); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(1), s.Stats().Dropped)
}

func TestStage_OverflowPrunesWindowWithMergingDisabled(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 3, Debounce: time.Hour, DisableMerging: true})

	require.NoError(t, s.Push(closed("d7")))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Push(sel("v1", 1)))
	require.NoError(t, s.Push(sel("v2", 0)))
	require.NoError(t, s.Push(sel("v1", 2)))
	require.NoError(t, s.Flush())

	want := []item{closed("d7"), sel("v1", 2), sel("v2", 0)}
	if diff := cmp.Diff(want, drain(t, s)); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
	st := s.Stats()
	assert.Equal(t, uint64(1), st.Coalesced)
	assert.Zero(t, st.Dropped)
}

func TestStage_OverflowAdmitKeepsTransitions(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 2, Overflow: OverflowAdmit})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Push(closed(fmt.Sprintf("d%d", i))))
	}
	require.NoError(t, s.Push(sel("v1", 1)), "coalescible drop is silent")

	st := s.Stats()
	assert.Equal(t, 3, st.Held)
	assert.Equal(t, uint64(1), st.OverCapacity)
	assert.Equal(t, uint64(1), st.Dropped)
}

func TestStage_OverflowReject(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 2, Overflow: OverflowReject})

	require.NoError(t, s.Push(closed("a")))
	require.NoError(t, s.Push(closed("b")))
	assert.ErrorIs(t, s.Push(closed("c")), ErrFull)
	assert.ErrorIs(t, s.Push(sel("v", 1)), ErrFull)
	assert.Equal(t, uint64(2), s.Stats().Rejected)

	_, ok, _ := s.TryReceive()
	require.True(t, ok)
	assert.NoError(t, s.Push(closed("c")))
}

func TestStage_AckHoldsCapacityUntilRelease(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 2, Overflow: OverflowReject, Ack: true})

	require.NoError(t, s.Push(closed("a")))
	require.NoError(t, s.Push(closed("b")))
	b, ok, err := s.TryReceive()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, b.Len())

	assert.ErrorIs(t, s.Push(closed("c")), ErrFull)
	st := s.Stats()
	assert.Equal(t, 2, st.Held)
	assert.Equal(t, 1, st.InFlight)

	s.Release(b.Len())
	require.NoError(t, s.Push(closed("c")))
	assert.Equal(t, 0, s.Stats().InFlight)

	s.Release(10)
	assert.Equal(t, 2, s.Len())
}

func TestStage_DisableMerging(t *testing.T) {
	s, _ := newTestStage(Config{Capacity: 8, Debounce: time.Hour, DisableMerging: true})

	s.Push(sel("v1", 1))
	s.Push(sel("v1", 2))
	s.Flush()

	assert.Len(t, drain(t, s), 2)
}

func TestStage_Close(t *testing.T) {
	s, clock := newTestStage(Config{Capacity: 8, Debounce: time.Second})
	s.Push(sel("v1", 1))

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
	_, _, err := s.TryReceive()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Push(sel("v1", 2)), ErrClosed)
	assert.ErrorIs(t, s.Flush(), ErrClosed)
	assert.Zero(t, s.Len())
	assert.Zero(t, clock.Pending())
}

func TestStage_ConcurrentProducersPreserveOrder(t *testing.T) {
	s := NewStage[item](Config{Capacity: 10000, Debounce: time.Millisecond})

	const producers, perProducer = 8, 200
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = s.Push(item{Kind: "op", ID: fmt.Sprintf("p%d", p), Value: i})
			}
		}(p)
	}
	wg.Wait()
	require.NoError(t, s.Flush())

	last := make(map[string]int)
	count := 0
	for _, it := range drain(t, s) {
		prev, seen := last[it.ID]
		if seen {
			require.Greater(t, it.Value, prev, "per-producer order")
		}
		last[it.ID] = it.Value
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{MaxBatch: 5000}.withDefaults()
	assert.Equal(t, 1024, cfg.Capacity)
	assert.Equal(t, 1024, cfg.MaxBatch)
	assert.IsType(t, SystemClock{}, cfg.Clock)
	assert.Equal(t, "reject", OverflowReject.String())
}
