package event

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/keybridge/internal/event/dispatch"
	"github.com/dshills/keybridge/internal/event/topic"
)

// Registration identifies a handler registered with a Bus.
type Registration struct {
	ID      string
	Pattern topic.Topic

	seq uint64
}

type entry struct {
	reg     Registration
	handler dispatch.Handler
}

// registry holds registrations keyed by pattern. Match returns entries in
// registration order across all matching patterns.
type registry struct {
	mu      sync.RWMutex
	seq     uint64
	byTopic map[topic.Topic][]*entry
	byID    map[string]*entry
	matcher *topic.Matcher
}

func newRegistry() *registry {
	return &registry{
		byTopic: make(map[topic.Topic][]*entry),
		byID:    make(map[string]*entry),
		matcher: topic.NewMatcher(),
	}
}

func (r *registry) add(pattern topic.Topic, h dispatch.Handler) Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	e := &entry{
		reg:     Registration{ID: uuid.NewString(), Pattern: pattern, seq: r.seq},
		handler: h,
	}
	r.byTopic[pattern] = append(r.byTopic[pattern], e)
	r.byID[e.reg.ID] = e
	r.matcher.Add(pattern)
	return e.reg
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)

	pattern := e.reg.Pattern
	r.byTopic[pattern] = slices.DeleteFunc(r.byTopic[pattern], func(x *entry) bool {
		return x.reg.ID == id
	})
	if len(r.byTopic[pattern]) == 0 {
		delete(r.byTopic, pattern)
		r.matcher.Remove(pattern)
	}
	return true
}

func (r *registry) match(t topic.Topic) []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entry
	for _, p := range r.matcher.Match(t) {
		out = append(out, r.byTopic[p]...)
	}
	slices.SortFunc(out, func(a, b *entry) int {
		return cmp.Compare(a.reg.seq, b.reg.seq)
	})
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
