package capability

import (
	"sync"

	"github.com/google/uuid"
)

// Table maps opaque ids to behavior values that cannot travel inside an
// event, such as prompt callbacks. Events carry the id; the receiver takes
// the behavior out of the table.
type Table[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{items: make(map[string]V)}
}

// Put stores v under a fresh id.
func (t *Table[V]) Put(v V) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.items[id] = v
	t.mu.Unlock()
	return id
}

// Get returns the value stored under id.
func (t *Table[V]) Get(id string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[id]
	return v, ok
}

// Take returns and removes the value stored under id.
func (t *Table[V]) Take(id string) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[id]
	if ok {
		delete(t.items, id)
	}
	return v, ok
}

// Len returns the number of stored values.
func (t *Table[V]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}
