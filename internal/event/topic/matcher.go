package topic

import "sync"

// Matcher stores registration patterns and finds those matching a topic.
// It is safe for concurrent use.
type Matcher struct {
	mu   sync.RWMutex
	root *node
	size int
}

type node struct {
	children map[string]*node
	pattern  Topic
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newNode()}
}

// Add stores pattern. It reports false if the pattern was already present.
func (m *Matcher) Add(pattern Topic) bool {
	if !pattern.IsValid() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.root
	for _, seg := range pattern.Segments() {
		child := n.children[seg]
		if child == nil {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	if n.terminal {
		return false
	}
	n.terminal = true
	n.pattern = pattern
	m.size++
	return true
}

// Remove deletes pattern and prunes empty branches.
func (m *Matcher) Remove(pattern Topic) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	segs := pattern.Segments()
	path := make([]*node, 0, len(segs)+1)
	n := m.root
	path = append(path, n)
	for _, seg := range segs {
		n = n.children[seg]
		if n == nil {
			return false
		}
		path = append(path, n)
	}
	if !n.terminal {
		return false
	}
	n.terminal = false
	n.pattern = ""
	m.size--

	for i := len(segs); i > 0; i-- {
		cur := path[i]
		if cur.terminal || len(cur.children) > 0 {
			break
		}
		delete(path[i-1].children, segs[i-1])
	}
	return true
}

// Len returns the number of stored patterns.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Match returns every stored pattern matching the concrete topic t.
// Each pattern appears at most once; order is unspecified.
func (m *Matcher) Match(t Topic) []Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[Topic]struct{})
	var out []Topic
	collect(m.root, t.Segments(), seen, &out)
	return out
}

func collect(n *node, segs []string, seen map[Topic]struct{}, out *[]Topic) {
	if len(segs) == 0 && n.terminal {
		if _, ok := seen[n.pattern]; !ok {
			seen[n.pattern] = struct{}{}
			*out = append(*out, n.pattern)
		}
	}

	if multi := n.children[WildcardMulti]; multi != nil {
		for i := 0; i <= len(segs); i++ {
			collect(multi, segs[i:], seen, out)
		}
	}
	if len(segs) == 0 {
		return
	}
	if single := n.children[WildcardSingle]; single != nil {
		collect(single, segs[1:], seen, out)
	}
	if exact := n.children[segs[0]]; exact != nil {
		collect(exact, segs[1:], seen, out)
	}
}
