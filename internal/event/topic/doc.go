// Package topic provides hierarchical topic names and pattern matching used to
// route domain events.
//
// # Topic Format
//
// Every domain event has a topic of the form <domain>.<variant>, optionally with
// further segments for grouped variants:
//
//	document.content_changed
//	view.selection_changed
//	lsp.progress.updated
//	vcs.status_changed
//
// # Patterns
//
// Registrations use patterns. Two wildcards are supported:
//
//   - "*" matches exactly one segment
//   - "**" matches zero or more segments
//
// A bare domain name such as "document" is shorthand for "document.**" and is
// expanded by [Topic.Scope].
//
//	document          every document event
//	lsp.progress.*    progress started, updated and completed
//	*.closed          document.closed and view.closed
//	**                everything
//
// # Matching
//
// [Matcher] stores patterns in a trie and returns every stored pattern that
// matches a concrete topic in O(k) per wildcard branch, where k is the number
// of segments.
package topic
