// Package events defines the domain event taxonomy: every notification that
// crosses from the editing core to the presentation runtime.
//
// Events are grouped by [Domain]. Each variant is a plain value struct whose
// fields are identifiers, enums, strings, numbers and copied slices; no event
// refers to editing-core state, so an event read long after emission still
// describes the moment it was emitted. Slices are copied on construction and
// on access.
//
// # Topics
//
// Each variant has a topic of the form <domain>.<variant>, see the Topic*
// constants. Handlers register against a domain, a variant, or a wildcard
// pattern (see package topic).
//
// # Coalescing
//
// Variants that describe a continuously changing value (selection, scroll,
// content, diagnostics, progress) are coalescible: a newer event with the same
// key supersedes an undelivered older one. Variants that describe a discrete,
// user-visible transition (opened, closed, mode changed, saved) are not, and
// are always delivered individually.
//
// # Versioning
//
// A breaking change to a variant's payload introduces a new variant with a new
// topic. The old variant is marked Deprecated and keeps its meaning.
package events
