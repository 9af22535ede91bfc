// Package core is a small reference editing core.
//
// It owns documents, views, the modal state, diagnostics and language-server
// sessions, and runs everything on a single cooperative Loop. State changes
// are announced to registered hooks as Notifications. Notifications hold
// live pointers into core state and must be translated before they leave
// the loop goroutine.
//
// Work from other goroutines reaches the core in two ways: Operations
// applied through an Applier, and the capability implementations returned
// by Capabilities, which read an immutable snapshot and schedule any writes
// on the loop.
package core
