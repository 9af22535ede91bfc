// Package capability defines the narrow interfaces each runtime exposes to
// the other and a process-wide registry for exchanging them.
//
// Traits implemented by the editing core:
//
//	DocumentAccess    read-only document snapshots
//	ViewManagement    active view query and focus changes
//	CommandExecutor   command lookup and asynchronous execution
//	ScrollManager     scroll offset query and scrolling
//
// Traits implemented by the presentation runtime:
//
//	CompletionSurface completion menu
//	StatusSurface     status line
//	PickerSurface     picker overlays
//
// Every trait method is non-blocking. A missing subject yields an explicit
// not-found result; trait methods never panic. A trait that has not been
// provided yet is reported by Lookup returning false, and callers degrade
// gracefully.
package capability
