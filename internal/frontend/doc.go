// Package frontend is the terminal presentation runtime.
//
// An App owns a tcell screen. It turns terminal input into bridge intents,
// drains bridge batches into its own event bus, and keeps a Model built
// only from domain events and capability reads. It never touches core
// state directly: document text comes from capability.DocumentAccess
// snapshots, and everything else arrives as events.
//
// The App provides the presentation traits (completion, status line and
// pickers) in the capability registry it is given.
package frontend
