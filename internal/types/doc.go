// Package types holds the value types shared by both sides of the bridge:
// identifiers, positions, modes, severities and other plain data.
//
// Nothing in this package references editing-core state. Every type is safe to
// copy across the runtime boundary.
package types
