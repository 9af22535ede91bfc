// Package coalesce implements the bounded, keyed batching stage that sits in
// front of each bridge channel.
//
// A [Stage] holds items in two regions: a pending window that is still open for
// coalescing, and a queue of sealed batches waiting for the consumer. Items
// report a [Key] and whether they are coalescible. Within the pending window a
// coalescible item replaces the pending item with the same key (last write
// wins, position of the first arrival kept). A non-coalescible item is a
// barrier: later items never merge with entries that arrived before it.
//
// The window is sealed into a [Batch] when the debounce interval elapses after
// its first item, when it reaches the maximum batch size, or when [Stage.Flush]
// is called.
//
// # Backpressure
//
// A stage never holds more than its capacity of coalescible items. When a push
// finds the stage full it first tries to replace a held item with the same key,
// then drops the oldest held coalescible item. If only non-coalescible items are
// held, the [Overflow] policy decides: OverflowAdmit keeps the new item above
// capacity, OverflowReject returns [ErrFull]. Non-coalescible items are never
// dropped.
package coalesce
