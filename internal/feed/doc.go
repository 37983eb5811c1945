// Package feed owns the normalized telemetry event model.
//
// Ownership boundary:
// - event union and category kinds
// - result and on-course row shapes
// - error taxonomy for decode and lookup failures
// - in-process event bus and subscription handles
//
// Events are immutable once decoded. Producers publish through the bus;
// the bus dispatches synchronously on the publisher's goroutine, so a
// single publisher implies strict arrival order for every subscriber.
package feed
