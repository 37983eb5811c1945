// Package transport owns stream plumbing between a timing source and
// the event bus.
//
// Ownership boundary:
// - payload framing over a byte stream (delimiter and line framers)
// - retry backoff policy
// - the reconnecting adapter and its state machine
//
// State machine: disconnected -> connecting -> connected ->
// reconnecting -> connecting -> ... Disconnected is reachable from
// every state through Disconnect, which is idempotent and synchronous:
// once it returns, no further event reaches the bus. Every transition
// publishes a feed.ConnectionStatus.
package transport
