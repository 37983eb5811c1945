// Package provider assembles event sources behind one contract.
//
// Ownership boundary:
// - the Provider interface consumed by the daemon wiring
// - the timing provider (native XML over a '|'-delimited TCP stream)
// - the gateway provider (relay envelopes over newline-delimited TCP)
// - the replay provider (captured sessions on a virtual clock)
//
// Each live provider owns one transport adapter for its connection
// lifetime. Replay owns no socket; it replays a capture through the
// same bus with the same status transitions, so downstream code cannot
// tell a capture from a live link.
package provider
