// Package results reconciles two-run races into best-of-two standings.
//
// Ownership boundary:
// - race id parsing (class id, run qualifier)
// - first-run lookup contract and its HTTP client
// - merge arithmetic (best run, merged total, re-ranking)
// - the resolver that watches second-run standings and upgrades the
//   scoreboard asynchronously
//
// Lookups run off the event path. The engine's race-id guard makes a
// late upgrade harmless, so the resolver never blocks the stream.
package results
