// Package scoreboard folds the event stream into display-ready state.
//
// Ownership boundary:
// - the snapshot shape consumed by the web layer and the UI
// - reconciliation rules per event category (replace vs merge)
// - current, departing and highlight lifecycle with their time windows
// - connection-driven reset of race state
//
// The engine applies events strictly in arrival order; the bus
// guarantees that order for a single provider. Reads hand out deep
// copies, so a caller can never mutate engine state through a snapshot.
package scoreboard
