// Package web serves the scoreboard UI surface: the authoritative
// snapshot as JSON plus settings, health, readiness and metrics.
//
// Ownership boundary:
//   - the server reads snapshots through StateSource, never the engine
//   - settings pass through the settings package's resolve/apply
//   - no route mutates race state
package web
