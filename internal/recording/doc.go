// Package recording reads and writes captured telemetry sessions.
//
// Ownership boundary:
// - the newline-delimited capture format (optional meta line, then
//   one entry per line with millisecond offsets)
// - the capture writer used by the relay
// - loading and time-ordering entries for replay
//
// Entries reuse the relay envelope's type labels, so a capture decodes
// through the same mapping as the live gateway stream.
package recording
