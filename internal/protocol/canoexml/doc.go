// Package canoexml owns the timing-system native wire format.
//
// Ownership boundary:
// - XML document shapes (TimingData root and its children)
// - decode into normalized feed events
// - encode for the mock timing server
//
// Decoding is pure: no I/O, no shared state, no panics. Malformed
// markup fails with feed.ErrParse; a well-formed document that breaks
// the contract fails with feed.ErrValidation. Unknown children are
// skipped.
package canoexml
