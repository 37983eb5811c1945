// Package gatejson owns the relay wire format.
//
// Ownership boundary:
// - envelope shape (type, timestamp, data), one JSON object per line
// - decode into normalized feed events
// - encode for the relay fan-out
//
// Unknown envelope types are skipped so old boards keep working when
// the relay grows new message types. Malformed JSON fails with
// feed.ErrParse; a well-formed envelope that breaks the contract fails
// with feed.ErrValidation.
package gatejson
