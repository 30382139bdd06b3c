// Package course models content-addressed course+tee definitions.
//
// A course snapshot is identified by the SHA-256 of its canonical JSON
// serialization, so two devices given the same logical course compute the
// same identifier with no coordination. Snapshots are immutable: editing a
// course means producing a new snapshot under a new hash, and rounds keep
// pointing at the hash they started with.
//
// Local reads trust stored hashes. Content received over the network is
// re-verified with VerifyContent before it can enter the store; a hash
// mismatch is UntrustedContentError, never a plain miss.
package course
