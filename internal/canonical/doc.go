// Package canonical implements RFC 8785 canonical JSON and SHA-256
// content-addressed hashing for documents that must agree across devices.
//
// Course snapshots are identified by the hash of their canonical
// serialization, with no coordination between devices. That only works if
// serialization is fully deterministic, so this package enforces:
//
//   - object keys sorted by UTF-16 code units (RFC 8785)
//   - NFC string normalization at the serialization boundary
//   - no HTML escaping
//   - integers only; floats are rejected
//   - no nulls
//
// Hashes carry a domain prefix (HashWithDomain) so a course hash can never
// be replayed as a rules hash.
package canonical
