// Package relay is the transport layer: event kind numbers, the Client
// seam, and the production connection pool.
//
// Everything here is best-effort by contract. Publish succeeds when any one
// relay accepts; QuerySync succeeds when any one relay answers. Callers
// treat every relay error as the non-fatal network class and degrade
// instead of failing local work.
package relay
