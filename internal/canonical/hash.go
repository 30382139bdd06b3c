package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room for algorithm migration without colliding with v1 hashes.
const (
	DomainCourse = "fairway/course/v1"
	DomainRules  = "fairway/rules/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain || 0x00 || data). The null separator prevents
// domain/data boundary ambiguity. Output is lowercase hex, 64 characters,
// matching what every recipient recomputes as a tamper check.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashObject canonically marshals an object and hashes it under the given
// domain. This is the single entry point for deriving shared identifiers:
// two devices calling it with the same logical object get the same string.
func HashObject(domain string, obj Object) (string, error) {
	data, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("hash object: %w", err)
	}
	return HashWithDomain(domain, data), nil
}
