package course

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairwaylabs/fairway/internal/canonical"
)

// Hole is one hole of a tee set: its number in play order and its par.
type Hole struct {
	Number int `json:"hole"`
	Par    int `json:"par"`
}

// Snapshot is an immutable course+tee definition, identified by the hash of
// its canonical serialization. Two devices given the same logical course
// compute the same ContentHash with no coordination.
type Snapshot struct {
	ContentHash string
	CourseName  string
	TeeSetName  string
	Holes       []Hole
	CreatedAt   time.Time
}

// HoleCount returns the number of holes in the snapshot.
func (s Snapshot) HoleCount() int {
	return len(s.Holes)
}

// ParFor returns the par for a hole number, or 0 if the hole is not part of
// the tee set.
func (s Snapshot) ParFor(hole int) int {
	for _, h := range s.Holes {
		if h.Number == hole {
			return h.Par
		}
	}
	return 0
}

// Document builds the canonical object for a course+tee definition. This is
// the exact structure embedded in round initiation events, so any recipient
// can rebuild it from event content and recompute the hash.
func Document(name, teeSet string, holes []Hole) canonical.Object {
	return canonical.Object{
		"course": canonical.String(name),
		"teeSet": canonical.String(teeSet),
		"holes":  holesArray(holes),
	}
}

// rulesDocument covers only the hole/par layout. The rules hash changes when
// pars change but not when a course or tee set is renamed.
func rulesDocument(holes []Hole) canonical.Object {
	return canonical.Object{
		"holes": holesArray(holes),
	}
}

func holesArray(holes []Hole) canonical.Array {
	arr := make(canonical.Array, len(holes))
	for i, h := range holes {
		arr[i] = canonical.Object{
			"hole": canonical.Int(int64(h.Number)),
			"par":  canonical.Int(int64(h.Par)),
		}
	}
	return arr
}

// ContentHash computes the content-addressed identifier for a course+tee
// definition. Deterministic across platforms and locales.
func ContentHash(name, teeSet string, holes []Hole) (string, error) {
	return canonical.HashObject(canonical.DomainCourse, Document(name, teeSet, holes))
}

// RulesHash computes the secondary digest over the hole/par layout only.
func RulesHash(holes []Hole) (string, error) {
	return canonical.HashObject(canonical.DomainRules, rulesDocument(holes))
}

// MarshalContent produces the canonical bytes for a snapshot's document,
// suitable for embedding as network event content.
func MarshalContent(name, teeSet string, holes []Hole) ([]byte, error) {
	return canonical.Marshal(Document(name, teeSet, holes))
}

// ParseContent parses received event content back into its parts. Content is
// validated through the canonical value model, so floats and nulls are
// rejected before any hash comparison happens.
func ParseContent(content []byte) (name, teeSet string, holes []Hole, err error) {
	if _, err = canonical.FromJSON(content); err != nil {
		return "", "", nil, fmt.Errorf("parse course content: %w", err)
	}

	var doc struct {
		Course string `json:"course"`
		TeeSet string `json:"teeSet"`
		Holes  []Hole `json:"holes"`
	}
	if err = json.Unmarshal(content, &doc); err != nil {
		return "", "", nil, fmt.Errorf("parse course content: %w", err)
	}
	if doc.Course == "" || doc.TeeSet == "" || len(doc.Holes) == 0 {
		return "", "", nil, fmt.Errorf("parse course content: missing course, teeSet, or holes")
	}
	return doc.Course, doc.TeeSet, doc.Holes, nil
}

// VerifyContent recomputes the content hash of received course content and
// compares it to the hash embedded alongside it. A mismatch means the relay
// served tampered or altered content; that is ErrUntrustedContent, never
// conflated with ErrNotFound.
func VerifyContent(content []byte, embeddedHash string) (Snapshot, error) {
	name, teeSet, holes, err := ParseContent(content)
	if err != nil {
		return Snapshot{}, err
	}

	computed, err := ContentHash(name, teeSet, holes)
	if err != nil {
		return Snapshot{}, err
	}
	if computed != embeddedHash {
		return Snapshot{}, &UntrustedContentError{Embedded: embeddedHash, Computed: computed}
	}

	return Snapshot{
		ContentHash: computed,
		CourseName:  name,
		TeeSetName:  teeSet,
		Holes:       holes,
	}, nil
}
