package relay

import (
	"encoding/json"
	"fmt"
	"sort"
)

// HoleScore is one hole's entry in score event content.
type HoleScore struct {
	Hole    int `json:"hole"`
	Strokes int `json:"strokes"`
}

// scoresContent is the JSON body shared by final records (1092) and live
// snapshots (30091).
type scoresContent struct {
	Scores []HoleScore `json:"scores"`
	Total  int         `json:"total"`
}

// MarshalScores encodes a per-hole score map as event content, holes in
// ascending order so equal inputs produce equal bytes.
func MarshalScores(scores map[int]int) ([]byte, error) {
	holes := make([]int, 0, len(scores))
	for h := range scores {
		holes = append(holes, h)
	}
	sort.Ints(holes)

	body := scoresContent{Scores: make([]HoleScore, 0, len(holes))}
	for _, h := range holes {
		body.Scores = append(body.Scores, HoleScore{Hole: h, Strokes: scores[h]})
		body.Total += scores[h]
	}
	return json.Marshal(body)
}

// ParseScores decodes score event content back into a per-hole map.
// Malformed entries fail the whole parse; a partial scorecard from a remote
// player is valid, garbage is not.
func ParseScores(content []byte) (map[int]int, error) {
	var body scoresContent
	if err := json.Unmarshal(content, &body); err != nil {
		return nil, fmt.Errorf("parse scores content: %w", err)
	}

	scores := make(map[int]int, len(body.Scores))
	for _, s := range body.Scores {
		if s.Hole < 1 || s.Strokes < 1 {
			return nil, fmt.Errorf("parse scores content: invalid entry hole=%d strokes=%d", s.Hole, s.Strokes)
		}
		if _, dup := scores[s.Hole]; dup {
			return nil, fmt.Errorf("parse scores content: duplicate hole %d", s.Hole)
		}
		scores[s.Hole] = s.Strokes
	}
	return scores, nil
}
