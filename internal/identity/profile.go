package identity

import (
	"encoding/json"
	"time"

	"github.com/fairwaylabs/fairway/internal/store"
)

// Profile is the displayable identity of a pubkey. Empty fields mean
// "unknown", and merges never replace a known value with an unknown one.
type Profile struct {
	Pubkey      string
	Name        string
	DisplayName string
	About       string
	Picture     string
	Banner      string
	UpdatedAt   time.Time
}

// BestName picks the most specific display string available.
func (p Profile) BestName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Pubkey
}

// merge overlays incoming onto base field by field. Only non-empty incoming
// fields win; a sparse fresh fetch can add information but never erase it.
func merge(base, incoming Profile) Profile {
	out := base
	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if incoming.DisplayName != "" {
		out.DisplayName = incoming.DisplayName
	}
	if incoming.About != "" {
		out.About = incoming.About
	}
	if incoming.Picture != "" {
		out.Picture = incoming.Picture
	}
	if incoming.Banner != "" {
		out.Banner = incoming.Banner
	}
	if incoming.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = incoming.UpdatedAt
	}
	return out
}

// parseProfileContent decodes kind-0 event content. Unknown fields are
// ignored; a parse failure yields an empty profile rather than an error,
// since a peer's malformed metadata should degrade to "unknown", not fail
// the resolve.
func parseProfileContent(pubkey string, content []byte, at time.Time) Profile {
	var body struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		About       string `json:"about"`
		Picture     string `json:"picture"`
		Banner      string `json:"banner"`
	}
	_ = json.Unmarshal(content, &body)
	return Profile{
		Pubkey:      pubkey,
		Name:        body.Name,
		DisplayName: body.DisplayName,
		About:       body.About,
		Picture:     body.Picture,
		Banner:      body.Banner,
		UpdatedAt:   at,
	}
}

func profileFromRow(row store.ProfileRow) Profile {
	return Profile{
		Pubkey:      row.Pubkey,
		Name:        row.Name,
		DisplayName: row.DisplayName,
		About:       row.About,
		Picture:     row.Picture,
		Banner:      row.Banner,
		UpdatedAt:   row.UpdatedAt,
	}
}

func rowFromProfile(p Profile) store.ProfileRow {
	return store.ProfileRow{
		Pubkey:      p.Pubkey,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		About:       p.About,
		Picture:     p.Picture,
		Banner:      p.Banner,
		UpdatedAt:   p.UpdatedAt,
	}
}
