package codec

import (
	"encoding/json"

	"agora/engine/library"
)

// Marketplace is the content of a kind-30019 listing: a named collection of
// merchant public keys curated by the event author.
type Marketplace struct {
	Name      string            `json:"name"`
	About     string            `json:"about,omitempty"`
	Merchants []library.Account `json:"merchants"`
}

// DecodeMarketplace parses kind-30019 content defensively; malformed content
// yields ok == false rather than an error because marketplace discovery is
// best-effort.
func DecodeMarketplace(content string) (Marketplace, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil || raw == nil {
		return Marketplace{}, false
	}
	m := Marketplace{
		Name:      getString(raw, "name"),
		About:     getString(raw, "about"),
		Merchants: getStringSlice(raw, "merchants"),
	}
	return m, m.Name != ""
}
