package models

import (
	"encoding/json"

	"agora/engine/library"
)

// UnknownStallID marks a stall reconstructed from unparseable event content.
// Callers must treat a stall with this id as opaque.
const UnknownStallID = "unknown"

// DefaultCurrency is applied when a stall event carries no currency.
const DefaultCurrency = "USD"

// StallShippingMethod is one way a stall ships goods: a flat cost applied to
// orders shipped to any of its regions.
type StallShippingMethod struct {
	ID      string   `json:"id"`
	Cost    float64  `json:"cost"`
	Name    string   `json:"name"`
	Regions []string `json:"regions"`
}

// Stall is a merchant's logical storefront, published as a kind 30017
// replaceable event. The id must stay stable across updates because it is
// part of the event coordinate.
type Stall struct {
	ID          library.StallID       `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Currency    string                `json:"currency"`
	Shipping    []StallShippingMethod `json:"shipping"`
	Geohash     string                `json:"geohash,omitempty"`
}

// Unparseable reports whether this stall is the placeholder produced from
// malformed event content.
func (s Stall) Unparseable() bool {
	return s.ID == UnknownStallID
}

func (s Stall) ToJSON() (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}
