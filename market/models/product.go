package models

import (
	"encoding/json"

	"agora/engine/library"
)

// ProductShippingCost is a per-product surcharge on top of a stall shipping
// method. The id references a shipping method id from the product's stall.
type ProductShippingCost struct {
	ID   string  `json:"id"`
	Cost float64 `json:"cost"`
}

// Product belongs to exactly one stall, published as a kind 30018 replaceable
// event. The stall relationship is convention only; the network does not
// enforce it.
type Product struct {
	ID          string                `json:"id"`
	StallID     library.StallID       `json:"stall_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Images      []string              `json:"images,omitempty"`
	Currency    string                `json:"currency"`
	Price       float64               `json:"price"`
	Quantity    int                   `json:"quantity"`
	Shipping    []ProductShippingCost `json:"shipping,omitempty"`
	Categories  []string              `json:"categories,omitempty"`
	Specs       [][]string            `json:"specs,omitempty"`

	// Seller is populated on retrieval from the event's coordinate tag. It is
	// never part of the signed content.
	Seller library.Account `json:"-"`
}

func (p Product) ToJSON() (string, error) {
	b, err := json.Marshal(p)
	return string(b), err
}
