package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"agora/engine/library"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
)

// EncodeProduct builds an unsigned kind-30018 event. Categories become
// hashtag tags and the stall relationship becomes a coordinate tag so
// subscribers can query all products of one stall directly.
func EncodeProduct(merchant library.Account, p models.Product) (nostr.Event, error) {
	if p.ID == "" || p.StallID == "" {
		return nostr.Event{}, fmt.Errorf("%w: product id and stall id are required", models.ErrValidation)
	}
	content, err := json.Marshal(p)
	if err != nil {
		return nostr.Event{}, err
	}
	var tags nostr.Tags
	for _, category := range p.Categories {
		tags = append(tags, nostr.Tag{"t", category})
	}
	tags = append(tags, nostr.Tag{"d", p.ID})
	tags = append(tags, StallCoordinate(merchant, p.StallID).Tag())
	return nostr.Event{
		PubKey:    merchant,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindProduct,
		Tags:      tags,
		Content:   string(content),
	}, nil
}

// DecodeProduct reconstructs a product from a kind-30018 event. The seller is
// derived from the coordinate tag (empty when absent); categories come from
// hashtag tags with the content list as fallback; shipping and specs
// normalize both object-shaped and already-typed inputs.
func DecodeProduct(e nostr.Event) (models.Product, error) {
	if e.Kind != KindProduct {
		return models.Product{}, fmt.Errorf("%w: event kind %d is not a product", models.ErrValidation, e.Kind)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(e.Content), &raw); err != nil || raw == nil {
		return models.Product{}, fmt.Errorf("%w: unparseable product content", models.ErrValidation)
	}
	price, _ := getFloat(raw, "price")
	quantity, _ := getFloat(raw, "quantity")
	p := models.Product{
		ID:          getString(raw, "id"),
		StallID:     getString(raw, "stall_id"),
		Name:        getString(raw, "name"),
		Description: getString(raw, "description"),
		Images:      getStringSlice(raw, "images"),
		Currency:    getString(raw, "currency"),
		Price:       price,
		Quantity:    int(quantity),
		Specs:       decodeSpecs(raw["specs"]),
	}
	for _, item := range getList(raw, "shipping") {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		cost, ok := getFloat(entry, "cost")
		if !ok {
			continue
		}
		p.Shipping = append(p.Shipping, models.ProductShippingCost{
			ID:   getString(entry, "id"),
			Cost: cost,
		})
	}
	if hashtags := library.GetHashtags(e); len(hashtags) > 0 {
		p.Categories = hashtags
	} else {
		p.Categories = getStringSlice(raw, "categories")
	}
	if coordinate, ok := EventCoordinate(e); ok {
		p.Seller = coordinate.PubKey
	}
	return p, nil
}

// decodeSpecs accepts either the list-of-pairs form or the legacy object
// form and normalizes to pairs.
func decodeSpecs(v interface{}) (specs [][]string) {
	switch raw := v.(type) {
	case []interface{}:
		for _, item := range raw {
			pair, ok := item.([]interface{})
			if !ok || len(pair) < 2 {
				continue
			}
			key, kok := pair[0].(string)
			value, vok := pair[1].(string)
			if kok && vok {
				specs = append(specs, []string{key, value})
			}
		}
	case map[string]interface{}:
		for key, item := range raw {
			if value, ok := item.(string); ok {
				specs = append(specs, []string{key, value})
			}
		}
	}
	return
}
