package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"agora/engine/library"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
)

// EncodeStall builds an unsigned kind-30017 event. The stall id doubles as
// the replaceable-event identifier, so it must be set and stable.
func EncodeStall(merchant library.Account, s models.Stall) (nostr.Event, error) {
	if s.ID == "" {
		return nostr.Event{}, fmt.Errorf("%w: stall id is required", models.ErrValidation)
	}
	wire := s
	wire.Geohash = "" // travels as a tag, not content
	content, err := json.Marshal(wire)
	if err != nil {
		return nostr.Event{}, err
	}
	tags := nostr.Tags{nostr.Tag{"d", s.ID}}
	if s.Geohash != "" {
		tags = append(tags, nostr.Tag{"g", s.Geohash})
	}
	return nostr.Event{
		PubKey:    merchant,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindStall,
		Tags:      tags,
		Content:   string(content),
	}, nil
}

// DecodeStall parses stall event content. It never fails: any malformed or
// non-object input yields the placeholder stall (id "unknown"), and shipping
// entries missing required fields are dropped one by one instead of poisoning
// the whole stall.
func DecodeStall(content string) models.Stall {
	placeholder := models.Stall{ID: models.UnknownStallID, Currency: models.DefaultCurrency}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil || raw == nil {
		return placeholder
	}
	id := getString(raw, "id")
	if id == "" {
		return placeholder
	}
	stall := models.Stall{
		ID:          id,
		Name:        getString(raw, "name"),
		Description: getString(raw, "description"),
		Currency:    getString(raw, "currency"),
		Geohash:     getString(raw, "geohash"),
	}
	if stall.Currency == "" {
		stall.Currency = models.DefaultCurrency
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
		method := models.StallShippingMethod{
			ID:      getString(entry, "id"),
			Cost:    cost,
			Name:    getString(entry, "name"),
			Regions: getStringSlice(entry, "regions"),
		}
		if method.ID == "" {
			continue
		}
		stall.Shipping = append(stall.Shipping, method)
	}
	return stall
}

// DecodeStallEvent decodes the content and recovers the geohash tag, which is
// not part of the content JSON.
func DecodeStallEvent(e nostr.Event) models.Stall {
	stall := DecodeStall(e.Content)
	if gh, ok := library.GetGeohash(e); ok && stall.Geohash == "" {
		stall.Geohash = gh
	}
	return stall
}
