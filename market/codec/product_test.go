package codec

import (
	"testing"

	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeProductRequiresIDs(t *testing.T) {
	_, err := EncodeProduct(testPubKey, models.Product{ID: "p1"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = EncodeProduct(testPubKey, models.Product{StallID: "s1"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProductEventRoundTrip(t *testing.T) {
	product := models.Product{
		ID:          "p1",
		StallID:     "stall-1",
		Name:        "Margherita",
		Description: "tomato, mozzarella, basil",
		Images:      []string{"https://example.com/p1.jpg"},
		Currency:    "EUR",
		Price:       12.5,
		Quantity:    10,
		Shipping:    []models.ProductShippingCost{{ID: "zone-1", Cost: 2}},
		Categories:  []string{"pizza", "food"},
		Specs:       [][]string{{"size", "30cm"}},
	}
	ev, err := EncodeProduct(testPubKey, product)
	require.NoError(t, err)
	assert.Equal(t, KindProduct, ev.Kind)

	coordinate, ok := EventCoordinate(ev)
	require.True(t, ok)
	assert.Equal(t, StallCoordinate(testPubKey, "stall-1"), coordinate)

	restored, err := DecodeProduct(ev)
	require.NoError(t, err)
	product.Seller = testPubKey
	assert.Equal(t, product, restored)
}

func TestDecodeProductRejectsBrokenContent(t *testing.T) {
	_, err := DecodeProduct(nostr.Event{Kind: KindProduct, Content: "not json"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = DecodeProduct(nostr.Event{Kind: KindStall, Content: "{}"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDecodeProductLegacySpecsObject(t *testing.T) {
	ev := nostr.Event{
		Kind:    KindProduct,
		Content: `{"id":"p1","stall_id":"s1","specs":{"size":"30cm"}}`,
	}
	p, err := DecodeProduct(ev)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"size", "30cm"}}, p.Specs)
}

func TestDecodeProductCategoriesFallBackToContent(t *testing.T) {
	ev := nostr.Event{
		Kind:    KindProduct,
		Content: `{"id":"p1","stall_id":"s1","categories":["pizza"]}`,
	}
	p, err := DecodeProduct(ev)
	require.NoError(t, err)
	assert.Equal(t, []string{"pizza"}, p.Categories)
}

func TestDecodeProductQuotedNumbers(t *testing.T) {
	ev := nostr.Event{
		Kind:    KindProduct,
		Content: `{"id":"p1","stall_id":"s1","price":"12.5","quantity":"3"}`,
	}
	p, err := DecodeProduct(ev)
	require.NoError(t, err)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 3, p.Quantity)
}
