package codec

import (
	"testing"

	"agora/engine/library"
	"agora/market/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStallRequiresID(t *testing.T) {
	_, err := EncodeStall(testPubKey, models.Stall{Name: "no id"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStallEventRoundTrip(t *testing.T) {
	stall := models.Stall{
		ID:          "stall-1",
		Name:        "Alice's Trattoria",
		Description: "pizza and pasta",
		Currency:    "EUR",
		Geohash:     "u4pruydqqvj",
		Shipping: []models.StallShippingMethod{
			{ID: "zone-1", Cost: 5, Name: "local", Regions: []string{"Copenhagen"}},
		},
	}
	ev, err := EncodeStall(testPubKey, stall)
	require.NoError(t, err)
	assert.Equal(t, KindStall, ev.Kind)
	assert.NotContains(t, ev.Content, "u4pruydqqvj")

	identifier, ok := library.GetIdentifier(ev)
	require.True(t, ok)
	assert.Equal(t, "stall-1", identifier)

	restored := DecodeStallEvent(ev)
	assert.Equal(t, stall, restored)
}

func TestDecodeStallNeverFails(t *testing.T) {
	for _, content := range []string{
		"",
		"not json",
		"[]",
		"{}",
		`{"name":"no id"}`,
		`{"id":""}`,
		`{"id":`,
		"42",
		"null",
	} {
		stall := DecodeStall(content)
		assert.True(t, stall.Unparseable(), "content %q", content)
		assert.Equal(t, models.DefaultCurrency, stall.Currency)
	}
}

func TestDecodeStallDefaultsCurrency(t *testing.T) {
	stall := DecodeStall(`{"id":"stall-1","name":"bare"}`)
	assert.False(t, stall.Unparseable())
	assert.Equal(t, models.DefaultCurrency, stall.Currency)
}

func TestDecodeStallDropsBrokenShippingEntries(t *testing.T) {
	stall := DecodeStall(`{"id":"stall-1","shipping":[
		{"id":"good","cost":5,"name":"ok","regions":["a"]},
		{"id":"no-cost"},
		{"cost":3},
		"not an object",
		{"id":"string-cost","cost":"7"}
	]}`)
	require.Len(t, stall.Shipping, 2)
	assert.Equal(t, "good", stall.Shipping[0].ID)
	assert.Equal(t, "string-cost", stall.Shipping[1].ID)
	assert.Equal(t, float64(7), stall.Shipping[1].Cost)
}
