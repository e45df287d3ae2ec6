package codec

import (
	"testing"

	"agora/market/identity"
	"agora/market/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full merchant catalog flow: profile, stall and products are encoded, signed
// and decoded back the way a buyer-side client would see them.
func TestMerchantCatalogFlow(t *testing.T) {
	merchant, err := identity.Generate()
	require.NoError(t, err)

	profile := models.NewProfile(merchant.Account())
	profile.Name = "trattoria"
	profile.AddNamespace("com.example.marketplace")
	profile.AddLabel("restaurant", "com.example.marketplace")
	profile.AddHashtag("pizza")

	stall := models.Stall{ID: "stall-1", Name: "front counter", Currency: "EUR", Geohash: "u4pruyd"}
	product := models.Product{ID: "p1", StallID: "stall-1", Name: "Margherita", Currency: "EUR", Price: 12.5, Quantity: 4}

	profileEv, err := EncodeProfile(profile)
	require.NoError(t, err)
	stallEv, err := EncodeStall(merchant.Account(), stall)
	require.NoError(t, err)
	productEv, err := EncodeProduct(merchant.Account(), product)
	require.NoError(t, err)

	require.NoError(t, merchant.Sign(&profileEv))
	require.NoError(t, merchant.Sign(&stallEv))
	require.NoError(t, merchant.Sign(&productEv))
	for _, ev := range []struct {
		name string
		ok   func() (bool, error)
	}{
		{"profile", profileEv.CheckSignature},
		{"stall", stallEv.CheckSignature},
		{"product", productEv.CheckSignature},
	} {
		ok, err := ev.ok()
		require.NoError(t, err, ev.name)
		assert.True(t, ok, ev.name)
	}

	gotProfile, err := DecodeProfile(profileEv)
	require.NoError(t, err)
	assert.True(t, gotProfile.MatchesFilter(models.NewProfileFilter("com.example.marketplace", "restaurant", "pizza")))

	gotStall := DecodeStallEvent(stallEv)
	assert.Equal(t, stall, gotStall)

	gotProduct, err := DecodeProduct(productEv)
	require.NoError(t, err)
	assert.Equal(t, merchant.Account(), gotProduct.Seller)
	assert.Equal(t, "stall-1", gotProduct.StallID)

	coordinate, ok := EventCoordinate(productEv)
	require.True(t, ok)
	assert.Equal(t, StallCoordinate(merchant.Account(), stall.ID), coordinate)
}
