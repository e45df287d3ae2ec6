package codec

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateRoundTrip(t *testing.T) {
	c := StallCoordinate(testPubKey, "stall-1")
	assert.Equal(t, "30017:"+testPubKey+":stall-1", c.String())

	parsed, ok := ParseCoordinate(c.String())
	require.True(t, ok)
	assert.Equal(t, c, parsed)
}

func TestParseCoordinateIdentifierMayContainColons(t *testing.T) {
	parsed, ok := ParseCoordinate("30018:" + testPubKey + ":a:b:c")
	require.True(t, ok)
	assert.Equal(t, "a:b:c", parsed.Identifier)
}

func TestParseCoordinateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "30017", "30017:" + testPubKey, "x:" + testPubKey + ":id"} {
		_, ok := ParseCoordinate(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestEventCoordinateSkipsUnparseableTags(t *testing.T) {
	ev := nostr.Event{Tags: nostr.Tags{
		nostr.Tag{"a", "garbage"},
		nostr.Tag{"a", "30017:" + testPubKey + ":stall-1"},
	}}
	c, ok := EventCoordinate(ev)
	require.True(t, ok)
	assert.Equal(t, "stall-1", c.Identifier)

	_, ok = EventCoordinate(nostr.Event{})
	assert.False(t, ok)
}

func TestDecodeMarketplace(t *testing.T) {
	m, ok := DecodeMarketplace(`{"name":"farmers market","about":"weekly","merchants":["` + testPubKey + `"]}`)
	require.True(t, ok)
	assert.Equal(t, "farmers market", m.Name)
	require.Len(t, m.Merchants, 1)

	_, ok = DecodeMarketplace(`{"merchants":[]}`)
	assert.False(t, ok)
	_, ok = DecodeMarketplace("not json")
	assert.False(t, ok)
}
