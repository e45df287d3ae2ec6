package identity

import (
	"strings"
	"testing"

	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)
	assert.Len(t, k.Account(), 64)

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, k.Account(), other.Account())
}

func TestGenerateWithMnemonic(t *testing.T) {
	k, words, err := GenerateWithMnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(words), 24)
	assert.Len(t, k.Account(), 64)
}

func TestFromPrivateKeyAcceptsBothEncodings(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	hexKey, err := k.PrivateKey(EncodingRaw)
	require.NoError(t, err)
	nsec, err := k.PrivateKey(EncodingDisplay)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(nsec, "nsec"))

	fromHex, err := FromPrivateKey(hexKey)
	require.NoError(t, err)
	fromNsec, err := FromPrivateKey(nsec)
	require.NoError(t, err)
	assert.Equal(t, k.Account(), fromHex.Account())
	assert.Equal(t, k.Account(), fromNsec.Account())
}

func TestFromPrivateKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "nsec1garbage", "deadbeef", strings.Repeat("zz", 32)} {
		_, err := FromPrivateKey(input)
		assert.ErrorIs(t, err, models.ErrInvalidKey, "input %q", input)
	}
}

func TestParsePubKey(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)
	npub, err := k.PublicKey(EncodingDisplay)
	require.NoError(t, err)

	fromNpub, err := ParsePubKey(npub)
	require.NoError(t, err)
	assert.Equal(t, k.Account(), fromNpub)

	fromHex, err := ParsePubKey(k.Account())
	require.NoError(t, err)
	assert.Equal(t, k.Account(), fromHex)

	_, err = ParsePubKey("not-a-key")
	assert.ErrorIs(t, err, models.ErrInvalidKey)
}

func TestSignProducesVerifiableEvent(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)
	ev := nostr.Event{Kind: 1, Content: "hello"}
	require.NoError(t, k.Sign(&ev))

	assert.Equal(t, k.Account(), ev.PubKey)
	ok, err := ev.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
}
