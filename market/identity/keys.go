package identity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"agora/market/models"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip06"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Encoding selects how keys are rendered: the human-shareable checksummed
// bech32 form (npub/nsec) or raw hex as used inside events.
type Encoding string

const (
	EncodingDisplay Encoding = "display"
	EncodingRaw     Encoding = "raw"
)

// Keys wraps a secp256k1 keypair. Immutable once created.
type Keys struct {
	privateKey string
	publicKey  string
}

// Generate creates a fresh random identity.
func Generate() (*Keys, error) {
	return FromPrivateKey(nostr.GeneratePrivateKey())
}

// GenerateWithMnemonic creates an identity from fresh NIP-06 seed words and
// returns the words so the caller can persist them.
func GenerateWithMnemonic() (*Keys, string, error) {
	words, err := nip06.GenerateSeedWords()
	if err != nil {
		return nil, "", err
	}
	sk, err := nip06.PrivateKeyFromSeed(nip06.SeedFromWords(words))
	if err != nil {
		return nil, "", err
	}
	k, err := FromPrivateKey(sk)
	if err != nil {
		return nil, "", err
	}
	return k, words, nil
}

// FromPrivateKey parses a private key in hex or nsec form.
func FromPrivateKey(key string) (*Keys, error) {
	sk := strings.TrimSpace(key)
	if strings.HasPrefix(sk, "nsec") {
		prefix, value, err := nip19.Decode(sk)
		if err != nil || prefix != "nsec" {
			return nil, fmt.Errorf("%w: %s", models.ErrInvalidKey, "not a valid nsec string")
		}
		sk = value.(string)
	}
	pk, err := derivePublicKey(sk)
	if err != nil {
		return nil, err
	}
	return &Keys{privateKey: sk, publicKey: pk}, nil
}

func derivePublicKey(sk string) (string, error) {
	b, err := hex.DecodeString(sk)
	if err != nil || len(b) != 32 {
		return "", fmt.Errorf("%w: private key must be 32 hex-encoded bytes", models.ErrInvalidKey)
	}
	_, pub := btcec.PrivKeyFromBytes(b)
	return hex.EncodeToString(schnorr.SerializePubKey(pub)), nil
}

// PublicKey returns the public key in the requested encoding.
func (k *Keys) PublicKey(encoding Encoding) (string, error) {
	switch encoding {
	case EncodingRaw:
		return k.publicKey, nil
	case EncodingDisplay:
		return nip19.EncodePublicKey(k.publicKey)
	}
	return "", fmt.Errorf("%w: unknown encoding %q", models.ErrValidation, encoding)
}

// PrivateKey returns the private key in the requested encoding.
func (k *Keys) PrivateKey(encoding Encoding) (string, error) {
	switch encoding {
	case EncodingRaw:
		return k.privateKey, nil
	case EncodingDisplay:
		return nip19.EncodePrivateKey(k.privateKey)
	}
	return "", fmt.Errorf("%w: unknown encoding %q", models.ErrValidation, encoding)
}

// Account returns the hex public key, the form used in event author fields.
func (k *Keys) Account() string {
	return k.publicKey
}

// Sign computes the event id and signature in place. Deterministic given key
// and content apart from the BIP-340 nonce.
func (k *Keys) Sign(ev *nostr.Event) error {
	ev.PubKey = k.publicKey
	return ev.Sign(k.privateKey)
}

// DisplayPubKey converts a hex public key to its npub form.
func DisplayPubKey(hexKey string) (string, error) {
	if !isHexKey(hexKey) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidKey, hexKey)
	}
	return nip19.EncodePublicKey(hexKey)
}

// ParsePubKey accepts a public key in npub or hex form and returns hex.
func ParsePubKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "npub") {
		prefix, value, err := nip19.Decode(key)
		if err != nil || prefix != "npub" {
			return "", fmt.Errorf("%w: %s", models.ErrInvalidKey, "not a valid npub string")
		}
		return value.(string), nil
	}
	if !isHexKey(key) {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidKey, key)
	}
	return key, nil
}

func isHexKey(key string) bool {
	if len(key) != 64 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}
