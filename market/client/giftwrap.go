package client

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/identity"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip44"
)

// NIP-59 layering: the readable kind-14 rumor stays unsigned, a kind-13 seal
// encrypts it under the sender/recipient conversation key, and a kind-1059
// wrap encrypts the seal under a throwaway key so the outer event reveals
// neither sender nor content.

// wrapMessage builds the full rumor-seal-wrap stack for one recipient.
func (c *Client) wrapMessage(recipient library.Account, plaintext string) (nostr.Event, error) {
	sk, err := c.keys.PrivateKey(identity.EncodingRaw)
	if err != nil {
		return nostr.Event{}, err
	}

	rumor := nostr.Event{
		PubKey:    c.keys.Account(),
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      codec.KindChatMessage,
		Tags:      nostr.Tags{nostr.Tag{"p", recipient}},
		Content:   plaintext,
	}
	rumor.ID = rumor.GetID()
	rumorJSON, err := json.Marshal(rumor)
	if err != nil {
		return nostr.Event{}, err
	}

	sealKey, err := nip44.GenerateConversationKey(recipient, sk)
	if err != nil {
		return nostr.Event{}, err
	}
	sealed, err := nip44.Encrypt(string(rumorJSON), sealKey)
	if err != nil {
		return nostr.Event{}, err
	}
	seal := nostr.Event{
		CreatedAt: tweakedTimestamp(),
		Kind:      codec.KindSeal,
		Tags:      nostr.Tags{},
		Content:   sealed,
	}
	if err := c.keys.Sign(&seal); err != nil {
		return nostr.Event{}, err
	}
	sealJSON, err := json.Marshal(seal)
	if err != nil {
		return nostr.Event{}, err
	}

	ephemeral := nostr.GeneratePrivateKey()
	ephemeralPub, err := nostr.GetPublicKey(ephemeral)
	if err != nil {
		return nostr.Event{}, err
	}
	wrapKey, err := nip44.GenerateConversationKey(recipient, ephemeral)
	if err != nil {
		return nostr.Event{}, err
	}
	wrapped, err := nip44.Encrypt(string(sealJSON), wrapKey)
	if err != nil {
		return nostr.Event{}, err
	}
	wrap := nostr.Event{
		PubKey:    ephemeralPub,
		CreatedAt: tweakedTimestamp(),
		Kind:      codec.KindGiftWrap,
		Tags:      nostr.Tags{nostr.Tag{"p", recipient}},
		Content:   wrapped,
	}
	if err := wrap.Sign(ephemeral); err != nil {
		return nostr.Event{}, err
	}
	return wrap, nil
}

// unwrapMessage reverses the stack: decrypt the wrap with our key against the
// ephemeral pubkey, verify the seal's signature, then decrypt the rumor and
// check the seal author really wrote it.
func (c *Client) unwrapMessage(wrap nostr.Event) (nostr.Event, error) {
	if wrap.Kind != codec.KindGiftWrap {
		return nostr.Event{}, fmt.Errorf("%w: kind %d is not a gift wrap", models.ErrValidation, wrap.Kind)
	}
	sk, err := c.keys.PrivateKey(identity.EncodingRaw)
	if err != nil {
		return nostr.Event{}, err
	}

	wrapKey, err := nip44.GenerateConversationKey(wrap.PubKey, sk)
	if err != nil {
		return nostr.Event{}, err
	}
	sealJSON, err := nip44.Decrypt(wrap.Content, wrapKey)
	if err != nil {
		return nostr.Event{}, err
	}
	var seal nostr.Event
	if err := json.Unmarshal([]byte(sealJSON), &seal); err != nil {
		return nostr.Event{}, err
	}
	if seal.Kind != codec.KindSeal {
		return nostr.Event{}, fmt.Errorf("%w: wrapped kind %d is not a seal", models.ErrValidation, seal.Kind)
	}
	if ok, err := seal.CheckSignature(); err != nil || !ok {
		return nostr.Event{}, models.ErrInvalidSignature
	}

	sealKey, err := nip44.GenerateConversationKey(seal.PubKey, sk)
	if err != nil {
		return nostr.Event{}, err
	}
	rumorJSON, err := nip44.Decrypt(seal.Content, sealKey)
	if err != nil {
		return nostr.Event{}, err
	}
	var rumor nostr.Event
	if err := json.Unmarshal([]byte(rumorJSON), &rumor); err != nil {
		return nostr.Event{}, err
	}
	if rumor.PubKey != seal.PubKey {
		return nostr.Event{}, fmt.Errorf("%w: rumor author %s does not match seal author %s", models.ErrValidation, rumor.PubKey, seal.PubKey)
	}
	return rumor, nil
}

// tweakedTimestamp backdates an envelope by up to two days so seal and wrap
// creation times cannot be correlated with the rumor.
func tweakedTimestamp() nostr.Timestamp {
	return nostr.Timestamp(time.Now().Unix() - rand.Int63n(2*24*60*60))
}
