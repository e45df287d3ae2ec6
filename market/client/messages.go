package client

import (
	"context"
	"fmt"
	"time"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/identity"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"
	"github.com/sasha-s/go-deadlock"
)

// Message encodings accepted by SendMessage.
const (
	// MessageEncodingLegacy is a NIP-04 encrypted kind-4 DM. The sender and
	// recipient are visible on the wire.
	MessageEncodingLegacy = "encrypted-v1"
	// MessageEncodingSealed is a NIP-17 chat message sealed and gift-wrapped
	// per NIP-59. Only the recipient can see who sent it.
	MessageEncodingSealed = "encrypted-v2"
)

// Message is a decrypted incoming direct message. Type carries the inner
// event kind ("kind:4", "kind:14", ...).
type Message struct {
	Type    string `json:"type"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// noMessage is what ReceiveMessage returns when the timeout expires with
// nothing readable; an empty inbox is not an error.
func noMessage() Message {
	return Message{Type: "none", Sender: "none", Content: "No messages received"}
}

// SendMessage encrypts plaintext for the recipient under the chosen encoding
// and publishes it. The returned id is the published event's id, which for
// the sealed encoding is the outer gift wrap.
func (c *Client) SendMessage(encoding string, recipient string, plaintext string) (library.Sha256, error) {
	pubkey, err := identity.ParsePubKey(recipient)
	if err != nil {
		return "", err
	}
	var ev nostr.Event
	switch encoding {
	case MessageEncodingLegacy:
		ev, err = c.encodeLegacyMessage(pubkey, plaintext)
	case MessageEncodingSealed:
		ev, err = c.wrapMessage(pubkey, plaintext)
	default:
		return "", fmt.Errorf("%w: unknown message encoding %q", models.ErrValidation, encoding)
	}
	if err != nil {
		return "", err
	}
	id, err := c.Publish(ev)
	if err != nil {
		return "", fmt.Errorf("%w: %s", models.ErrSendFailed, err)
	}
	return id, nil
}

// encodeLegacyMessage builds a signed NIP-04 kind-4 DM.
func (c *Client) encodeLegacyMessage(recipient library.Account, plaintext string) (nostr.Event, error) {
	sk, err := c.keys.PrivateKey(identity.EncodingRaw)
	if err != nil {
		return nostr.Event{}, err
	}
	shared, err := nip04.ComputeSharedSecret(recipient, sk)
	if err != nil {
		return nostr.Event{}, err
	}
	ciphertext, err := nip04.Encrypt(plaintext, shared)
	if err != nil {
		return nostr.Event{}, err
	}
	ev := nostr.Event{
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      codec.KindDirectMessage,
		Tags:      nostr.Tags{nostr.Tag{"p", recipient}},
		Content:   ciphertext,
	}
	if err := c.keys.Sign(&ev); err != nil {
		return nostr.Event{}, err
	}
	return ev, nil
}

// ReceiveMessage waits up to the timeout for one direct message addressed to
// this client, in either encoding. Backlogged messages count; the first event
// that decrypts cleanly wins. When nothing readable arrives the sentinel
// no-message value is returned with a nil error. Every subscription is torn
// down before returning.
func (c *Client) ReceiveMessage(timeout time.Duration) (Message, error) {
	return c.ReceiveMessageContext(context.Background(), timeout)
}

// ReceiveMessageContext is ReceiveMessage with caller-controlled cancellation.
func (c *Client) ReceiveMessageContext(ctx context.Context, timeout time.Duration) (Message, error) {
	if msg, ok := c.popInbox(); ok {
		return msg, nil
	}
	if err := c.connect(ctx); err != nil {
		return noMessage(), err
	}
	subCtx, cancel := context.WithTimeout(ctx, timeout)
	wait := deadlock.WaitGroup{}
	defer wait.Wait()
	defer cancel()

	filter := nostr.Filter{
		Kinds: []int{codec.KindDirectMessage, codec.KindGiftWrap},
		Tags:  nostr.TagMap{"p": []string{c.keys.Account()}},
	}
	results := make(chan Message, 1)
	for _, relay := range c.connections() {
		sub, err := relay.Subscribe(subCtx, nostr.Filters{filter})
		if err != nil {
			library.LogCLI(fmt.Sprintf("message subscription to %s failed: %s", relay.URL, err), 3)
			continue
		}
		wait.Add(1)
		go func(sub *nostr.Subscription) {
			defer wait.Done()
			defer sub.Unsub()
			for {
				select {
				case ev, open := <-sub.Events:
					if !open || ev == nil {
						return
					}
					msg, ok := c.decodeIncoming(*ev)
					if !ok {
						continue
					}
					if !c.markSeen(ev.ID) {
						continue
					}
					select {
					case results <- msg:
					default:
						// another relay won the race; keep this one for the
						// next call
						c.pushInbox(ev)
					}
					return
				case <-subCtx.Done():
					return
				}
			}
		}(sub)
	}

	select {
	case msg := <-results:
		return msg, nil
	case <-subCtx.Done():
	}
	// The timeout can land in the instant between a goroutine handing over a
	// message and this select observing it. Settle the goroutines first, then
	// recover anything that made it into the channel; the event is already in
	// the seen set, so dropping it here would lose it for good.
	cancel()
	wait.Wait()
	select {
	case msg := <-results:
		return msg, nil
	default:
		return noMessage(), nil
	}
}

// maxSeenEvents bounds the dedup window; beyond it the oldest ids are
// forgotten, which at worst redelivers a very old message.
const maxSeenEvents = 1024

// markSeen records an event id and reports whether it was new.
func (c *Client) markSeen(id library.Sha256) bool {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	if c.seen == nil {
		c.seen = make(map[library.Sha256]struct{})
	}
	if _, ok := c.seen[id]; ok {
		return false
	}
	c.seen[id] = struct{}{}
	c.seenFIFO = append(c.seenFIFO, id)
	if len(c.seenFIFO) > maxSeenEvents {
		delete(c.seen, c.seenFIFO[0])
		c.seenFIFO = c.seenFIFO[1:]
	}
	return true
}

// pushInbox parks an already-received event for a later ReceiveMessage call.
func (c *Client) pushInbox(ev *nostr.Event) {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	if c.inbox == nil {
		c.inbox = library.NewEventStack(8)
	}
	c.inbox.Push(ev)
}

// popInbox drains the oldest parked event that still decodes.
func (c *Client) popInbox() (Message, bool) {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	if c.inbox == nil {
		return Message{}, false
	}
	for {
		ev, ok := c.inbox.Pop()
		if !ok {
			return Message{}, false
		}
		if msg, ok := c.decodeIncoming(*ev); ok {
			return msg, true
		}
	}
}

// decodeIncoming turns a raw inbox event into a readable message. Events that
// fail signature checks or decryption are skipped quietly; mixed-quality
// inboxes are normal on public relays.
func (c *Client) decodeIncoming(ev nostr.Event) (Message, bool) {
	if ok, err := ev.CheckSignature(); err != nil || !ok {
		return Message{}, false
	}
	switch ev.Kind {
	case codec.KindDirectMessage:
		sk, err := c.keys.PrivateKey(identity.EncodingRaw)
		if err != nil {
			return Message{}, false
		}
		shared, err := nip04.ComputeSharedSecret(ev.PubKey, sk)
		if err != nil {
			return Message{}, false
		}
		plaintext, err := nip04.Decrypt(ev.Content, shared)
		if err != nil {
			library.LogCLI(fmt.Sprintf("could not decrypt DM %s", ev.ID), 4)
			return Message{}, false
		}
		return Message{
			Type:    fmt.Sprintf("kind:%d", ev.Kind),
			Sender:  ev.PubKey,
			Content: plaintext,
		}, true
	case codec.KindGiftWrap:
		rumor, err := c.unwrapMessage(ev)
		if err != nil {
			library.LogCLI(fmt.Sprintf("could not unwrap %s: %s", ev.ID, err), 4)
			return Message{}, false
		}
		return Message{
			Type:    fmt.Sprintf("kind:%d", rumor.Kind),
			Sender:  rumor.PubKey,
			Content: rumor.Content,
		}, true
	}
	return Message{}, false
}
