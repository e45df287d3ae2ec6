package client

import (
	"context"
	"fmt"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
)

// Publish signs the event if it carries no signature yet and sends it to
// every connected relay. One acknowledgement is success; relays that refuse
// are logged and skipped. The event ID is returned on success.
func (c *Client) Publish(ev nostr.Event) (library.Sha256, error) {
	return c.PublishContext(context.Background(), ev)
}

// PublishContext is Publish with caller-controlled cancellation.
func (c *Client) PublishContext(ctx context.Context, ev nostr.Event) (library.Sha256, error) {
	if err := c.connect(ctx); err != nil {
		return "", err
	}
	if ev.Sig == "" {
		if err := c.keys.Sign(&ev); err != nil {
			return "", err
		}
	}
	pubCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	accepted := 0
	var acceptedMu deadlock.Mutex
	wait := deadlock.WaitGroup{}
	for _, relay := range c.connections() {
		wait.Add(1)
		go func(relay *nostr.Relay) {
			defer wait.Done()
			closer := library.ValidateSaneExecutionTime()
			defer closer()
			if err := relay.Publish(pubCtx, ev); err != nil {
				library.LogCLI(fmt.Sprintf("relay %s refused event %s: %s", relay.URL, ev.ID, err), 3)
				return
			}
			acceptedMu.Lock()
			accepted++
			acceptedMu.Unlock()
		}(relay)
	}
	wait.Wait()
	if accepted == 0 {
		return "", fmt.Errorf("%w: event %s accepted by no relay", models.ErrPublishRejected, ev.ID)
	}
	return ev.ID, nil
}

// Delete publishes a kind-5 deletion request for one of the caller's own
// events. Relays are free to ignore it.
func (c *Client) Delete(target library.Sha256, reason string) (library.Sha256, error) {
	return c.Publish(codec.EncodeDeletion(c.keys.Account(), target, reason))
}

// PublishNote publishes a plain kind-1 text note.
func (c *Client) PublishNote(text string) (library.Sha256, error) {
	return c.Publish(codec.EncodeTextNote(c.keys.Account(), text))
}
