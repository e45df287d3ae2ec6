package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/identity"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
)

// State is the connection lifecycle of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

const (
	// DefaultTimeout bounds publish and subscription setup.
	DefaultTimeout = 10 * time.Second
	// DefaultFetchTimeout bounds one-shot fetches; an empty result on expiry
	// is not an error.
	DefaultFetchTimeout = 2 * time.Second
)

// Client owns the relay connections and an identity, and exposes the
// marketplace operations on top of them. A Client is single-owner: it does
// not serialize concurrent calls against itself, so guard shared use
// externally. Construction is the only valid way to obtain one.
type Client struct {
	relays []string
	keys   *identity.Keys

	mu      deadlock.Mutex
	conns   map[string]*nostr.Relay
	state   State
	profile *models.Profile

	// inbox buffers messages that arrived during a ReceiveMessage call after
	// the first one was already handed to the caller. seen stops the same
	// event mirrored by several relays from being delivered twice; it is
	// bounded, evicting oldest-first.
	inboxMu  deadlock.Mutex
	inbox    *library.Stack
	seen     map[library.Sha256]struct{}
	seenFIFO []library.Sha256
}

// New connects a client identity to one or more relays. It tries to download
// the caller's own existing profile and starts with an empty one when the
// relays have none; a missing profile never fails construction.
func New(relayURLs []string, privateKey string) (*Client, error) {
	if len(relayURLs) == 0 {
		return nil, fmt.Errorf("%w: at least one relay URL is required", models.ErrValidation)
	}
	keys, err := identity.FromPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	c := &Client{
		relays: relayURLs,
		keys:   keys,
		conns:  make(map[string]*nostr.Relay),
		inbox:  library.NewEventStack(8),
		seen:   make(map[library.Sha256]struct{}),
	}
	profile, err := c.GetProfile(keys.Account())
	switch {
	case err == nil:
		c.profile = profile
	case errors.Is(err, models.ErrConnection):
		return nil, err
	default:
		c.profile = models.NewProfile(keys.Account())
	}
	return c, nil
}

// Keys returns the client identity.
func (c *Client) Keys() *identity.Keys {
	return c.keys
}

// Profile returns the locally cached own profile.
func (c *Client) Profile() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// State reports the connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// connect dials every configured relay that is not connected yet. One
// reachable relay is enough; total failure leaves the client disconnected
// and the next operation may retry.
func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected {
		return nil
	}
	c.state = StateConnecting
	for _, url := range c.relays {
		if _, ok := c.conns[url]; ok {
			continue
		}
		relay, err := nostr.RelayConnect(ctx, url)
		if err != nil {
			library.LogCLI(fmt.Sprintf("could not connect to relay %s: %s", url, err), 2)
			continue
		}
		c.conns[url] = relay
	}
	if len(c.conns) == 0 {
		c.state = StateDisconnected
		return fmt.Errorf("%w: none of %d relays reachable", models.ErrConnection, len(c.relays))
	}
	c.state = StateConnected
	return nil
}

// connections snapshots the live relay handles.
func (c *Client) connections() []*nostr.Relay {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := make([]*nostr.Relay, 0, len(c.conns))
	for _, relay := range c.conns {
		r = append(r, relay)
	}
	return r
}

// Close tears down every relay connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, relay := range c.conns {
		if err := relay.Close(); err != nil {
			library.LogCLI(fmt.Sprintf("closing relay %s: %s", url, err), 3)
		}
		delete(c.conns, url)
	}
	c.state = StateDisconnected
}

// newestByKey keeps only the newest event per key for replaceable kinds.
func newestByKey(events []nostr.Event, key func(nostr.Event) string) []nostr.Event {
	newest := make(map[string]nostr.Event)
	for _, ev := range events {
		k := key(ev)
		if best, ok := newest[k]; !ok || ev.CreatedAt > best.CreatedAt {
			newest[k] = ev
		}
	}
	r := make([]nostr.Event, 0, len(newest))
	for _, ev := range newest {
		r = append(r, ev)
	}
	return r
}

// replaceableKey addresses an event by its coordinate so stall and product
// updates collapse to the latest version.
func replaceableKey(ev nostr.Event) string {
	identifier, _ := library.GetIdentifier(ev)
	return codec.Coordinate{Kind: ev.Kind, PubKey: ev.PubKey, Identifier: identifier}.String()
}
