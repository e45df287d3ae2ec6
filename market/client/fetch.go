package client

import (
	"context"
	"fmt"
	"time"

	"agora/engine/library"
	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
)

// Fetch collects stored events matching the filter from every connected
// relay, deduplicated by event ID with invalid signatures dropped. The
// timeout bounds the whole round; expiring with nothing collected returns an
// empty slice, not an error. An error means no relay could be reached.
func (c *Client) Fetch(filter nostr.Filter, timeout time.Duration) ([]nostr.Event, error) {
	return c.FetchContext(context.Background(), filter, timeout)
}

// FetchContext is Fetch with caller-controlled cancellation.
func (c *Client) FetchContext(ctx context.Context, filter nostr.Filter, timeout time.Duration) ([]nostr.Event, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	subCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events := make(map[library.Sha256]nostr.Event)
	var eventsMu deadlock.Mutex
	wait := deadlock.WaitGroup{}
	for _, relay := range c.connections() {
		wait.Add(1)
		go func(relay *nostr.Relay) {
			defer wait.Done()
			closer := library.ValidateSaneExecutionTime()
			defer closer()
			sub, err := relay.Subscribe(subCtx, nostr.Filters{filter})
			if err != nil {
				library.LogCLI(fmt.Sprintf("subscription to %s failed: %s", relay.URL, err), 3)
				return
			}
			defer sub.Unsub()
			for {
				select {
				case ev, open := <-sub.Events:
					if !open || ev == nil {
						return
					}
					if ok, err := ev.CheckSignature(); err != nil || !ok {
						library.LogCLI(fmt.Sprintf("dropping event %s with invalid signature", ev.ID), 3)
						continue
					}
					eventsMu.Lock()
					events[ev.ID] = *ev
					eventsMu.Unlock()
				case <-sub.EndOfStoredEvents:
					return
				case <-subCtx.Done():
					return
				}
			}
		}(relay)
	}
	wait.Wait()

	result := make([]nostr.Event, 0, len(events))
	for _, ev := range events {
		result = append(result, ev)
	}
	return result, nil
}

// fetchNewest returns the single newest event matching the filter, false when
// nothing arrived before the timeout.
func (c *Client) fetchNewest(filter nostr.Filter, timeout time.Duration) (nostr.Event, bool, error) {
	events, err := c.Fetch(filter, timeout)
	if err != nil {
		return nostr.Event{}, false, err
	}
	var newest nostr.Event
	found := false
	for _, ev := range events {
		if !found || ev.CreatedAt > newest.CreatedAt {
			newest = ev
			found = true
		}
	}
	return newest, found, nil
}
