package client

import (
	"context"

	"agora/market/models"
	"github.com/nbd-wtf/go-nostr/nip05"
)

// VerifyNip05 resolves the profile's NIP-05 identifier through its domain's
// well-known endpoint and records whether it points back at the profile's
// own key. Verification is an explicit step so bulk profile fetches stay
// cheap; the result is local-only and never round-tripped.
func (c *Client) VerifyNip05(ctx context.Context, p *models.Profile) bool {
	p.Nip05Valid = false
	if p.Nip05 == "" {
		return false
	}
	pointer, err := nip05.QueryIdentifier(ctx, p.Nip05)
	if err != nil || pointer == nil {
		return false
	}
	p.Nip05Valid = pointer.PublicKey == p.PublicKey
	return p.Nip05Valid
}
