package client

import (
	"fmt"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/identity"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
)

// SetProfile publishes the profile as the caller's kind-0 metadata and caches
// it locally. The profile must belong to the client identity.
func (c *Client) SetProfile(p *models.Profile) (library.Sha256, error) {
	if p.PublicKey != c.keys.Account() {
		return "", fmt.Errorf("%w: profile belongs to %s, not this client", models.ErrValidation, p.PublicKey)
	}
	ev, err := codec.EncodeProfile(p)
	if err != nil {
		return "", err
	}
	id, err := c.Publish(ev)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()
	return id, nil
}

// GetProfile downloads the newest kind-0 metadata for an account given as
// npub or hex.
func (c *Client) GetProfile(account string) (*models.Profile, error) {
	pubkey, err := identity.ParsePubKey(account)
	if err != nil {
		return nil, err
	}
	ev, found, err := c.fetchNewest(nostr.Filter{
		Kinds:   []int{codec.KindProfile},
		Authors: []string{pubkey},
	}, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", models.ErrProfileNotFound, pubkey)
	}
	return codec.DecodeProfile(ev)
}

// SetStall publishes a stall under the caller's key. The stall id is the
// replaceable-event identifier, so republishing with the same id updates the
// stall in place.
func (c *Client) SetStall(s models.Stall) (library.Sha256, error) {
	ev, err := codec.EncodeStall(c.keys.Account(), s)
	if err != nil {
		return "", err
	}
	return c.Publish(ev)
}

// GetStalls lists the stalls of one merchant, or of every merchant when the
// account is empty. Only the newest version of each stall is returned.
func (c *Client) GetStalls(account string) ([]models.Stall, error) {
	filter := nostr.Filter{Kinds: []int{codec.KindStall}}
	if account != "" {
		pubkey, err := identity.ParsePubKey(account)
		if err != nil {
			return nil, err
		}
		filter.Authors = []string{pubkey}
	}
	events, err := c.Fetch(filter, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	stalls := make([]models.Stall, 0, len(events))
	for _, ev := range newestByKey(events, replaceableKey) {
		stalls = append(stalls, codec.DecodeStallEvent(ev))
	}
	return stalls, nil
}

// SetProduct publishes a product under the caller's key. Like stalls,
// products are replaceable by id.
func (c *Client) SetProduct(p models.Product) (library.Sha256, error) {
	ev, err := codec.EncodeProduct(c.keys.Account(), p)
	if err != nil {
		return "", err
	}
	return c.Publish(ev)
}

// GetProducts lists a merchant's products, optionally narrowed to one stall.
// The stall constraint is pushed to the relays as a coordinate tag filter and
// re-checked locally because not every relay implements tag queries.
func (c *Client) GetProducts(account string, stallID string) ([]models.Product, error) {
	pubkey, err := identity.ParsePubKey(account)
	if err != nil {
		return nil, err
	}
	filter := nostr.Filter{
		Kinds:   []int{codec.KindProduct},
		Authors: []string{pubkey},
	}
	if stallID != "" {
		filter.Tags = nostr.TagMap{"a": []string{codec.StallCoordinate(pubkey, stallID).String()}}
	}
	events, err := c.Fetch(filter, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(events))
	for _, ev := range newestByKey(events, replaceableKey) {
		product, err := codec.DecodeProduct(ev)
		if err != nil {
			library.LogCLI(fmt.Sprintf("skipping malformed product %s: %s", ev.ID, err), 3)
			continue
		}
		if stallID != "" && product.StallID != stallID {
			continue
		}
		if product.Seller == "" {
			product.Seller = ev.PubKey
		}
		products = append(products, product)
	}
	return products, nil
}

// GetMerchants discovers merchant profiles. Without a filter it walks every
// stall on the relays and resolves the authors' profiles, folding stall
// geohashes into the profile locations. With a filter it queries kind-0
// events by namespace and label tags and re-verifies every condition locally.
func (c *Client) GetMerchants(filter *models.ProfileFilter) ([]*models.Profile, error) {
	if filter == nil {
		return c.merchantsFromStalls()
	}
	relayFilter := nostr.Filter{Kinds: []int{codec.KindProfile}}
	tags := nostr.TagMap{}
	if filter.Namespace != "" {
		tags["L"] = []string{filter.Namespace}
	}
	if filter.Label != "" {
		tags["l"] = []string{filter.Label}
	}
	if len(tags) > 0 {
		relayFilter.Tags = tags
	}
	events, err := c.Fetch(relayFilter, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	var merchants []*models.Profile
	for _, ev := range newestByKey(events, func(ev nostr.Event) string { return ev.PubKey }) {
		profile, err := codec.DecodeProfile(ev)
		if err != nil || !profile.MatchesFilter(*filter) {
			continue
		}
		merchants = append(merchants, profile)
	}
	return merchants, nil
}

// merchantsFromStalls resolves every stall author to a profile. Authors whose
// profile cannot be fetched are skipped; their stalls alone are not enough to
// present them as merchants.
func (c *Client) merchantsFromStalls() ([]*models.Profile, error) {
	events, err := c.Fetch(nostr.Filter{Kinds: []int{codec.KindStall}}, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	geohashes := make(map[library.Account][]string)
	authors := make([]library.Account, 0)
	seen := make(map[library.Account]bool)
	for _, ev := range events {
		if gh, ok := library.GetGeohash(ev); ok {
			geohashes[ev.PubKey] = append(geohashes[ev.PubKey], gh)
		}
		if !seen[ev.PubKey] {
			seen[ev.PubKey] = true
			authors = append(authors, ev.PubKey)
		}
	}
	var merchants []*models.Profile
	for _, author := range authors {
		profile, err := c.GetProfile(author)
		if err != nil {
			library.LogCLI(fmt.Sprintf("no profile for stall owner %s", author), 4)
			continue
		}
		for _, gh := range geohashes[author] {
			profile.AddLocation(gh)
		}
		merchants = append(merchants, profile)
	}
	return merchants, nil
}

// GetMerchantsInMarketplace resolves the members of a named kind-30019
// marketplace curated by the given owner, optionally narrowed by a profile
// filter. An owner with no marketplace of that name yields an empty result.
func (c *Client) GetMerchantsInMarketplace(owner string, name string, filter *models.ProfileFilter) ([]*models.Profile, error) {
	pubkey, err := identity.ParsePubKey(owner)
	if err != nil {
		return nil, err
	}
	events, err := c.Fetch(nostr.Filter{
		Kinds:   []int{codec.KindMarketplace},
		Authors: []string{pubkey},
	}, DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}
	members := make([]library.Account, 0)
	seen := make(map[library.Account]bool)
	for _, ev := range newestByKey(events, replaceableKey) {
		marketplace, ok := codec.DecodeMarketplace(ev.Content)
		if !ok || marketplace.Name != name {
			continue
		}
		for _, member := range marketplace.Merchants {
			if !seen[member] {
				seen[member] = true
				members = append(members, member)
			}
		}
	}
	var merchants []*models.Profile
	for _, member := range members {
		profile, err := c.GetProfile(member)
		if err != nil {
			library.LogCLI(fmt.Sprintf("no profile for marketplace member %s", member), 4)
			continue
		}
		if filter != nil && !profile.MatchesFilter(*filter) {
			continue
		}
		merchants = append(merchants, profile)
	}
	return merchants, nil
}
