package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agora/engine/library"
	"agora/market/models"
	"github.com/nbd-wtf/go-nostr"
	"golang.org/x/exp/slices"
)

// profileMetadata is the standard kind-0 content shape. Everything beyond it
// travels in tags.
type profileMetadata struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Website     string `json:"website,omitempty"`
	Nip05       string `json:"nip05,omitempty"`
	Lud16       string `json:"lud16,omitempty"`
	Bot         bool   `json:"bot"`
}

// EncodeProfile builds an unsigned kind-0 event from a profile. The name is
// required; everything else is optional.
func EncodeProfile(p *models.Profile) (nostr.Event, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nostr.Event{}, fmt.Errorf("%w: profile name is required", models.ErrValidation)
	}
	content, err := json.Marshal(profileMetadata{
		Name:        p.Name,
		DisplayName: p.DisplayName,
		About:       p.About,
		Picture:     p.Picture,
		Banner:      p.Banner,
		Website:     p.Website,
		Nip05:       p.Nip05,
		Lud16:       p.Lud16,
		Bot:         p.Bot,
	})
	if err != nil {
		return nostr.Event{}, err
	}

	var tags nostr.Tags
	for _, hashtag := range p.Hashtags {
		tags = append(tags, nostr.Tag{"t", hashtag})
	}
	for _, namespace := range p.Namespaces {
		tags = append(tags, nostr.Tag{"L", namespace})
	}
	// The bare primary-type tag goes first: decoders take the first label
	// they see as the primary type, so the explicit choice must win over
	// whatever namespaced label happens to sort ahead of it.
	if p.PrimaryType != "" {
		tags = append(tags, nostr.Tag{"l", p.PrimaryType})
	}
	namespaces := make([]string, 0, len(p.Labels))
	for namespace := range p.Labels {
		namespaces = append(namespaces, namespace)
	}
	slices.Sort(namespaces)
	for _, namespace := range namespaces {
		for _, label := range p.Labels[namespace] {
			tags = append(tags, nostr.Tag{"l", label, namespace})
		}
	}
	if p.Email != "" {
		tags = append(tags, nostr.Tag{"i", "email:" + p.Email, ""})
	}
	if p.Phone != "" {
		tags = append(tags, nostr.Tag{"i", "phone:" + p.Phone, ""})
	}
	if p.Geohash != "" {
		tags = append(tags, nostr.Tag{"i", "geo:" + p.Geohash, ""})
	}
	for _, claim := range p.ExternalIdentities {
		tags = append(tags, nostr.Tag{"i", claim.Platform + ":" + claim.Identity, claim.Proof})
	}

	return nostr.Event{
		PubKey:    p.PublicKey,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindProfile,
		Tags:      tags,
		Content:   string(content),
	}, nil
}

// DecodeProfile reconstructs a profile from a kind-0 event. Missing content
// fields default to empty; unknown or malformed tags are skipped, never
// fatal.
func DecodeProfile(e nostr.Event) (*models.Profile, error) {
	if e.Kind != KindProfile {
		return nil, fmt.Errorf("%w: event kind %d is not a profile", models.ErrValidation, e.Kind)
	}
	p := models.NewProfile(e.PubKey)

	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(e.Content), &metadata); err != nil {
		library.LogCLI(fmt.Sprintf("unparseable profile content from %s", e.PubKey), 3)
		metadata = map[string]interface{}{}
	}
	p.Name = getString(metadata, "name")
	p.DisplayName = getString(metadata, "display_name")
	p.About = getString(metadata, "about")
	p.Picture = getString(metadata, "picture")
	p.Banner = getString(metadata, "banner")
	p.Website = getString(metadata, "website")
	p.Nip05 = getString(metadata, "nip05")
	p.Lud16 = getString(metadata, "lud16")
	p.Bot = getBool(metadata, "bot")

	for _, tag := range e.Tags {
		if len(tag) < 2 || len(tag[1]) == 0 {
			continue
		}
		switch tag[0] {
		case "t":
			p.AddHashtag(tag[1])
		case "L":
			p.AddNamespace(tag[1])
		case "l":
			if len(tag) >= 3 && len(tag[2]) > 0 {
				p.AddLabel(tag[1], tag[2])
			} else if p.PrimaryType == "" {
				// A bare label sets the primary type only; the namespace map
				// stays untouched.
				p.PrimaryType = tag[1]
			}
		case "i":
			decodeIdentityTag(p, tag)
		}
	}
	return p, nil
}

// decodeIdentityTag routes an "i" tag: the reserved legacy forms fill
// dedicated profile fields, everything else in platform:identity form becomes
// a NIP-39 external identity claim.
func decodeIdentityTag(p *models.Profile, tag nostr.Tag) {
	platform, id, found := strings.Cut(tag[1], ":")
	if !found || id == "" {
		return
	}
	switch platform {
	case "email":
		p.Email = id
	case "phone":
		p.Phone = id
	case "geo":
		p.Geohash = id
		p.AddLocation(id)
	default:
		proof := ""
		if len(tag) > 2 {
			proof = tag[2]
		}
		p.AddExternalIdentity(platform, id, proof)
	}
}
