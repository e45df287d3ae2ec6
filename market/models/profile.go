package models

import (
	"encoding/json"

	"agora/engine/library"
	"golang.org/x/exp/slices"
)

// ProfileURLPrefix is prepended to the public key to build a shareable URL.
const ProfileURLPrefix = "https://primal.net/p/"

// ExternalIdentity is a NIP-39 identity claim: a platform-qualified identity
// plus an opaque proof string.
type ExternalIdentity struct {
	Platform string `json:"platform"`
	Identity string `json:"identity"`
	Proof    string `json:"proof"`
}

// Profile is the identity-bound metadata published as a kind 0 event. One
// profile per public key; the newest event by created_at wins on the network.
type Profile struct {
	PublicKey   library.Account `json:"public_key"`
	About       string          `json:"about"`
	Banner      string          `json:"banner"`
	Bot         bool            `json:"bot"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Geohash     string          `json:"geohash,omitempty"`
	Hashtags    []string        `json:"hashtags,omitempty"`
	Locations   []string        `json:"locations,omitempty"`
	Lud16       string          `json:"lud16,omitempty"`
	Name        string          `json:"name"`
	Namespaces  []string        `json:"namespaces,omitempty"`
	Nip05       string          `json:"nip05"`
	Picture     string          `json:"picture"`
	ProfileURL  string          `json:"profile_url"`
	Website     string          `json:"website"`

	// PrimaryType is the unqualified label of the profile ("restaurant",
	// "retail", ...). Labels holds the full namespace → labels map; a bare
	// label tag sets only PrimaryType.
	PrimaryType string              `json:"profile_type"`
	Labels      map[string][]string `json:"labels,omitempty"`

	ExternalIdentities []ExternalIdentity `json:"external_identities,omitempty"`

	// Nip05Valid is a local verification result, never round-tripped.
	Nip05Valid bool `json:"-"`
}

// NewProfile returns an empty profile keyed to the given public key.
func NewProfile(publicKey library.Account) *Profile {
	return &Profile{
		PublicKey:  publicKey,
		ProfileURL: ProfileURLPrefix + publicKey,
	}
}

func (p *Profile) AddHashtag(hashtag string) {
	h := NormalizeHashtag(hashtag)
	if h == "" || slices.Contains(p.Hashtags, h) {
		return
	}
	p.Hashtags = append(p.Hashtags, h)
}

// AddLocation records a location (a geohash or free-form region string) with
// set semantics.
func (p *Profile) AddLocation(location string) {
	if location == "" || slices.Contains(p.Locations, location) {
		return
	}
	p.Locations = append(p.Locations, location)
}

func (p *Profile) AddNamespace(namespace string) {
	if namespace == "" || slices.Contains(p.Namespaces, namespace) {
		return
	}
	p.Namespaces = append(p.Namespaces, namespace)
}

// PrimaryNamespace returns the first namespace, or "" when none is set.
func (p *Profile) PrimaryNamespace() string {
	if len(p.Namespaces) == 0 {
		return ""
	}
	return p.Namespaces[0]
}

// AddLabel records a label under a namespace. The first label seen also
// becomes the primary type if none is set yet.
func (p *Profile) AddLabel(label, namespace string) {
	if label == "" {
		return
	}
	if p.PrimaryType == "" {
		p.PrimaryType = label
	}
	if namespace == "" {
		return
	}
	if p.Labels == nil {
		p.Labels = make(map[string][]string)
	}
	if slices.Contains(p.Labels[namespace], label) {
		return
	}
	p.Labels[namespace] = append(p.Labels[namespace], label)
}

func (p *Profile) HasLabel(label, namespace string) bool {
	return slices.Contains(p.Labels[namespace], label)
}

// AddExternalIdentity records a NIP-39 claim, ignoring exact duplicates.
func (p *Profile) AddExternalIdentity(platform, identity, proof string) {
	claim := ExternalIdentity{Platform: platform, Identity: identity, Proof: proof}
	if slices.Contains(p.ExternalIdentities, claim) {
		return
	}
	p.ExternalIdentities = append(p.ExternalIdentities, claim)
}

// MatchesFilter reports whether the profile carries the filter's namespace,
// its label within that namespace (or as primary type), and every hashtag.
// Hashtag matching is always re-verified client-side; relay-side tag filters
// are unreliable for "t" tags.
func (p *Profile) MatchesFilter(f ProfileFilter) bool {
	if f.Namespace != "" && !slices.Contains(p.Namespaces, f.Namespace) {
		return false
	}
	if f.Label != "" && !p.HasLabel(f.Label, f.Namespace) && p.PrimaryType != f.Label {
		return false
	}
	for _, h := range f.Hashtags {
		if !slices.Contains(p.Hashtags, NormalizeHashtag(h)) {
			return false
		}
	}
	return true
}

func (p *Profile) ToJSON() (string, error) {
	b, err := json.Marshal(p)
	return string(b), err
}

// ProfileFromJSON restores a profile from its local JSON form. The old
// single-namespace field is still accepted.
func ProfileFromJSON(s string) (*Profile, error) {
	var raw struct {
		Profile
		Namespace string `json:"namespace"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	p := raw.Profile
	if raw.Namespace != "" {
		p.AddNamespace(raw.Namespace)
	}
	if p.ProfileURL == "" {
		p.ProfileURL = ProfileURLPrefix + p.PublicKey
	}
	return &p, nil
}
