package models

import (
	"encoding/json"
	"strings"
)

// ProfileFilter is a query-side value object: it narrows merchant discovery to
// profiles carrying a namespace tag, a label within it, and a set of hashtags.
// It is never published to the network.
type ProfileFilter struct {
	Namespace string   `json:"namespace"`
	Label     string   `json:"label"`
	Hashtags  []string `json:"hashtags"`
}

// NewProfileFilter normalizes hashtags on the way in: lowercased, leading '#'
// stripped, empties dropped.
func NewProfileFilter(namespace, label string, hashtags ...string) ProfileFilter {
	f := ProfileFilter{Namespace: namespace, Label: label}
	for _, h := range hashtags {
		if n := NormalizeHashtag(h); n != "" {
			f.Hashtags = append(f.Hashtags, n)
		}
	}
	return f
}

// NormalizeHashtag lowercases a hashtag and strips a leading '#'.
func NormalizeHashtag(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "#"))
}

func (f ProfileFilter) ToJSON() (string, error) {
	b, err := json.Marshal(f)
	return string(b), err
}

func ProfileFilterFromJSON(s string) (ProfileFilter, error) {
	var f ProfileFilter
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return ProfileFilter{}, err
	}
	return NewProfileFilter(f.Namespace, f.Label, f.Hashtags...), nil
}
