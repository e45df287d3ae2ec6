package library

import (
	"github.com/nbd-wtf/go-nostr"
)

// GetFirstTag returns the value of the first tag whose key matches.
func GetFirstTag(e nostr.Event, key string) (string, bool) {
	for _, tag := range e.Tags {
		if tag.StartsWith([]string{key}) {
			return tag.Value(), true
		}
	}
	return "", false
}

// GetAllTags returns every tag with the given key, in event order.
func GetAllTags(e nostr.Event, key string) (r []nostr.Tag) {
	for _, tag := range e.Tags {
		if tag.StartsWith([]string{key}) {
			r = append(r, tag)
		}
	}
	return
}

// GetIdentifier returns the NIP-33 "d" tag that scopes a replaceable event.
func GetIdentifier(e nostr.Event) (string, bool) {
	return GetFirstTag(e, "d")
}

// GetHashtags returns the values of all "t" tags.
func GetHashtags(e nostr.Event) (r []string) {
	for _, tag := range GetAllTags(e, "t") {
		if len(tag) > 1 && len(tag[1]) > 0 {
			r = append(r, tag[1])
		}
	}
	return
}

// GetGeohash returns the "g" tag value if one is present.
func GetGeohash(e nostr.Event) (string, bool) {
	return GetFirstTag(e, "g")
}
