package codec

import (
	"fmt"
	"strconv"
	"strings"

	"agora/engine/library"
	"github.com/nbd-wtf/go-nostr"
)

// Coordinate addresses a replaceable event series: (kind, author, identifier).
type Coordinate struct {
	Kind       int
	PubKey     library.Account
	Identifier string
}

// StallCoordinate addresses a merchant's stall so products can be filtered to
// it without scanning every product event.
func StallCoordinate(merchant library.Account, stallID library.StallID) Coordinate {
	return Coordinate{Kind: KindStall, PubKey: merchant, Identifier: stallID}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%s:%s", c.Kind, c.PubKey, c.Identifier)
}

// Tag renders the coordinate as an "a" tag.
func (c Coordinate) Tag() nostr.Tag {
	return nostr.Tag{"a", c.String()}
}

// ParseCoordinate parses "kind:pubkey:identifier". The identifier may itself
// contain colons.
func ParseCoordinate(s string) (Coordinate, bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Coordinate{}, false
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{Kind: kind, PubKey: parts[1], Identifier: parts[2]}, true
}

// EventCoordinate returns the first coordinate tag of an event, if any.
func EventCoordinate(e nostr.Event) (Coordinate, bool) {
	for _, tag := range library.GetAllTags(e, "a") {
		if len(tag) > 1 {
			if c, ok := ParseCoordinate(tag[1]); ok {
				return c, true
			}
		}
	}
	return Coordinate{}, false
}
