package codec

import (
	"time"

	"agora/engine/library"
	"github.com/nbd-wtf/go-nostr"
)

// EncodeDeletion builds an unsigned kind-5 event requesting deletion of the
// target event. Relays may ignore it.
func EncodeDeletion(author library.Account, target library.Sha256, reason string) nostr.Event {
	return nostr.Event{
		PubKey:    author,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindDeletion,
		Tags:      nostr.Tags{nostr.Tag{"e", target}},
		Content:   reason,
	}
}

// EncodeTextNote builds an unsigned kind-1 note.
func EncodeTextNote(author library.Account, text string) nostr.Event {
	return nostr.Event{
		PubKey:    author,
		CreatedAt: nostr.Timestamp(time.Now().Unix()),
		Kind:      KindTextNote,
		Content:   text,
	}
}
