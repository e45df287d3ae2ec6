package codec

// Event kinds consumed and produced by the marketplace client.
const (
	KindProfile       = 0     // replaceable metadata
	KindTextNote      = 1     // short text note
	KindDirectMessage = 4     // NIP-04 encrypted DM
	KindDeletion      = 5     // best-effort deletion request
	KindSeal          = 13    // NIP-59 seal
	KindChatMessage   = 14    // NIP-17 rumor carried inside a gift wrap
	KindGiftWrap      = 1059  // NIP-59 gift wrap envelope
	KindStall         = 30017 // NIP-15 stall
	KindProduct       = 30018 // NIP-15 product
	KindMarketplace   = 30019 // NIP-15 marketplace listing
	KindDelegation    = 30078 // NIP-26 delegation carrier
)

// replaceable kinds follow last-write-wins by created_at per author (and
// identifier for the 30xxx range).
