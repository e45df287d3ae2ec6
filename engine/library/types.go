package library

// Account is a nostr public key in hex form.
type Account = string

// Sha256 is a hex encoded sha256 digest, also the form of nostr event IDs.
type Sha256 = string

// StallID is a merchant-scoped stall identifier. It is part of the replaceable
// event coordinate and must stay stable across updates.
type StallID = string
