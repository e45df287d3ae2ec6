package models

import "errors"

// Failure taxonomy for the marketplace client. Construction, signature and
// validation failures surface immediately; best-effort network reads degrade
// to empty results instead of returning errors.
var (
	// ErrInvalidKey means a private or public key string was not valid in
	// either supported encoding (hex or bech32).
	ErrInvalidKey = errors.New("invalid key")

	// ErrValidation means a domain object is missing a required field and
	// cannot be encoded, e.g. a profile without a name.
	ErrValidation = errors.New("validation failed")

	// ErrConnection means a relay could not be added or connected to. The
	// client stays disconnected and the next operation may retry.
	ErrConnection = errors.New("relay connection failed")

	// ErrProfileNotFound means the relays were reachable but hold no kind-0
	// metadata for the requested account.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPublishRejected means relays responded but none accepted the event.
	ErrPublishRejected = errors.New("publish rejected by all relays")

	// ErrSendFailed means no relay accepted a direct or gift-wrapped message.
	ErrSendFailed = errors.New("message send failed")

	// Delegation failures. Always propagated, never silently recovered.
	ErrInvalidSignature     = errors.New("invalid delegation signature")
	ErrMissingDelegationTag = errors.New("delegation tag missing")
	ErrDelegationExpired    = errors.New("delegation expired")
	ErrKindNotAllowed       = errors.New("event kind not allowed by delegation")
)
