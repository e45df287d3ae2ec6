package delegation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"agora/engine/library"
	"agora/market/codec"
	"agora/market/models"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/nbd-wtf/go-nostr"
)

// Delegation is a NIP-26 capability grant parsed from a verified kind-30078
// event: the author lets the delegatee publish events on its behalf, scoped
// by kind and expiry. Immutable once parsed.
type Delegation struct {
	Author     library.Account
	Delegatee  library.Account
	Conditions string
	Token      string
	Tag        nostr.Tag
	Sig        string
	CreatedAt  int64
	ExpiresAt  int64

	// AllowedKinds empty means every kind is permitted. That is how the
	// grant was written, not a safe default; Parse warns when it sees one.
	AllowedKinds map[int]struct{}
}

// Parse accepts a raw delegation event as JSON.
func Parse(raw []byte) (*Delegation, error) {
	var e nostr.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: unparseable delegation event: %s", models.ErrValidation, err)
	}
	return ParseEvent(e)
}

// ParseEvent validates and dissects a kind-30078 delegation carrier event.
func ParseEvent(e nostr.Event) (*Delegation, error) {
	if e.Kind != codec.KindDelegation {
		return nil, fmt.Errorf("%w: event kind %d is not a delegation (kind %d)", models.ErrValidation, e.Kind, codec.KindDelegation)
	}
	ok, err := e.CheckSignature()
	if err != nil || !ok {
		return nil, models.ErrInvalidSignature
	}
	var tag nostr.Tag
	for _, t := range e.Tags {
		if t.StartsWith([]string{"delegation"}) && len(t) >= 4 {
			tag = t
			break
		}
	}
	if tag == nil {
		return nil, models.ErrMissingDelegationTag
	}

	d := &Delegation{
		Author:       e.PubKey,
		Delegatee:    tag[1],
		Conditions:   tag[2],
		Token:        tag[3],
		Tag:          tag,
		Sig:          e.Sig,
		CreatedAt:    int64(e.CreatedAt),
		AllowedKinds: make(map[int]struct{}),
	}
	d.parseConditions()
	if d.ExpiresAt == 0 {
		d.ExpiresAt = d.CreatedAt
	}
	if len(d.AllowedKinds) == 0 {
		library.LogCLI(fmt.Sprintf("delegation from %s permits every event kind", d.Author), 2)
	}
	return d, nil
}

// parseConditions walks the &-separated key=value grammar, skipping anything
// malformed rather than failing the whole delegation.
func (d *Delegation) parseConditions() {
	for _, pair := range strings.Split(d.Conditions, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch key {
		case "kind":
			for _, entry := range strings.Split(value, ",") {
				if kind, err := strconv.Atoi(strings.TrimSpace(entry)); err == nil {
					d.AllowedKinds[kind] = struct{}{}
				}
			}
		case "created_at":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				d.CreatedAt = ts
			}
		case "expires_at":
			if ts, err := strconv.ParseInt(value, 10, 64); err == nil {
				d.ExpiresAt = ts
			}
		}
	}
}

// Validate checks whether publishing the event under this delegation is
// authorized at the given time.
func (d *Delegation) Validate(e nostr.Event, now int64) error {
	if now > d.ExpiresAt {
		return models.ErrDelegationExpired
	}
	if len(d.AllowedKinds) > 0 {
		if _, ok := d.AllowedKinds[e.Kind]; !ok {
			return fmt.Errorf("%w: kind %d", models.ErrKindNotAllowed, e.Kind)
		}
	}
	return nil
}

// VerifyToken checks the NIP-26 token: a BIP-340 signature by the author over
// sha256("nostr:delegation:<delegatee>:<conditions>").
func (d *Delegation) VerifyToken() error {
	sigBytes, err := hex.DecodeString(d.Token)
	if err != nil {
		return fmt.Errorf("%w: token is not hex", models.ErrInvalidSignature)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidSignature, err)
	}
	pkBytes, err := hex.DecodeString(d.Author)
	if err != nil {
		return fmt.Errorf("%w: author key is not hex", models.ErrInvalidSignature)
	}
	pk, err := schnorr.ParsePubKey(pkBytes)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidSignature, err)
	}
	digest := sha256.Sum256([]byte("nostr:delegation:" + d.Delegatee + ":" + d.Conditions))
	if !sig.Verify(digest[:], pk) {
		return models.ErrInvalidSignature
	}
	return nil
}

// SignToken produces the NIP-26 token for a grant, for tests and for
// merchants issuing delegations to their agents.
func SignToken(privateKey string, delegatee library.Account, conditions string) (string, error) {
	skBytes, err := hex.DecodeString(privateKey)
	if err != nil || len(skBytes) != 32 {
		return "", fmt.Errorf("%w: private key must be 32 hex-encoded bytes", models.ErrInvalidKey)
	}
	digest := sha256.Sum256([]byte("nostr:delegation:" + delegatee + ":" + conditions))
	sk, _ := btcec.PrivKeyFromBytes(skBytes)
	sig, err := schnorr.Sign(sk, digest[:])
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig.Serialize()), nil
}
