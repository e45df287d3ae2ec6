package library

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Sum digests a payload into the hex form shared by event ids and
// payment references.
func Sha256Sum(data []byte) Sha256 {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
