package crypto

import (
	"strings"

	"github.com/google/uuid"
)

// NewNonce returns a fresh request nonce: a UUIDv4 with the hyphens
// stripped, 32 lowercase hex characters. The format is part of the wire
// contract; signer and verifier must agree on it.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
