package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"vkrelay/internal/domain"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FromB64 decodes standard base64. Empty input round-trips to an empty
// slice; malformed input fails with domain.ErrDecode.
func FromB64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return b, nil
}

// Digest returns the base64-encoded SHA-256 of b. A nil and an empty slice
// digest identically.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return B64(sum[:])
}
