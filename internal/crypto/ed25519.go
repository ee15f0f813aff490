package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"vkrelay/internal/domain"
)

// okpJWK is the subset of an OKP JSON Web Key carrying an Ed25519 pair.
type okpJWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"` // public key, base64url
	D   string `json:"d"` // private seed, base64url
}

// ParseSigningKeyJWK imports the Ed25519 private key from the JWK a pairing
// provisioned. Malformed material fails with domain.ErrKeyImport.
func ParseSigningKeyJWK(jwk []byte) (ed25519.PrivateKey, error) {
	var k okpJWK
	if err := json.Unmarshal(jwk, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyImport, err)
	}
	if k.Kty != "OKP" || k.Crv != "Ed25519" {
		return nil, fmt.Errorf("%w: unsupported key type %s/%s", domain.ErrKeyImport, k.Kty, k.Crv)
	}
	seed, err := base64.RawURLEncoding.DecodeString(k.D)
	if err != nil {
		return nil, fmt.Errorf("%w: bad private component: %v", domain.ErrKeyImport, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: private component is %d bytes, want %d", domain.ErrKeyImport, len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)

	// When the JWK carries the public half, check it matches the seed.
	if k.X != "" {
		pub, err := base64.RawURLEncoding.DecodeString(k.X)
		if err != nil {
			return nil, fmt.Errorf("%w: bad public component: %v", domain.ErrKeyImport, err)
		}
		if !ed25519.PublicKey(pub).Equal(priv.Public()) {
			return nil, fmt.Errorf("%w: public component does not match private seed", domain.ErrKeyImport)
		}
	}
	return priv, nil
}

// ParseVerifyKey imports a raw base64-encoded Ed25519 public key.
func ParseVerifyKey(b64 string) (ed25519.PublicKey, error) {
	raw, err := FromB64(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKeyImport, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, want %d", domain.ErrKeyImport, len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// Sign signs msg with priv and returns the raw signature.
func Sign(priv ed25519.PrivateKey, msg []byte) []byte {
	return ed25519.Sign(priv, msg)
}

// Verify verifies sig over msg with pub.
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(pub, msg, sig)
}
