// Package keystore caches imported cryptographic keys per paired host.
//
// It holds two caches: the client's own Ed25519 signing key (imported from
// the credential's JWK) and the remembered server verification key (imported
// from raw base64 bytes). Pairing-change notifications evict both entries
// for the affected host; this is a correctness requirement, not an
// optimization.
package keystore
