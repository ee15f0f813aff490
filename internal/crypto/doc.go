// Package crypto exposes the minimal primitives used by vkrelay.
//
// Contents
//
//   - Base64 and digest helpers shared by the signing and envelope layers
//     (B64, FromB64, Digest)
//   - Ed25519 signing and verification plus key import from stored
//     credential material (Sign, Verify, ParseSigningKeyJWK, ParseVerifyKey)
//   - Request nonce generation with a pinned wire format (NewNonce)
//
// # Notes
//
// The digest and base64 helpers define the byte-level contract between
// signer and verifier; both sides of the relay must agree on them exactly.
package crypto
