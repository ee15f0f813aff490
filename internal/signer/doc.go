// Package signer builds the canonical signing message for HTTP requests and
// renders signatures as headers or query parameters.
//
// Canonical message format, pipe-joined in this exact order:
//
//	v1|{timestamp}|{METHOD}|{pathAndQuery}|{signing_session_id}|{nonce}|{body_sha256_base64}
//
// The ordering, separator, and version tag are part of the wire contract
// shared with the relay and the paired host's verifier.
package signer
