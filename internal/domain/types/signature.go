package types

// Signature is one freshly generated request signature. Single use: a
// signature is never cached or reattached to a second request.
type Signature struct {
	SigningSessionID SigningSessionID `json:"signing_session_id"`
	Timestamp        int64            `json:"timestamp"`
	Nonce            string           `json:"nonce"`
	Signature        string           `json:"signature"`
}

// RefreshRequest is the body submitted to the relay to rotate a signing
// session. The signature covers the canonical refresh message, not this
// JSON encoding.
type RefreshRequest struct {
	ClientID  ClientID `json:"client_id"`
	Timestamp int64    `json:"timestamp"`
	Nonce     string   `json:"nonce"`
	Signature string   `json:"signature_b64"`
}
