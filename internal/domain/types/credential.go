package types

import "encoding/json"

// PairedHostCredential is the stored credential for one paired host.
//
// The private key is kept as the JWK it was provisioned with (OKP/Ed25519);
// the server public key is the raw 32-byte Ed25519 key, base64 encoded. A
// credential without a signing session id cannot sign requests until the
// session has been refreshed or the host re-paired.
type PairedHostCredential struct {
	HostID           HostID           `json:"host_id"`
	ClientID         ClientID         `json:"client_id,omitempty"`
	PrivateKeyJWK    json.RawMessage  `json:"private_key_jwk"`
	ServerPublicKey  string           `json:"server_public_key,omitempty"`
	SigningSessionID SigningSessionID `json:"signing_session_id,omitempty"`
	PairedAtUTC      int64            `json:"paired_at_utc,omitempty"`
}

// WithSigningSession returns a copy of the credential carrying a new
// signing session id. The receiver is left untouched.
func (c PairedHostCredential) WithSigningSession(id SigningSessionID) PairedHostCredential {
	c.SigningSessionID = id
	return c
}
