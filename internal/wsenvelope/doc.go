// Package wsenvelope wraps WebSocket frames in signed, sequenced envelopes.
//
// Every logical frame, data and control alike, travels as one envelope
// {version, seq, msg_type, payload_b64, signature_b64}. Outbound envelopes
// are signed with the client key; inbound envelopes are verified against
// the remembered server key and then checked for strict sequence
// monotonicity, so the relay in the middle can neither forge traffic nor
// silently replay it.
package wsenvelope
