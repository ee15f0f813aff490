package wsenvelope

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
	"vkrelay/internal/metrics"
	"vkrelay/internal/signer"
)

// SigningContext is the per-connection envelope state: the signing session,
// the nonce the upgrade request was signed with, both keys, and two
// independent strictly-increasing sequence counters. It is created when a
// signed connection opens and released when the connection closes.
type SigningContext struct {
	SessionID    domain.SigningSessionID
	RequestNonce string

	signKey   ed25519.PrivateKey
	verifyKey ed25519.PublicKey

	outMu       sync.Mutex
	outboundSeq uint64

	inMu       sync.Mutex
	inboundSeq uint64
}

// NewSigningContext builds the envelope state for one connection, with both
// counters at zero.
func NewSigningContext(session domain.SigningSessionID, requestNonce string, signKey ed25519.PrivateKey, verifyKey ed25519.PublicKey) *SigningContext {
	return &SigningContext{
		SessionID:    session,
		RequestNonce: requestNonce,
		signKey:      signKey,
		verifyKey:    verifyKey,
	}
}

// canonical is the byte string covered by an envelope signature, analogous
// to the HTTP signing scheme:
//
//	v1|{seq}|{msg_type}|{payload_b64}
func canonical(seq uint64, msgType domain.WsMessageType, payloadB64 string) string {
	return strings.Join([]string{
		signer.ProtocolVersion,
		strconv.FormatUint(seq, 10),
		msgType.String(),
		payloadB64,
	}, "|")
}

// EncodeOutbound wraps one logical frame in a signed envelope, assigning the
// next outbound sequence number in call order. Control frames are encoded
// exactly like data frames.
func (c *SigningContext) EncodeOutbound(msgType domain.WsMessageType, payload []byte) (domain.Envelope, error) {
	if !msgType.Valid() {
		return domain.Envelope{}, fmt.Errorf("unknown envelope message type %q", msgType)
	}

	c.outMu.Lock()
	c.outboundSeq++
	seq := c.outboundSeq
	c.outMu.Unlock()

	payloadB64 := crypto.B64(payload)
	sig := crypto.Sign(c.signKey, []byte(canonical(seq, msgType, payloadB64)))

	return domain.Envelope{
		Version:      signer.ProtocolVersion,
		Seq:          seq,
		MsgType:      msgType,
		PayloadB64:   payloadB64,
		SignatureB64: crypto.B64(sig),
	}, nil
}

// DecodeInbound verifies an envelope against the server key and enforces
// strict sequence monotonicity. An envelope whose seq is not greater than
// the last accepted one is a duplicate or reordering and fails with
// domain.ErrRejectedReplay; a bad signature fails with
// domain.ErrSignatureInvalid. Neither is ever delivered as payload.
func (c *SigningContext) DecodeInbound(env domain.Envelope) ([]byte, error) {
	if env.Version != signer.ProtocolVersion {
		metrics.EnvelopesRejected.WithLabelValues("signature").Inc()
		return nil, fmt.Errorf("%w: unsupported envelope version %q", domain.ErrSignatureInvalid, env.Version)
	}
	if !env.MsgType.Valid() {
		metrics.EnvelopesRejected.WithLabelValues("signature").Inc()
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrSignatureInvalid, env.MsgType)
	}

	sig, err := crypto.FromB64(env.SignatureB64)
	if err != nil {
		metrics.EnvelopesRejected.WithLabelValues("signature").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrSignatureInvalid, err)
	}
	msg := canonical(env.Seq, env.MsgType, env.PayloadB64)
	if !crypto.Verify(c.verifyKey, []byte(msg), sig) {
		metrics.EnvelopesRejected.WithLabelValues("signature").Inc()
		return nil, fmt.Errorf("seq %d: %w", env.Seq, domain.ErrSignatureInvalid)
	}

	// Verify before the replay check so an attacker cannot advance the
	// counter with forged envelopes.
	c.inMu.Lock()
	if env.Seq <= c.inboundSeq {
		c.inMu.Unlock()
		metrics.EnvelopesRejected.WithLabelValues("replay").Inc()
		return nil, fmt.Errorf("seq %d after %d: %w", env.Seq, c.inboundSeq, domain.ErrRejectedReplay)
	}
	c.inboundSeq = env.Seq
	c.inMu.Unlock()

	return crypto.FromB64(env.PayloadB64)
}

// Release drops key material when the connection closes.
func (c *SigningContext) Release() {
	c.signKey = nil
	c.verifyKey = nil
}
