package signer

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
)

// Wire contract for signed HTTP requests. The canonical message layout and
// the four transmitted values must match the verifier byte for byte.
const (
	ProtocolVersion = "v1"

	HeaderSession   = "x-vk-sig-session"
	HeaderTimestamp = "x-vk-sig-ts"
	HeaderNonce     = "x-vk-sig-nonce"
	HeaderSignature = "x-vk-sig-signature"
)

// Signer builds canonical signing messages for HTTP requests and renders
// the resulting signature as headers or query parameters.
type Signer struct {
	keys domain.KeyStore

	// Now and Nonce are swappable for deterministic tests.
	Now   func() int64
	Nonce func() string
}

// New constructs a Signer backed by the given key store.
func New(keys domain.KeyStore) *Signer {
	return &Signer{
		keys:  keys,
		Now:   func() int64 { return time.Now().Unix() },
		Nonce: crypto.NewNonce,
	}
}

// CanonicalMessage is the exact ordered byte string that is signed and later
// reconstructed by the verifier. pathAndQuery must be the path exactly as it
// will be sent, with no re-encoding.
func CanonicalMessage(timestamp int64, method, pathAndQuery string, session domain.SigningSessionID, nonce, bodyHash string) string {
	return strings.Join([]string{
		ProtocolVersion,
		strconv.FormatInt(timestamp, 10),
		strings.ToUpper(method),
		pathAndQuery,
		session.String(),
		nonce,
		bodyHash,
	}, "|")
}

// Sign produces a fresh single-use signature over one HTTP request. body is
// the exact byte sequence that will be transmitted; see NormalizeBody.
func (s *Signer) Sign(cred domain.PairedHostCredential, method, pathAndQuery string, body []byte) (domain.Signature, error) {
	if cred.SigningSessionID == "" {
		return domain.Signature{}, fmt.Errorf("host %s: %w", cred.HostID, domain.ErrPairingOutdated)
	}
	key, err := s.keys.SigningKey(cred)
	if err != nil {
		return domain.Signature{}, err
	}

	ts := s.Now()
	nonce := s.Nonce()
	msg := CanonicalMessage(ts, method, pathAndQuery, cred.SigningSessionID, nonce, crypto.Digest(body))

	return domain.Signature{
		SigningSessionID: cred.SigningSessionID,
		Timestamp:        ts,
		Nonce:            nonce,
		Signature:        crypto.B64(crypto.Sign(key, []byte(msg))),
	}, nil
}

// ToHeaders sets the four signature headers on h, leaving everything else
// untouched. Used whenever the transport supports custom headers.
func ToHeaders(sig domain.Signature, h http.Header) http.Header {
	if h == nil {
		h = http.Header{}
	}
	h.Set(HeaderSession, sig.SigningSessionID.String())
	h.Set(HeaderTimestamp, strconv.FormatInt(sig.Timestamp, 10))
	h.Set(HeaderNonce, sig.Nonce)
	h.Set(HeaderSignature, sig.Signature)
	return h
}

// ToQueryParams appends the four signature values as query parameters,
// producing a semantically equivalent signed request for transports that
// cannot carry custom headers (WebSocket upgrade URLs). The original path
// and query are left exactly as given; the verifier strips these four
// parameters before reconstructing the canonical message.
func ToQueryParams(pathAndQuery string, sig domain.Signature) string {
	sep := "?"
	if strings.Contains(pathAndQuery, "?") {
		sep = "&"
	}
	return pathAndQuery + sep + strings.Join([]string{
		HeaderSession + "=" + url.QueryEscape(sig.SigningSessionID.String()),
		HeaderTimestamp + "=" + strconv.FormatInt(sig.Timestamp, 10),
		HeaderNonce + "=" + url.QueryEscape(sig.Nonce),
		HeaderSignature + "=" + url.QueryEscape(sig.Signature),
	}, "&")
}
