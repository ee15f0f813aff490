package main

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
	"vkrelay/internal/signer"
)

// maxClockSkew bounds how far a request timestamp may drift from the relay
// clock in either direction.
const maxClockSkew = 5 * time.Minute

// verifyRequest reconstructs the canonical message for a tunneled request and
// checks it against the client's key. On failure it writes the error response
// and returns false. The body is replaced with a replayable copy so handlers
// can read it again.
func (s *server) verifyRequest(w http.ResponseWriter, r *http.Request, suffix string, st *hostState) bool {
	sig, fromQuery, ok := extractSignature(r)
	if !ok {
		httpError(w, http.StatusUnauthorized, "missing request signature")
		return false
	}

	body, err := readBody(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "read body")
		return false
	}

	// The client signed the path relative to the tunnel base. When the
	// signature travelled as query parameters those four pairs were appended
	// after signing and must be stripped before reconstruction.
	pathAndQuery := suffix
	if q := stripSignatureParams(r.URL.RawQuery, fromQuery); q != "" {
		pathAndQuery += "?" + q
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sig.SigningSessionID != st.signingSession {
		httpError(w, http.StatusUnauthorized, "unknown or expired signing session")
		return false
	}
	if skew := time.Since(time.Unix(sig.Timestamp, 0)); skew > maxClockSkew || skew < -maxClockSkew {
		httpError(w, http.StatusUnauthorized, "timestamp outside accepted window")
		return false
	}
	if st.seenNonces[sig.Nonce] {
		httpError(w, http.StatusUnauthorized, "nonce reuse")
		return false
	}

	raw, err := crypto.FromB64(sig.Signature)
	if err != nil {
		httpError(w, http.StatusBadRequest, "malformed signature")
		return false
	}
	msg := signer.CanonicalMessage(sig.Timestamp, r.Method, pathAndQuery, sig.SigningSessionID, sig.Nonce, crypto.Digest(body))
	if !crypto.Verify(st.clientPub, []byte(msg), raw) {
		s.log.Warn("rejecting request with bad signature",
			zap.String("path", pathAndQuery),
			zap.String("signing_session_id", sig.SigningSessionID.String()))
		httpError(w, http.StatusUnauthorized, "bad request signature")
		return false
	}
	st.seenNonces[sig.Nonce] = true
	return true
}

// extractSignature pulls the four signature values from headers, falling back
// to query parameters for transports that cannot carry custom headers.
func extractSignature(r *http.Request) (domain.Signature, bool, bool) {
	get := r.Header.Get
	fromQuery := false
	if get(signer.HeaderSignature) == "" {
		q := r.URL.Query()
		get = q.Get
		fromQuery = true
	}
	if get(signer.HeaderSignature) == "" {
		return domain.Signature{}, false, false
	}
	ts, err := strconv.ParseInt(get(signer.HeaderTimestamp), 10, 64)
	if err != nil {
		return domain.Signature{}, false, false
	}
	return domain.Signature{
		SigningSessionID: domain.SigningSessionID(get(signer.HeaderSession)),
		Timestamp:        ts,
		Nonce:            get(signer.HeaderNonce),
		Signature:        get(signer.HeaderSignature),
	}, fromQuery, true
}

// stripSignatureParams removes the four signature pairs from a raw query
// string while leaving every other pair byte for byte as sent, so the
// reconstructed path matches what the client signed.
func stripSignatureParams(rawQuery string, fromQuery bool) string {
	if rawQuery == "" {
		return ""
	}
	if !fromQuery {
		return rawQuery
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		switch key {
		case signer.HeaderSession, signer.HeaderTimestamp, signer.HeaderNonce, signer.HeaderSignature:
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// readBody drains and restores the request body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}
