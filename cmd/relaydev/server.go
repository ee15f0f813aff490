package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
	"vkrelay/internal/session"
	"vkrelay/internal/wsenvelope"
)

// hostState is everything the relay remembers about one paired host.
type hostState struct {
	clientID       domain.ClientID
	clientPub      ed25519.PublicKey
	serverPriv     ed25519.PrivateKey
	signingSession domain.SigningSessionID
	seenNonces     map[string]bool
}

type server struct {
	log *zap.Logger

	mu       sync.Mutex
	hosts    map[domain.HostID]*hostState
	sessions map[domain.RelaySessionID]domain.HostID
	codes    map[domain.AuthCode]domain.HostID

	upgrader websocket.Upgrader
}

func newServer(log *zap.Logger) *server {
	return &server{
		log:      log,
		hosts:    make(map[domain.HostID]*hostState),
		sessions: make(map[domain.RelaySessionID]domain.HostID),
		codes:    make(map[domain.AuthCode]domain.HostID),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

// handlePair provisions a fresh pairing for a host and returns the complete
// credential file, private JWK included. A real relay would never see the
// client's private key; this is the development shortcut that makes
// `vkrelay pair add` a one-step flow.
func (s *server) handlePair(w http.ResponseWriter, r *http.Request) {
	host := domain.HostID(chi.URLParam(r, "host"))

	clientPub, clientPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "generate client key")
		return
	}
	serverPub, serverPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "generate server key")
		return
	}

	jwk, err := json.Marshal(map[string]string{
		"kty": "OKP",
		"crv": "Ed25519",
		"d":   base64.RawURLEncoding.EncodeToString(clientPriv.Seed()),
		"x":   base64.RawURLEncoding.EncodeToString(clientPub),
	})
	if err != nil {
		httpError(w, http.StatusInternalServerError, "encode jwk")
		return
	}

	cred := domain.PairedHostCredential{
		HostID:           host,
		ClientID:         domain.ClientID(uuid.NewString()),
		PrivateKeyJWK:    jwk,
		ServerPublicKey:  crypto.B64(serverPub),
		SigningSessionID: domain.SigningSessionID(uuid.NewString()),
	}

	s.mu.Lock()
	s.hosts[host] = &hostState{
		clientID:       cred.ClientID,
		clientPub:      clientPub,
		serverPriv:     serverPriv,
		signingSession: cred.SigningSessionID,
		seenNonces:     make(map[string]bool),
	}
	s.mu.Unlock()

	s.log.Info("paired host", zap.String("host_id", host.String()))
	writeJSON(w, http.StatusOK, cred)
}

func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		HostID string `json:"host_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.HostID == "" {
		httpError(w, http.StatusBadRequest, "host_id is required")
		return
	}
	host := domain.HostID(in.HostID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hosts[host]; !ok {
		httpError(w, http.StatusNotFound, "host is not paired")
		return
	}
	id := domain.RelaySessionID(uuid.NewString())
	s.sessions[id] = host
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id.String()})
}

func (s *server) handleCreateCode(w http.ResponseWriter, r *http.Request) {
	id := domain.RelaySessionID(chi.URLParam(r, "session"))

	s.mu.Lock()
	defer s.mu.Unlock()
	host, ok := s.sessions[id]
	if !ok {
		httpError(w, http.StatusNotFound, "unknown session")
		return
	}
	code := domain.AuthCode(uuid.NewString())
	s.codes[code] = host
	writeJSON(w, http.StatusOK, map[string]string{"code": code.String()})
}

// handleTunnel dispatches everything below /relay/tunnel/{host}/{code}/. The
// refresh endpoint authenticates through its signed body; all other traffic
// must carry a valid request signature in headers or query parameters.
func (s *server) handleTunnel(w http.ResponseWriter, r *http.Request) {
	host := domain.HostID(chi.URLParam(r, "host"))
	code := domain.AuthCode(chi.URLParam(r, "code"))
	suffix := "/" + chi.URLParam(r, "*")

	s.mu.Lock()
	st, ok := s.hosts[host]
	if ok {
		codeHost, codeOK := s.codes[code]
		ok = codeOK && codeHost == host
	}
	s.mu.Unlock()
	if !ok {
		httpError(w, http.StatusNotFound, "unknown host or auth code")
		return
	}

	if suffix == "/api/relay/session/refresh" && r.Method == http.MethodPost {
		s.handleRefresh(w, r, host, st)
		return
	}

	if !s.verifyRequest(w, r, suffix, st) {
		return
	}

	if websocket.IsWebSocketUpgrade(r) {
		s.handleWs(w, r, st)
		return
	}
	s.handleEcho(w, r, suffix)
}

// handleRefresh rotates the signing session after verifying the canonical
// refresh message against the client's public key.
func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request, host domain.HostID, st *hostState) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "malformed refresh request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ClientID != st.clientID {
		httpError(w, http.StatusUnauthorized, "unknown client")
		return
	}
	if st.seenNonces[req.Nonce] {
		httpError(w, http.StatusUnauthorized, "nonce reuse")
		return
	}
	sig, err := crypto.FromB64(req.Signature)
	if err != nil {
		httpError(w, http.StatusBadRequest, "malformed signature")
		return
	}
	msg := session.RefreshMessage(req.Timestamp, req.Nonce, req.ClientID)
	if !crypto.Verify(st.clientPub, []byte(msg), sig) {
		httpError(w, http.StatusUnauthorized, "bad refresh signature")
		return
	}
	st.seenNonces[req.Nonce] = true
	st.signingSession = domain.SigningSessionID(uuid.NewString())

	s.log.Info("rotated signing session",
		zap.String("host_id", host.String()),
		zap.String("signing_session_id", st.signingSession.String()))
	writeJSON(w, http.StatusOK, map[string]string{"signing_session_id": st.signingSession.String()})
}

// handleWs upgrades and echoes signed envelopes. Text and binary frames come
// back unchanged, pings come back as pongs, close ends the session.
func (s *server) handleWs(w http.ResponseWriter, r *http.Request, st *hostState) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()

	s.mu.Lock()
	sc := wsenvelope.NewSigningContext(st.signingSession, "", st.serverPriv, st.clientPub)
	s.mu.Unlock()
	defer sc.Release()

	for {
		var env domain.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			return
		}
		payload, err := sc.DecodeInbound(env)
		if err != nil {
			s.log.Warn("rejecting inbound envelope", zap.Error(err))
			return
		}

		var reply domain.Envelope
		switch env.MsgType {
		case domain.WsPing:
			reply, err = sc.EncodeOutbound(domain.WsPong, nil)
		case domain.WsClose:
			return
		default:
			reply, err = sc.EncodeOutbound(env.MsgType, payload)
		}
		if err != nil {
			return
		}
		if err := ws.WriteJSON(reply); err != nil {
			return
		}
	}
}

// handleEcho reflects a verified request back as JSON.
func (s *server) handleEcho(w http.ResponseWriter, r *http.Request, suffix string) {
	body, err := readBody(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "read body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"method": r.Method,
		"path":   suffix,
		"body":   string(body),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
