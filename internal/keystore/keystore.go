package keystore

import (
	"crypto/ed25519"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
)

// Store imports and caches per-host keys. Two caches, both keyed by host
// id: the client's own signing key and the remembered server verification
// key. Entries never expire on their own; the only mutation entry points
// are the get-or-populate paths and Invalidate.
type Store struct {
	signing *gocache.Cache
	verify  *gocache.Cache
	log     *zap.Logger
}

// New builds a Store subscribed to the pairing store's change feed so a
// rotated credential can never be signed or verified with a stale key.
func New(pairing domain.PairingStore, log *zap.Logger) *Store {
	s := &Store{
		signing: gocache.New(gocache.NoExpiration, 0),
		verify:  gocache.New(gocache.NoExpiration, 0),
		log:     log,
	}
	if pairing != nil {
		pairing.Subscribe(s.Invalidate)
	}
	return s
}

// SigningKey returns the cached signing key for the credential's host,
// importing the stored JWK on first use. A credential without a signing
// session cannot sign anything and fails with domain.ErrPairingOutdated.
func (s *Store) SigningKey(cred domain.PairedHostCredential) (ed25519.PrivateKey, error) {
	if cred.SigningSessionID == "" {
		return nil, fmt.Errorf("host %s: %w", cred.HostID, domain.ErrPairingOutdated)
	}
	if v, ok := s.signing.Get(cred.HostID.String()); ok {
		return v.(ed25519.PrivateKey), nil
	}
	key, err := crypto.ParseSigningKeyJWK(cred.PrivateKeyJWK)
	if err != nil {
		return nil, fmt.Errorf("host %s: %w", cred.HostID, err)
	}
	s.signing.Set(cred.HostID.String(), key, gocache.NoExpiration)
	return key, nil
}

// ServerVerifyKey returns the cached server verification key for the
// credential's host, importing the raw public key on first use. The server
// key is only meaningful once a signing session exists.
func (s *Store) ServerVerifyKey(cred domain.PairedHostCredential) (ed25519.PublicKey, error) {
	if cred.SigningSessionID == "" {
		return nil, fmt.Errorf("host %s: %w", cred.HostID, domain.ErrPairingOutdated)
	}
	if cred.ServerPublicKey == "" {
		return nil, fmt.Errorf("host %s: %w", cred.HostID, domain.ErrMissingServerKey)
	}
	if v, ok := s.verify.Get(cred.HostID.String()); ok {
		return v.(ed25519.PublicKey), nil
	}
	key, err := crypto.ParseVerifyKey(cred.ServerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("host %s: %w", cred.HostID, err)
	}
	s.verify.Set(cred.HostID.String(), key, gocache.NoExpiration)
	return key, nil
}

// Invalidate drops both cached keys for a host. Runs synchronously from the
// pairing store's change notification.
func (s *Store) Invalidate(host domain.HostID) {
	s.signing.Delete(host.String())
	s.verify.Delete(host.String())
	if s.log != nil {
		s.log.Debug("key cache invalidated", zap.String("host_id", host.String()))
	}
}

// Compile-time assertion that Store implements domain.KeyStore.
var _ domain.KeyStore = (*Store)(nil)
