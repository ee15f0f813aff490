package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vkrelay/internal/crypto"
	"vkrelay/internal/domain"
	"vkrelay/internal/metrics"
)

// Resolver resolves and caches the per-host session base URL, the tunneled
// entry point, and refreshes expired signing sessions on demand.
//
// Concurrent callers for the same unresolved host attach to one in-flight
// creation via singleflight instead of issuing duplicate relay calls. A
// failed creation populates nothing, so the next caller retries from
// scratch.
type Resolver struct {
	pairing domain.PairingStore
	relay   domain.RelaySessionClient
	keys    domain.KeyStore
	log     *zap.Logger

	cache *gocache.Cache // host id -> base URL
	sf    singleflight.Group

	// Now and Nonce are swappable for deterministic tests.
	Now   func() int64
	Nonce func() string
}

// New builds a Resolver subscribed to pairing changes so a re-paired host
// never reuses a stale tunnel entry point.
func New(pairing domain.PairingStore, relay domain.RelaySessionClient, keys domain.KeyStore, log *zap.Logger) *Resolver {
	r := &Resolver{
		pairing: pairing,
		relay:   relay,
		keys:    keys,
		log:     log,
		cache:   gocache.New(gocache.NoExpiration, 0),
		Now:     func() int64 { return time.Now().Unix() },
		Nonce:   crypto.NewNonce,
	}
	if pairing != nil {
		pairing.Subscribe(r.Invalidate)
	}
	return r
}

// ResolveHostContext returns the credential and session base URL for host,
// creating the relay session on first use.
func (r *Resolver) ResolveHostContext(ctx context.Context, host domain.HostID) (domain.HostContext, error) {
	cred, ok, err := r.pairing.Get(host)
	if err != nil {
		return domain.HostContext{}, err
	}
	if !ok {
		return domain.HostContext{}, fmt.Errorf("host %s: %w", host, domain.ErrHostNotPaired)
	}
	if cred.SigningSessionID == "" {
		return domain.HostContext{}, fmt.Errorf("host %s: %w", host, domain.ErrPairingOutdated)
	}

	base, err := r.baseURL(ctx, host)
	if err != nil {
		return domain.HostContext{}, err
	}
	return domain.HostContext{Credential: cred, BaseURL: base}, nil
}

// Invalidate evicts the cached base URL for a host. Runs synchronously from
// the pairing store's change notification.
func (r *Resolver) Invalidate(host domain.HostID) {
	r.cache.Delete(host.String())
	if r.log != nil {
		r.log.Debug("session base URL evicted", zap.String("host_id", host.String()))
	}
}

// RefreshSigningSession rotates the signing session for the context's
// credential and persists the replacement through the pairing store.
//
// A nil result means "refresh unavailable, surface the original error": the
// method never returns an error and never panics, because the caller's
// triggering failure is the one worth reporting.
func (r *Resolver) RefreshSigningSession(ctx context.Context, hostCtx domain.HostContext) *domain.HostContext {
	cred := hostCtx.Credential
	if cred.ClientID == "" {
		metrics.RefreshAttempts.WithLabelValues("unavailable").Inc()
		r.log.Warn("signing session refresh unavailable: credential has no client id",
			zap.String("host_id", cred.HostID.String()))
		return nil
	}

	key, err := r.keys.SigningKey(cred)
	if err != nil {
		metrics.RefreshAttempts.WithLabelValues("failed").Inc()
		r.log.Warn("signing session refresh failed", zap.String("host_id", cred.HostID.String()), zap.Error(err))
		return nil
	}

	ts := r.Now()
	nonce := r.Nonce()
	msg := RefreshMessage(ts, nonce, cred.ClientID)
	req := domain.RefreshRequest{
		ClientID:  cred.ClientID,
		Timestamp: ts,
		Nonce:     nonce,
		Signature: crypto.B64(crypto.Sign(key, []byte(msg))),
	}

	next, err := r.relay.RefreshSigningSession(ctx, hostCtx.BaseURL, req)
	if err != nil {
		metrics.RefreshAttempts.WithLabelValues("failed").Inc()
		r.log.Warn("signing session refresh failed", zap.String("host_id", cred.HostID.String()), zap.Error(err))
		return nil
	}

	updated := cred.WithSigningSession(next)
	if err := r.pairing.Save(updated); err != nil {
		metrics.RefreshAttempts.WithLabelValues("failed").Inc()
		r.log.Warn("persisting refreshed signing session failed",
			zap.String("host_id", cred.HostID.String()), zap.Error(err))
		return nil
	}

	metrics.RefreshAttempts.WithLabelValues("ok").Inc()
	r.log.Info("signing session refreshed", zap.String("host_id", cred.HostID.String()))
	return &domain.HostContext{Credential: updated, BaseURL: hostCtx.BaseURL}
}

// baseURL returns the cached tunnel entry point for host or runs one shared
// creation sequence: create session, request auth code, compose URL.
func (r *Resolver) baseURL(ctx context.Context, host domain.HostID) (string, error) {
	if v, ok := r.cache.Get(host.String()); ok {
		return v.(string), nil
	}

	v, err, _ := r.sf.Do(host.String(), func() (any, error) {
		// A previous flight may have populated the cache while we waited.
		if v, ok := r.cache.Get(host.String()); ok {
			return v, nil
		}
		sess, err := r.relay.CreateSession(ctx, host)
		if err != nil {
			metrics.SessionCreations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("host %s: %w: %v", host, domain.ErrSessionCreation, err)
		}
		code, err := r.relay.CreateAuthCode(ctx, sess)
		if err != nil {
			metrics.SessionCreations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("host %s: %w: %v", host, domain.ErrSessionCreation, err)
		}
		base := r.relay.TunnelBaseURL(host, code)
		r.cache.Set(host.String(), base, gocache.NoExpiration)
		metrics.SessionCreations.WithLabelValues("ok").Inc()
		return base, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Compile-time assertion that Resolver implements domain.SessionResolver.
var _ domain.SessionResolver = (*Resolver)(nil)
