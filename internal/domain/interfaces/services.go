package interfaces

import (
	"context"
	"crypto/ed25519"

	domaintypes "vkrelay/internal/domain/types"
)

// KeyStore imports and caches per-host signing and verification keys.
type KeyStore interface {
	// SigningKey returns the client's Ed25519 signing key for the
	// credential, importing and caching it on first use.
	SigningKey(credential domaintypes.PairedHostCredential) (ed25519.PrivateKey, error)

	// ServerVerifyKey returns the remembered server verification key for
	// the credential, importing and caching it on first use.
	ServerVerifyKey(credential domaintypes.PairedHostCredential) (ed25519.PublicKey, error)

	// Invalidate drops cached keys for a host. Must run synchronously on
	// every pairing change for that host; a rotated credential must never
	// be signed or verified with a stale key.
	Invalidate(host domaintypes.HostID)
}

// SessionResolver resolves and caches per-host session base URLs and
// refreshes expired signing sessions.
type SessionResolver interface {
	// ResolveHostContext returns the credential and session base URL for a
	// host, creating the relay session on first use. Concurrent calls for
	// the same unresolved host share one underlying creation sequence.
	ResolveHostContext(ctx context.Context, host domaintypes.HostID) (domaintypes.HostContext, error)

	// Invalidate evicts the cached base URL for a host.
	Invalidate(host domaintypes.HostID)

	// RefreshSigningSession rotates the signing session for the context's
	// credential. A nil result means refresh was unavailable or failed;
	// callers surface their original error instead.
	RefreshSigningSession(ctx context.Context, hostCtx domaintypes.HostContext) *domaintypes.HostContext
}
