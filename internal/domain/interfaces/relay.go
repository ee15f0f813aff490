package interfaces

import (
	"context"

	domaintypes "vkrelay/internal/domain/types"
)

// RelaySessionClient is how we talk to the relay's session-management API.
type RelaySessionClient interface {
	// CreateSession asks the relay for a new tunnel session for a host.
	CreateSession(ctx context.Context, host domaintypes.HostID) (domaintypes.RelaySessionID, error)

	// CreateAuthCode requests a short-lived authorization code scoped to
	// one relay session.
	CreateAuthCode(ctx context.Context, session domaintypes.RelaySessionID) (domaintypes.AuthCode, error)

	// TunnelBaseURL combines the relay API root, host id, and auth code
	// into the tunneled entry point for that host.
	TunnelBaseURL(host domaintypes.HostID, code domaintypes.AuthCode) string

	// RefreshSigningSession submits a signed refresh message to the relay
	// at the given session base URL and returns the replacement signing
	// session id.
	RefreshSigningSession(ctx context.Context, baseURL string, req domaintypes.RefreshRequest) (domaintypes.SigningSessionID, error)
}
