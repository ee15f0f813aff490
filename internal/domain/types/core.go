package types

// HostID identifies a paired host process.
type HostID string

// String returns the string form of the host id.
func (h HostID) String() string { return string(h) }

// ClientID is the relay-registered identifier for this client.
type ClientID string

// String returns the string form of the client id.
func (c ClientID) String() string { return string(c) }

// SigningSessionID is the relay-issued, time-bounded identifier scoping
// which signatures are currently accepted for a paired host.
type SigningSessionID string

// String returns the string form of the signing session id.
func (s SigningSessionID) String() string { return string(s) }

// RelaySessionID identifies a freshly created relay tunnel session.
type RelaySessionID string

// String returns the string form of the relay session id.
func (s RelaySessionID) String() string { return string(s) }

// AuthCode is a short-lived authorization code scoped to one relay session.
type AuthCode string

// String returns the string form of the authorization code.
func (c AuthCode) String() string { return string(c) }
