package domain

import "errors"

// Protocol error taxonomy. Callers match these with errors.Is; wrapping adds
// host ids and underlying causes.
var (
	// ErrHostNotPaired means no credential exists for the requested host.
	ErrHostNotPaired = errors.New("this host is not paired")

	// ErrPairingOutdated means the credential has no signing session and
	// cannot sign requests until the host is paired again.
	ErrPairingOutdated = errors.New("this pairing is outdated, re-pair the host")

	// ErrMissingServerKey means the credential carries no server public key.
	ErrMissingServerKey = errors.New("credential has no server public key")

	// ErrKeyImport means stored key material could not be imported.
	ErrKeyImport = errors.New("key import failed")

	// ErrDecode means input that should have been base64 was not.
	ErrDecode = errors.New("malformed base64 input")

	// ErrSignatureInvalid means an inbound envelope failed verification.
	ErrSignatureInvalid = errors.New("envelope signature invalid")

	// ErrRejectedReplay means an inbound envelope's sequence number was not
	// strictly greater than the last accepted one.
	ErrRejectedReplay = errors.New("envelope replayed or reordered")

	// ErrSessionCreation means the relay session or auth code could not be
	// created; the cache entry has been evicted so the next attempt starts
	// clean.
	ErrSessionCreation = errors.New("relay session creation failed")

	// ErrRefreshUnavailable means the credential has no client id, so a
	// signing-session refresh cannot even be attempted.
	ErrRefreshUnavailable = errors.New("signing session refresh unavailable")

	// ErrRefreshFailed means the relay rejected the refresh or the call
	// failed in transit.
	ErrRefreshFailed = errors.New("signing session refresh failed")
)
