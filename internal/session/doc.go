// Package session resolves the per-host session base URL, the tunneled
// entry point through the relay, and refreshes expired signing sessions.
//
// Resolution is coalesced: N concurrent callers for the same unresolved
// host observe the result of one underlying create-session / auth-code
// sequence. Failures evict nothing into the cache, so the next caller
// retries cleanly. Pairing-change notifications evict the cached entry for
// the affected host.
package session
