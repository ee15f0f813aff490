// Package tunnel is the high-level client for talking to a paired host
// through the relay: it resolves the session base URL, signs each request,
// sends it, and recovers from expired signing sessions by refreshing once
// and retrying once.
package tunnel
