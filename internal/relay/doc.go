// Package relay provides an HTTP implementation of the
// domain.RelaySessionClient interface.
//
// The relay is untrusted by default: it routes tunneled traffic between the
// browser client and a paired host but must not be able to forge or replay
// requests. This package only covers the session-management surface:
//
//   - Creating a tunnel session for a paired host.
//   - Requesting a short-lived authorization code scoped to that session.
//   - Composing the tunneled base URL for a host.
//   - Submitting a signed signing-session refresh message.
//
// All requests are JSON over HTTP and accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as errors with the full URL and
// status text to aid diagnostics.
package relay
