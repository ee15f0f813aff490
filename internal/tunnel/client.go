package tunnel

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"vkrelay/internal/domain"
	"vkrelay/internal/metrics"
	"vkrelay/internal/signer"
)

// Auth-failure statuses that trigger the one-shot refresh-and-retry.
func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Client sends signed HTTP requests and opens signed WebSocket connections
// to paired hosts through the relay.
type Client struct {
	resolver domain.SessionResolver
	signer   *signer.Signer
	keys     domain.KeyStore
	http     *http.Client
	log      *zap.Logger
}

// New builds a tunnel client. httpClient may be nil for the default.
func New(resolver domain.SessionResolver, sgn *signer.Signer, keys domain.KeyStore, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{resolver: resolver, signer: sgn, keys: keys, http: httpClient, log: log}
}

// Do signs and sends one HTTP request to the host's tunneled entry point.
// The body is normalized to an exact byte sequence before signing and those
// same bytes are transmitted. On an authentication failure the signing
// session is refreshed and the request retried once; if refresh is
// unavailable the original response is returned so the caller sees the
// triggering failure, not a refresh-specific one.
func (c *Client) Do(ctx context.Context, host domain.HostID, method, pathAndQuery string, body any) (*http.Response, error) {
	norm, err := signer.NormalizeBody(body)
	if err != nil {
		return nil, err
	}
	hostCtx, err := c.resolver.ResolveHostContext(ctx, host)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, hostCtx, method, pathAndQuery, norm)
	if err != nil {
		return nil, err
	}
	if !isAuthFailure(resp.StatusCode) {
		return resp, nil
	}

	next := c.resolver.RefreshSigningSession(ctx, hostCtx)
	if next == nil {
		return resp, nil
	}
	resp.Body.Close()

	c.log.Info("retrying request after signing session refresh",
		zap.String("host_id", host.String()),
		zap.String("path", pathAndQuery))
	return c.send(ctx, *next, method, pathAndQuery, norm)
}

// send signs and performs one request attempt.
func (c *Client) send(ctx context.Context, hostCtx domain.HostContext, method, pathAndQuery string, body []byte) (*http.Response, error) {
	sig, err := c.signer.Sign(hostCtx.Credential, method, pathAndQuery, body)
	if err != nil {
		return nil, err
	}
	metrics.SignaturesIssued.Inc()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), hostCtx.BaseURL+pathAndQuery, rd)
	if err != nil {
		return nil, err
	}
	signer.ToHeaders(sig, req.Header)
	return c.http.Do(req)
}
