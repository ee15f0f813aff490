package tunnel

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"vkrelay/internal/domain"
	"vkrelay/internal/signer"
	"vkrelay/internal/wsenvelope"
)

const maxDialAttempts = 4

// OpenWebSocket opens a signed WebSocket connection to the host's tunneled
// entry point. The upgrade request cannot carry custom headers, so the
// signature travels as query parameters; each dial attempt is signed afresh
// so nonces are never reused.
func (c *Client) OpenWebSocket(ctx context.Context, host domain.HostID, pathAndQuery string) (*wsenvelope.Conn, error) {
	hostCtx, err := c.resolver.ResolveHostContext(ctx, host)
	if err != nil {
		return nil, err
	}
	signKey, err := c.keys.SigningKey(hostCtx.Credential)
	if err != nil {
		return nil, err
	}
	verifyKey, err := c.keys.ServerVerifyKey(hostCtx.Credential)
	if err != nil {
		return nil, err
	}

	b := &backoff.Backoff{Min: 100 * time.Millisecond, Max: 2 * time.Second, Jitter: true}
	var lastErr error
	for attempt := 0; attempt < maxDialAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(b.Duration()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		sig, err := c.signer.Sign(hostCtx.Credential, http.MethodGet, pathAndQuery, nil)
		if err != nil {
			return nil, err
		}
		url := wsScheme(hostCtx.BaseURL) + signer.ToQueryParams(pathAndQuery, sig)
		sc := wsenvelope.NewSigningContext(hostCtx.Credential.SigningSessionID, sig.Nonce, signKey, verifyKey)

		conn, err := wsenvelope.Dial(ctx, url, sc, c.log)
		if err == nil {
			return conn, nil
		}
		sc.Release()
		lastErr = err
		c.log.Warn("websocket dial failed",
			zap.String("host_id", host.String()),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

// wsScheme rewrites an http(s) base URL to its ws(s) equivalent.
func wsScheme(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
