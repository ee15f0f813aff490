package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vkrelay/internal/domain"
)

// API paths under the relay root and under a tunneled base URL.
const (
	sessionsPath = "/relay/sessions"
	tunnelPath   = "/relay/tunnel"
	refreshPath  = "/api/relay/session/refresh"
)

// HTTP talks to the relay's session-management API.
type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP builds a relay client for the API root at base.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: client}
}

// CreateSession asks the relay for a new tunnel session for host.
func (c *HTTP) CreateSession(ctx context.Context, host domain.HostID) (domain.RelaySessionID, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	in := struct {
		HostID string `json:"host_id"`
	}{HostID: host.String()}
	if err := c.post(ctx, c.Base+sessionsPath, in, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("relay returned an empty session id")
	}
	return domain.RelaySessionID(out.SessionID), nil
}

// CreateAuthCode requests a short-lived authorization code for session.
func (c *HTTP) CreateAuthCode(ctx context.Context, session domain.RelaySessionID) (domain.AuthCode, error) {
	var out struct {
		Code string `json:"code"`
	}
	u := c.Base + sessionsPath + "/" + url.PathEscape(session.String()) + "/codes"
	if err := c.post(ctx, u, struct{}{}, &out); err != nil {
		return "", err
	}
	if out.Code == "" {
		return "", fmt.Errorf("relay returned an empty auth code")
	}
	return domain.AuthCode(out.Code), nil
}

// TunnelBaseURL combines the relay API root, host id, and auth code into the
// tunneled entry point for that host.
func (c *HTTP) TunnelBaseURL(host domain.HostID, code domain.AuthCode) string {
	return c.Base + tunnelPath + "/" + url.PathEscape(host.String()) + "/" + url.PathEscape(code.String())
}

// RefreshSigningSession submits a signed refresh message at the session base
// URL and returns the replacement signing session id.
func (c *HTTP) RefreshSigningSession(ctx context.Context, baseURL string, req domain.RefreshRequest) (domain.SigningSessionID, error) {
	var out struct {
		SigningSessionID string `json:"signing_session_id"`
	}
	u := strings.TrimRight(baseURL, "/") + refreshPath
	if err := c.post(ctx, u, req, &out); err != nil {
		return "", err
	}
	if out.SigningSessionID == "" {
		return "", fmt.Errorf("relay returned an empty signing session id")
	}
	return domain.SigningSessionID(out.SigningSessionID), nil
}

// post sends in as JSON and decodes a 2xx response into out.
func (c *HTTP) post(ctx context.Context, u string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", u, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Compile-time assertion that HTTP implements domain.RelaySessionClient.
var _ domain.RelaySessionClient = (*HTTP)(nil)
