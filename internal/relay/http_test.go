package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"vkrelay/internal/domain"
	"vkrelay/internal/relay"
)

func TestCreateSessionAndAuthCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/relay/sessions":
			var in struct {
				HostID string `json:"host_id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, "h1", in.HostID)
			_ = json.NewEncoder(w).Encode(map[string]string{"session_id": "rs-9"})
		case "/relay/sessions/rs-9/codes":
			_ = json.NewEncoder(w).Encode(map[string]string{"code": "code-5"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, srv.Client())
	sess, err := c.CreateSession(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, domain.RelaySessionID("rs-9"), sess)

	code, err := c.CreateAuthCode(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, domain.AuthCode("code-5"), code)

	require.Equal(t, srv.URL+"/relay/tunnel/h1/code-5", c.TunnelBaseURL("h1", code))
}

func TestCreateSessionNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, srv.Client())
	_, err := c.CreateSession(context.Background(), "h1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestRefreshSigningSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/relay/tunnel/h1/code-5/api/relay/session/refresh", r.URL.Path)
		var in domain.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, domain.ClientID("client-1"), in.ClientID)
		require.NotEmpty(t, in.Signature)
		_ = json.NewEncoder(w).Encode(map[string]string{"signing_session_id": "s2"})
	}))
	defer srv.Close()

	c := relay.NewHTTP(srv.URL, srv.Client())
	got, err := c.RefreshSigningSession(context.Background(), srv.URL+"/relay/tunnel/h1/code-5", domain.RefreshRequest{
		ClientID: "client-1", Timestamp: 1000, Nonce: "abc", Signature: "c2ln",
	})
	require.NoError(t, err)
	require.Equal(t, domain.SigningSessionID("s2"), got)
}
