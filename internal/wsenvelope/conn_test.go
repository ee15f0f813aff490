package wsenvelope_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vkrelay/internal/domain"
	"vkrelay/internal/wsenvelope"
)

// echoServer upgrades, verifies every inbound envelope and echoes the
// payload back in a signed envelope of the same type.
func echoServer(t *testing.T, serverPriv ed25519.PrivateKey, clientPub ed25519.PublicKey) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		sc := wsenvelope.NewSigningContext("s1", "nonce-1", serverPriv, clientPub)
		for {
			var env domain.Envelope
			if err := ws.ReadJSON(&env); err != nil {
				return
			}
			payload, err := sc.DecodeInbound(env)
			if err != nil {
				return
			}
			if env.MsgType == domain.WsClose {
				return
			}
			out, err := sc.EncodeOutbound(env.MsgType, payload)
			if err != nil {
				return
			}
			if err := ws.WriteJSON(out); err != nil {
				return
			}
		}
	}))
}

func TestConnEchoRoundTrip(t *testing.T) {
	clientPub, clientPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	serverPub, serverPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	srv := echoServer(t, serverPriv, clientPub)
	defer srv.Close()

	sc := wsenvelope.NewSigningContext("s1", "nonce-1", clientPriv, serverPub)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := wsenvelope.Dial(context.Background(), wsURL, sc, zap.NewNop())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(domain.WsText, []byte("over the relay")))
	msgType, payload, err := conn.Receive()
	require.NoError(t, err)
	require.Equal(t, domain.WsText, msgType)
	require.Equal(t, []byte("over the relay"), payload)

	require.NoError(t, conn.Ping())
	msgType, _, err = conn.Receive()
	require.NoError(t, err)
	require.Equal(t, domain.WsPing, msgType)
}
