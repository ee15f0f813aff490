package wsenvelope

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vkrelay/internal/domain"
)

// Conn is one open signed WebSocket connection: the underlying transport
// plus its SigningContext. State machine: Dial opens it, Close closes it and
// releases the context; there is no reopen.
type Conn struct {
	ws  *websocket.Conn
	sc  *SigningContext
	log *zap.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial establishes the underlying transport and binds the signing context
// to it. The URL must already carry the signed query parameters, since
// upgrade requests cannot carry custom headers here.
func Dial(ctx context.Context, url string, sc *SigningContext, log *zap.Logger) (*Conn, error) {
	d := websocket.Dialer{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 45 * time.Second,
	}
	ws, resp, err := d.DialContext(ctx, url, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws, sc: sc, log: log}, nil
}

// Send wraps payload in a signed envelope and writes it. Outbound sequence
// numbers are assigned in the order Send is invoked.
func (c *Conn) Send(msgType domain.WsMessageType, payload []byte) error {
	env, err := c.sc.EncodeOutbound(msgType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(env)
}

// Ping sends a signed, sequenced ping envelope. Control frames follow the
// same envelope discipline as data frames.
func (c *Conn) Ping() error { return c.Send(domain.WsPing, nil) }

// Receive reads the next verified envelope and returns its type and
// payload. Replayed or reordered envelopes are dropped with a logged event
// and the read continues; an invalid signature closes the connection, since
// the peer is either broken or hostile.
func (c *Conn) Receive() (domain.WsMessageType, []byte, error) {
	for {
		var env domain.Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			return "", nil, err
		}
		payload, err := c.sc.DecodeInbound(env)
		if errors.Is(err, domain.ErrRejectedReplay) {
			c.log.Warn("dropping replayed envelope",
				zap.Uint64("seq", env.Seq),
				zap.String("msg_type", env.MsgType.String()))
			continue
		}
		if err != nil {
			c.log.Error("closing connection on envelope verification failure", zap.Error(err))
			_ = c.Close()
			return "", nil, err
		}
		return env.MsgType, payload, nil
	}
}

// Close sends a best-effort signed close envelope, tears down the transport
// and releases the signing context and its keys.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.Send(domain.WsClose, nil)
		c.closeErr = c.ws.Close()
		c.sc.Release()
	})
	return c.closeErr
}
