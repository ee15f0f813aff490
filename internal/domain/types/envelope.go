package types

// WsMessageType labels one logical frame inside a signed envelope.
type WsMessageType string

// Envelope message types. Control frames (ping, pong, close) are signed and
// sequenced exactly like data frames; exempting them would open a replay
// side-channel.
const (
	WsText   WsMessageType = "text"
	WsBinary WsMessageType = "binary"
	WsPing   WsMessageType = "ping"
	WsPong   WsMessageType = "pong"
	WsClose  WsMessageType = "close"
)

// String returns the string form of the message type.
func (t WsMessageType) String() string { return string(t) }

// Valid reports whether t is one of the known envelope message types.
func (t WsMessageType) Valid() bool {
	switch t {
	case WsText, WsBinary, WsPing, WsPong, WsClose:
		return true
	}
	return false
}

// Envelope is a signed, sequenced wrapper around one logical WebSocket
// frame. Sequence numbers increase strictly and independently per direction.
type Envelope struct {
	Version      string        `json:"version"`
	Seq          uint64        `json:"seq"`
	MsgType      WsMessageType `json:"msg_type"`
	PayloadB64   string        `json:"payload_b64"`
	SignatureB64 string        `json:"signature_b64"`
}
