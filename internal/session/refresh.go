package session

import (
	"strconv"
	"strings"

	"vkrelay/internal/domain"
	"vkrelay/internal/signer"
)

// refreshTag is the literal second field of the canonical refresh message.
const refreshTag = "refresh"

// RefreshMessage is the canonical byte string signed when rotating a
// signing session:
//
//	v1|refresh|{timestamp}|{nonce}|{client_id}
//
// The ordering and separator must match the relay's verifier exactly.
func RefreshMessage(timestamp int64, nonce string, client domain.ClientID) string {
	return strings.Join([]string{
		signer.ProtocolVersion,
		refreshTag,
		strconv.FormatInt(timestamp, 10),
		nonce,
		client.String(),
	}, "|")
}
