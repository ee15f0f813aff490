package signer

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
)

// NormalizeBody reduces a request body of unknown shape to the exact byte
// sequence that is both hashed for signing and transmitted on the wire.
// Signing a re-serialization that differs from what is sent would be a
// verification failure, so callers must send precisely the returned bytes.
//
// Supported shapes: nil, []byte, string, url.Values (form encoding),
// io.Reader (drained), and anything else via JSON marshalling.
func NormalizeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case url.Values:
		return []byte(b.Encode()), nil
	case io.Reader:
		raw, err := io.ReadAll(b)
		if err != nil {
			return nil, fmt.Errorf("draining request body: %w", err)
		}
		return raw, nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		return raw, nil
	}
}
