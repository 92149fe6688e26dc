package wire

import (
	"encoding/json"

	"github.com/gogo/protobuf/proto"
)

// Codec encodes and decodes message payloads.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// GogoCodec marshals any value implementing gogo/protobuf's
// proto.Marshaler/Unmarshaler with that interface, and falls back to
// encoding/json for everything else. Every payload type in this package
// implements proto.Marshaler/Unmarshaler, so the fallback path exists only
// for payload types defined outside this package (e.g. by a test).
type GogoCodec struct{}

var _ Codec = GogoCodec{}

// Encode implements Codec.
func (GogoCodec) Encode(v any) ([]byte, error) {
	if m, ok := v.(proto.Marshaler); ok {
		return m.Marshal()
	}
	return json.Marshal(v)
}

// Decode implements Codec.
func (GogoCodec) Decode(data []byte, v any) error {
	if m, ok := v.(proto.Unmarshaler); ok {
		return m.Unmarshal(data)
	}
	return json.Unmarshal(data, v)
}
