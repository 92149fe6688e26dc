// Package wire implements the on-the-wire payload encoding for the quorum
// replica protocol's message types.
package wire

import "encoding/json"

// GetRequest is the payload of CLIENT_GET_REQUEST and INTERNAL_GET_REQUEST.
type GetRequest struct {
	Key []byte `json:"key"`
}

// Marshal implements the gogo/protobuf proto.Marshaler interface.
func (m *GetRequest) Marshal() ([]byte, error) { return json.Marshal(m) }

// Unmarshal implements the gogo/protobuf proto.Unmarshaler interface.
func (m *GetRequest) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }

// GetResponse is the payload of CLIENT_GET_RESPONSE.
type GetResponse struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value,omitempty"`
	Found bool   `json:"found"`
}

func (m *GetResponse) Marshal() ([]byte, error)    { return json.Marshal(m) }
func (m *GetResponse) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }

// InternalGetResponse is the payload of INTERNAL_GET_RESPONSE.
type InternalGetResponse struct {
	Key       []byte `json:"key"`
	Value     []byte `json:"value,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Found     bool   `json:"found"`
}

func (m *InternalGetResponse) Marshal() ([]byte, error)    { return json.Marshal(m) }
func (m *InternalGetResponse) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }

// SetRequest is the payload of CLIENT_SET_REQUEST.
type SetRequest struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

func (m *SetRequest) Marshal() ([]byte, error)    { return json.Marshal(m) }
func (m *SetRequest) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }

// SetResponse is the payload of CLIENT_SET_RESPONSE and INTERNAL_SET_RESPONSE.
type SetResponse struct {
	Key     []byte `json:"key"`
	Success bool   `json:"success"`
}

func (m *SetResponse) Marshal() ([]byte, error)    { return json.Marshal(m) }
func (m *SetResponse) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }

// InternalSetRequest is the payload of INTERNAL_SET_REQUEST.
type InternalSetRequest struct {
	Key       []byte `json:"key"`
	Value     []byte `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

func (m *InternalSetRequest) Marshal() ([]byte, error)    { return json.Marshal(m) }
func (m *InternalSetRequest) Unmarshal(data []byte) error { return json.Unmarshal(data, m) }
