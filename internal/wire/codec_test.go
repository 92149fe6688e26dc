package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickloom/tickloom/internal/wire"
)

func TestGogoCodecRoundTripsEveryPayloadType(t *testing.T) {
	codec := wire.GogoCodec{}

	getReq := &wire.GetRequest{Key: []byte("k")}
	data, err := codec.Encode(getReq)
	require.NoError(t, err)
	var decodedGetReq wire.GetRequest
	require.NoError(t, codec.Decode(data, &decodedGetReq))
	require.Equal(t, getReq.Key, decodedGetReq.Key)

	setReq := &wire.InternalSetRequest{Key: []byte("k"), Value: []byte("v"), Timestamp: 42}
	data, err = codec.Encode(setReq)
	require.NoError(t, err)
	var decodedSetReq wire.InternalSetRequest
	require.NoError(t, codec.Decode(data, &decodedSetReq))
	require.Equal(t, *setReq, decodedSetReq)

	getResp := &wire.InternalGetResponse{Key: []byte("k"), Value: []byte("v"), Timestamp: 7, Found: true}
	data, err = codec.Encode(getResp)
	require.NoError(t, err)
	var decodedGetResp wire.InternalGetResponse
	require.NoError(t, codec.Decode(data, &decodedGetResp))
	require.Equal(t, *getResp, decodedGetResp)

	clientGetResp := &wire.GetResponse{Key: []byte("k"), Value: []byte("v"), Found: true}
	data, err = codec.Encode(clientGetResp)
	require.NoError(t, err)
	var decodedClientGetResp wire.GetResponse
	require.NoError(t, codec.Decode(data, &decodedClientGetResp))
	require.Equal(t, *clientGetResp, decodedClientGetResp)

	clientSetReq := &wire.SetRequest{Key: []byte("k"), Value: []byte("v")}
	data, err = codec.Encode(clientSetReq)
	require.NoError(t, err)
	var decodedClientSetReq wire.SetRequest
	require.NoError(t, codec.Decode(data, &decodedClientSetReq))
	require.Equal(t, *clientSetReq, decodedClientSetReq)

	setResp := &wire.SetResponse{Key: []byte("k"), Success: true}
	data, err = codec.Encode(setResp)
	require.NoError(t, err)
	var decodedSetResp wire.SetResponse
	require.NoError(t, codec.Decode(data, &decodedSetResp))
	require.Equal(t, *setResp, decodedSetResp)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := wire.Frame{
		Source:        "client-1",
		Destination:   "server-1",
		Type:          "CLIENT_SET_REQUEST",
		CorrelationId: "abc",
		Payload:       []byte("payload-bytes"),
	}
	require.NoError(t, wire.WriteFrame(&buf, f))

	got, err := wire.ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}
