package tickloom

import (
	"github.com/tickloom/tickloom/internal/wire"
)

// ClusterClient is the client-side entry point to a QuorumReplica cluster
// (spec §4.9). It wraps a Process with Get/Set methods that generate a
// correlation id, register a ListenableFuture in the waiting list, and
// return the future immediately without blocking.
type ClusterClient struct {
	*Process
	codec wire.Codec
}

// NewClusterClient returns a ClusterClient built on process.
func NewClusterClient(process *Process) *ClusterClient {
	return &ClusterClient{Process: process, codec: wire.GogoCodec{}}
}

// GetResult is the outcome of a successful Get: the value found, if any.
type GetResult struct {
	Value []byte
	Found bool
}

// Get sends a CLIENT_GET_REQUEST for key to replica and returns a future
// that completes with the coordinator's reconciled result. When the
// coordinator's quorum was unreachable, that result has Found=false; the
// future completes with an error only if the request timed out, was
// cancelled, or its response could not be decoded.
func (c *ClusterClient) Get(replica ProcessId, key []byte) *ListenableFuture[GetResult] {
	future := NewFuture[GetResult]()
	payload, err := (&wire.GetRequest{Key: key}).Marshal()
	if err != nil {
		future.CompleteError(err)
		return future
	}
	corrId := c.NewCorrelationId()
	cb := FuncCallback{
		OnResponseFn: func(msg Message) {
			var resp wire.GetResponse
			if err := c.codec.Decode(msg.Payload, &resp); err != nil {
				future.CompleteError(ErrMalformedMessage)
				return
			}
			future.Complete(GetResult{Value: resp.Value, Found: resp.Found})
		},
		OnErrorFn: future.CompleteError,
	}
	err = c.SendRequest(c.createMessage(replica, corrId, ClientGetRequest, payload), cb)
	if err != nil {
		future.CompleteError(err)
	}
	return future
}

// Set sends a CLIENT_SET_REQUEST for key/value to replica and returns a
// future that completes with the success flag the coordinator reports:
// true once a majority acknowledged, false when its quorum was
// unreachable. The future completes with an error only if the request
// timed out, was cancelled, or its response could not be decoded.
func (c *ClusterClient) Set(replica ProcessId, key, value []byte) *ListenableFuture[bool] {
	future := NewFuture[bool]()
	payload, err := (&wire.SetRequest{Key: key, Value: value}).Marshal()
	if err != nil {
		future.CompleteError(err)
		return future
	}
	corrId := c.NewCorrelationId()
	cb := FuncCallback{
		OnResponseFn: func(msg Message) {
			var resp wire.SetResponse
			if err := c.codec.Decode(msg.Payload, &resp); err != nil {
				future.CompleteError(ErrMalformedMessage)
				return
			}
			future.Complete(resp.Success)
		},
		OnErrorFn: future.CompleteError,
	}
	err = c.SendRequest(c.createMessage(replica, corrId, ClientSetRequest, payload), cb)
	if err != nil {
		future.CompleteError(err)
	}
	return future
}
