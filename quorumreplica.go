package tickloom

import (
	"github.com/tickloom/tickloom/internal/wire"
)

// QuorumReplica is the exemplar protocol this framework is built to test:
// a quorum-replicated, last-writer-wins versioned key/value store
// (spec §6). A client's CLIENT_SET_REQUEST/CLIENT_GET_REQUEST lands on
// whichever QuorumReplica it was addressed to; that replica acts as
// coordinator, fanning INTERNAL_SET_REQUEST/INTERNAL_GET_REQUEST out to
// every peer (itself included) and replying to the client once a
// majority has answered.
type QuorumReplica struct {
	*Replica
	storage Storage
	codec   wire.Codec
}

// NewQuorumReplica returns a QuorumReplica built on replica, persisting to
// storage, and registers its handlers on replica's Process.
func NewQuorumReplica(replica *Replica, storage Storage) *QuorumReplica {
	qr := &QuorumReplica{
		Replica: replica,
		storage: storage,
		codec:   wire.GogoCodec{},
	}
	qr.RegisterHandler(ClientSetRequest, qr.handleClientSetRequest)
	qr.RegisterHandler(ClientGetRequest, qr.handleClientGetRequest)
	qr.RegisterHandler(InternalSetRequest, qr.handleInternalSetRequest)
	qr.RegisterHandler(InternalGetRequest, qr.handleInternalGetRequest)
	return qr
}

// handleClientSetRequest implements spec §6's SET coordinator path: compute
// the write timestamp once, fan INTERNAL_SET_REQUEST out to every peer via
// broadcastToAllReplicas, and reply to the client once a majority
// acknowledge.
func (qr *QuorumReplica) handleClientSetRequest(msg Message) error {
	var req wire.SetRequest
	if err := qr.codec.Decode(msg.Payload, &req); err != nil {
		return ErrMalformedMessage
	}

	ts := qr.Clock().Now()
	key := req.Key

	payload, err := (&wire.InternalSetRequest{Key: key, Value: req.Value, Timestamp: ts}).Marshal()
	if err != nil {
		qr.replyClientSet(msg, key, false)
		return nil
	}

	quorum := NewAsyncQuorumCallback[bool](len(qr.GetAllNodes()), func(ok bool) bool { return ok })
	quorum.OnComplete(
		func(bool) { qr.replyClientSet(msg, key, true) },
		func(error) { qr.replyClientSet(msg, key, false) },
	)

	qr.broadcastToAllReplicas(setQuorumCallback{qr: qr, quorum: quorum}, func(peer ProcessId, correlationId string) Message {
		return qr.createMessage(peer, correlationId, InternalSetRequest, payload)
	})
	return nil
}

func (qr *QuorumReplica) replyClientSet(request Message, key []byte, success bool) {
	payload, err := (&wire.SetResponse{Key: key, Success: success}).Marshal()
	if err != nil {
		return
	}
	qr.Send(qr.createResponseMessage(request, ClientSetResponse, payload))
}

// setQuorumCallback decodes each peer's INTERNAL_SET_RESPONSE and reports
// the acknowledged success/failure to quorum (spec §4.4, §6).
type setQuorumCallback struct {
	qr     *QuorumReplica
	quorum *AsyncQuorumCallback[bool]
}

func (c setQuorumCallback) OnResponse(resp Message) {
	var sresp wire.SetResponse
	if err := c.qr.codec.Decode(resp.Payload, &sresp); err != nil {
		c.quorum.OnError(ErrMalformedMessage)
		return
	}
	c.quorum.OnResponse(sresp.Success)
}

func (c setQuorumCallback) OnError(err error) { c.quorum.OnError(err) }

// handleInternalSetRequest applies the monotone-write policy at this
// replica's storage and acknowledges the coordinator (spec §6).
func (qr *QuorumReplica) handleInternalSetRequest(msg Message) error {
	var req wire.InternalSetRequest
	if err := qr.codec.Decode(msg.Payload, &req); err != nil {
		return ErrMalformedMessage
	}
	key := req.Key

	qr.storage.Set(key, VersionedValue{Value: req.Value, Timestamp: req.Timestamp}, setStorageCallback{
		onSet: func(err error) {
			payload, merr := (&wire.SetResponse{Key: key, Success: err == nil}).Marshal()
			if merr != nil {
				return
			}
			qr.Send(qr.createResponseMessage(msg, InternalSetResponse, payload))
		},
	})
	return nil
}

// handleClientGetRequest implements spec §6's GET coordinator path: fan
// INTERNAL_GET_REQUEST out to every peer via broadcastToAllReplicas, and
// reply to the client with the highest-timestamp value once a majority
// have answered, tie-breaking deterministically by responder ProcessId
// index then name (spec §13).
func (qr *QuorumReplica) handleClientGetRequest(msg Message) error {
	var req wire.GetRequest
	if err := qr.codec.Decode(msg.Payload, &req); err != nil {
		return ErrMalformedMessage
	}

	key := req.Key

	payload, err := (&wire.GetRequest{Key: key}).Marshal()
	if err != nil {
		qr.replyClientGet(msg, key, nil, false)
		return nil
	}

	var results []internalGetResult
	quorum := NewAsyncQuorumCallback[bool](len(qr.GetAllNodes()), func(ok bool) bool { return ok })
	quorum.OnComplete(
		func(bool) {
			best, found := reconcileGetResults(results)
			var value []byte
			if found {
				value = best.value.Value
			}
			qr.replyClientGet(msg, key, value, found)
		},
		func(error) {
			qr.replyClientGet(msg, key, nil, false)
		},
	)

	qr.broadcastToAllReplicas(getQuorumCallback{qr: qr, quorum: quorum, results: &results}, func(peer ProcessId, correlationId string) Message {
		return qr.createMessage(peer, correlationId, InternalGetRequest, payload)
	})
	return nil
}

// internalGetResult is one peer's answer to an INTERNAL_GET_REQUEST,
// retained so the coordinator can reconcile on the highest timestamp once
// a majority have responded.
type internalGetResult struct {
	from  ProcessId
	value VersionedValue
	found bool
}

// reconcileGetResults picks the result with the highest timestamp among
// results that found a value, deterministically tie-breaking by the
// responding process's index, then name (spec §6, §13).
func reconcileGetResults(results []internalGetResult) (internalGetResult, bool) {
	var best internalGetResult
	found := false
	for _, r := range results {
		if !r.found {
			continue
		}
		switch {
		case !found:
			best, found = r, true
		case r.value.Timestamp > best.value.Timestamp:
			best = r
		case r.value.Timestamp == best.value.Timestamp:
			if r.from.Index() < best.from.Index() ||
				(r.from.Index() == best.from.Index() && r.from.Name() < best.from.Name()) {
				best = r
			}
		}
	}
	return best, found
}

// getQuorumCallback decodes each peer's INTERNAL_GET_RESPONSE, records it
// against results (keyed by the responder's own Source, set by that
// peer's createResponseMessage), and reports to quorum (spec §4.4, §6).
type getQuorumCallback struct {
	qr      *QuorumReplica
	quorum  *AsyncQuorumCallback[bool]
	results *[]internalGetResult
}

func (c getQuorumCallback) OnResponse(resp Message) {
	var gresp wire.InternalGetResponse
	if err := c.qr.codec.Decode(resp.Payload, &gresp); err != nil {
		c.quorum.OnError(ErrMalformedMessage)
		return
	}
	*c.results = append(*c.results, internalGetResult{
		from:  resp.Source,
		value: VersionedValue{Value: gresp.Value, Timestamp: gresp.Timestamp},
		found: gresp.Found,
	})
	c.quorum.OnResponse(true)
}

func (c getQuorumCallback) OnError(err error) { c.quorum.OnError(err) }

func (qr *QuorumReplica) replyClientGet(request Message, key, value []byte, found bool) {
	payload, err := (&wire.GetResponse{Key: key, Value: value, Found: found}).Marshal()
	if err != nil {
		return
	}
	qr.Send(qr.createResponseMessage(request, ClientGetResponse, payload))
}

// handleInternalGetRequest answers a peer's INTERNAL_GET_REQUEST from this
// replica's local storage.
func (qr *QuorumReplica) handleInternalGetRequest(msg Message) error {
	var req wire.GetRequest
	if err := qr.codec.Decode(msg.Payload, &req); err != nil {
		return ErrMalformedMessage
	}
	key := req.Key

	qr.storage.Get(key, getStorageCallback{
		onGet: func(value VersionedValue, found bool) {
			payload, err := (&wire.InternalGetResponse{
				Key:       key,
				Value:     value.Value,
				Timestamp: value.Timestamp,
				Found:     found,
			}).Marshal()
			if err != nil {
				return
			}
			qr.Send(qr.createResponseMessage(msg, InternalGetResponse, payload))
		},
	})
	return nil
}

// setStorageCallback adapts a single completion function to StorageCallback
// for a Set operation; the Get-shaped methods are never called for a Set.
type setStorageCallback struct {
	onSet func(err error)
}

func (c setStorageCallback) OnGetResult(VersionedValue, bool) {}
func (c setStorageCallback) OnSetResult(err error)            { c.onSet(err) }
func (c setStorageCallback) OnError(err error)                { c.onSet(err) }

// getStorageCallback adapts a single completion function to StorageCallback
// for a Get operation; the Set-shaped methods are never called for a Get.
type getStorageCallback struct {
	onGet func(value VersionedValue, found bool)
}

func (c getStorageCallback) OnGetResult(value VersionedValue, found bool) { c.onGet(value, found) }
func (c getStorageCallback) OnSetResult(error)                            {}
func (c getStorageCallback) OnError(error)                                { c.onGet(VersionedValue{}, false) }
