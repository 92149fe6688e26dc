package tickloom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickloom/tickloom"
)

// TestProcessReceivePrefersHandlerOverWaitingList guards the self-message
// edge case: a process that sent itself a request under correlation id C
// (and is therefore waiting on C for a response) must still dispatch an
// inbound message of a *request* type to its registered handler, not
// treat it as C's response, even though C is pending in its own waiting
// list at the moment the self-delivery happens.
func TestProcessReceivePrefersHandlerOverWaitingList(t *testing.T) {
	net := &stubNetwork{}
	bus := tickloom.NewMessageBus(net, tickloom.NopLogger)
	p := newTestProcess(t, "p1", bus)

	const reqType tickloom.MessageType = "SOME_REQUEST"
	handlerCalled := false
	p.RegisterHandler(reqType, func(msg tickloom.Message) error {
		handlerCalled = true
		return nil
	})

	waitingListTriggered := false
	cb := tickloom.FuncCallback{
		OnResponseFn: func(tickloom.Message) { waitingListTriggered = true },
		OnErrorFn:    func(error) {},
	}

	// Send a self-addressed request under correlation id "C", registering
	// a waiting-list entry under "C" immediately before the self-message
	// is delivered inline.
	err := p.SendRequest(tickloom.Message{
		Source:        p.Id(),
		Destination:   p.Id(),
		Type:          reqType,
		CorrelationId: "C",
	}, cb)
	require.NoError(t, err)

	require.True(t, handlerCalled, "request type must dispatch to its handler even when self-addressed")
	require.False(t, waitingListTriggered, "the request itself must never be mistaken for its own response")
}

func TestProcessCloseFailsOutstandingRequests(t *testing.T) {
	net := &stubNetwork{}
	bus := tickloom.NewMessageBus(net, tickloom.NopLogger)
	p := newTestProcess(t, "p1", bus)
	p2 := newTestProcess(t, "p2", bus)

	var got error
	cb := tickloom.FuncCallback{
		OnResponseFn: func(tickloom.Message) {},
		OnErrorFn:    func(err error) { got = err },
	}
	err := p.SendRequest(tickloom.Message{Source: p.Id(), Destination: p2.Id(), Type: "PING", CorrelationId: "C"}, cb)
	require.NoError(t, err)

	p.Close()
	require.ErrorIs(t, got, tickloom.ErrShutdown)
}

func TestProcessRejectsNonPositiveTimeout(t *testing.T) {
	net := &stubNetwork{}
	bus := tickloom.NewMessageBus(net, tickloom.NopLogger)
	id := tickloom.NewProcessId("p1", 0)
	clock := tickloom.NewSimulatedClock(0)
	idGen := tickloom.NewSeededIdGenerator("p1")

	_, err := tickloom.NewProcess(id, tickloom.ServerRole, bus, clock, idGen, 0, tickloom.NopLogger)
	require.ErrorIs(t, err, tickloom.ErrInvalidConfiguration)

	_, err = tickloom.NewProcess(id, tickloom.ServerRole, bus, clock, idGen, -1, tickloom.NopLogger)
	require.ErrorIs(t, err, tickloom.ErrInvalidConfiguration)
}
