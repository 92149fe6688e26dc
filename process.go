package tickloom

// Process is the common substrate every participant in a cluster is built
// on: clients and replicas alike (spec §4.6). It owns a clock, an id
// generator for correlation ids, a RequestWaitingList for outstanding
// requests it originated, and a HandlerTable for messages addressed to it.
// Concrete protocols (e.g. QuorumReplica) embed *Process and register
// their own handlers.
type Process struct {
	id       ProcessId
	role     PeerRole
	bus      *MessageBus
	clock    Clock
	idGen    IdGen
	waiting  *RequestWaitingList
	handlers HandlerTable
	logger   Logger
	tick     int64
}

// NewProcess returns a Process identified by id, wired to bus for sending
// and receiving, using clock for timestamps, idGen for correlation ids,
// and failing outstanding requests after requestTimeoutTicks ticks.
// requestTimeoutTicks must be positive, per spec §13's resolution of the
// zero/negative-timeout open question.
func NewProcess(id ProcessId, role PeerRole, bus *MessageBus, clock Clock, idGen IdGen, requestTimeoutTicks int64, logger Logger) (*Process, error) {
	if requestTimeoutTicks <= 0 {
		return nil, ErrInvalidConfiguration
	}
	if logger == nil {
		logger = NopLogger
	}
	p := &Process{
		id:       id,
		role:     role,
		bus:      bus,
		clock:    clock,
		idGen:    idGen,
		waiting:  NewRequestWaitingList(requestTimeoutTicks),
		handlers: make(HandlerTable),
		logger:   logger,
	}
	bus.Register(p)
	return p, nil
}

// Id returns the process's identity.
func (p *Process) Id() ProcessId { return p.id }

// Role returns the process's peer role.
func (p *Process) Role() PeerRole { return p.role }

// Clock returns the process's clock.
func (p *Process) Clock() Clock { return p.clock }

// CurrentTick returns the number of ticks this process has processed.
func (p *Process) CurrentTick() int64 { return p.tick }

// RegisterHandler installs fn as the handler for messages of type t.
// Registering a second handler for the same type replaces the first.
func (p *Process) RegisterHandler(t MessageType, fn Handler) {
	p.handlers[t] = fn
}

// Send transmits msg via the message bus. The caller is expected to have
// set msg.Source to p.Id(); Send does not set it automatically, since some
// callers (e.g. a coordinator relaying on behalf of a client) intentionally
// preserve a different source.
func (p *Process) Send(msg Message) error {
	return p.bus.Send(msg)
}

// createMessage builds a Message from this process to dest under msgType,
// carrying correlationId and payload, tagged with this process's PeerRole
// (spec §4.4).
func (p *Process) createMessage(dest ProcessId, correlationId string, msgType MessageType, payload []byte) Message {
	return Message{
		Source:        p.id,
		Destination:   dest,
		Type:          msgType,
		CorrelationId: correlationId,
		Payload:       payload,
		Role:          p.role,
	}
}

// createResponseMessage builds a Message replying to incoming: addressed
// back to incoming.Source, correlated with incoming.CorrelationId, tagged
// with this process's PeerRole (spec §4.4).
func (p *Process) createResponseMessage(incoming Message, msgType MessageType, payload []byte) Message {
	return p.createMessage(incoming.Source, incoming.CorrelationId, msgType, payload)
}

// SendRequest sends msg and registers cb in the waiting list under
// msg.CorrelationId, so that the eventual response (or timeout) reaches cb.
func (p *Process) SendRequest(msg Message, cb RequestCallback) error {
	p.waiting.Add(msg.CorrelationId, p.tick, cb)
	return p.Send(msg)
}

// Receive is called by the MessageBus to hand msg to this process. If a
// handler is registered for msg.Type, Receive dispatches to it: request
// types are always dispatched this way, even when this process is both
// the sender and the destination (the self-message fast path, spec §4.2)
// and msg.CorrelationId happens to also be pending in its own waiting
// list as the key for the eventual response. Only when no handler is
// registered does Receive treat msg as a correlated response and offer it
// to the waiting list.
func (p *Process) Receive(msg Message) error {
	if h, ok := p.handlers[msg.Type]; ok {
		return h(msg)
	}
	if p.waiting.isPending(msg.CorrelationId) {
		p.waiting.Handle(msg)
		return nil
	}
	return ErrUnknownMessageType
}

// Tick advances this process by one logical tick: it expires any requests
// that have timed out, then invokes onTick if one was supplied. Concrete
// protocols that need periodic work (heartbeats, retries) pass onTick;
// QuorumReplica does not need one.
func (p *Process) Tick(onTick func()) {
	p.tick++
	p.waiting.Tick(p.tick)
	if onTick != nil {
		onTick()
	}
}

// NewCorrelationId returns a fresh correlation id from this process's
// IdGen.
func (p *Process) NewCorrelationId() string {
	return p.idGen.NewCorrelationId()
}

// Close fails every outstanding request this process originated with
// ErrShutdown, and unregisters it from the bus.
func (p *Process) Close() {
	p.waiting.FailAll(ErrShutdown)
	p.bus.Unregister(p.id)
}
