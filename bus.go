package tickloom

// MessageBus routes messages to the Process registered under their
// destination id (spec §4.2). A message whose source and destination are
// the same process is delivered synchronously, inline, bypassing the
// Network entirely: self-messages never incur simulated latency or loss.
type MessageBus struct {
	network   Network
	processes map[string]*Process
	logger    Logger
}

// NewMessageBus returns a MessageBus that delivers non-self messages via
// network, which may be nil if the caller needs to construct the network
// with this bus's DeliverFromNetwork as its DeliverFunc first; in that
// case call SetNetwork once the network exists, before the first Send.
func NewMessageBus(network Network, logger Logger) *MessageBus {
	if logger == nil {
		logger = NopLogger
	}
	return &MessageBus{
		network:   network,
		processes: make(map[string]*Process),
		logger:    logger,
	}
}

// SetNetwork installs network as the bus's delivery target, for the
// construction order where the network itself needed DeliverFromNetwork
// before it could be built.
func (b *MessageBus) SetNetwork(network Network) {
	b.network = network
}

// Register associates p's id with p, so that messages addressed to it are
// routed to it. Registering a second process under the same id replaces
// the first.
func (b *MessageBus) Register(p *Process) {
	b.processes[p.Id().Name()] = p
}

// Unregister removes the process registered under id, if any.
func (b *MessageBus) Unregister(id ProcessId) {
	delete(b.processes, id.Name())
}

// Send routes msg to its destination. If msg.Source equals msg.Destination
// the message is delivered immediately, inline, in the same tick it was
// sent. Otherwise it is handed to the Network for delivery on a later (or
// the same) tick, per the network's delivery policy.
func (b *MessageBus) Send(msg Message) error {
	if msg.Source.Equals(msg.Destination) {
		return b.deliver(msg)
	}
	return b.network.Send(msg)
}

// Tick advances the underlying network by one tick. Messages the network
// releases this tick are delivered to their destination process inline,
// during this call.
func (b *MessageBus) Tick() {
	b.network.Tick()
}

// DeliverFromNetwork is passed to the Network as its DeliverFunc. It hands
// a released message to its destination process.
func (b *MessageBus) DeliverFromNetwork(msg Message) {
	if err := b.deliver(msg); err != nil {
		b.logger.Warnf("message bus: dropping message %s->%s type=%s: %v",
			msg.Source, msg.Destination, msg.Type, err)
	}
}

func (b *MessageBus) deliver(msg Message) error {
	p, ok := b.processes[msg.Destination.Name()]
	if !ok {
		return ErrUnknownDestination
	}
	return p.Receive(msg)
}
