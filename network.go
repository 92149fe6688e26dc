package tickloom

// DeliverFunc is how a Network hands a released message to the rest of the
// system. A MessageBus passes one of these to a Network's constructor;
// the network calls it once per message, during Tick, when that message's
// delivery policy says it should arrive.
type DeliverFunc func(msg Message)

// Network delivers Messages between processes, with a pluggable delivery
// policy (spec §4.1). The simulated network (internal/simnet) models latency,
// loss, and partitions for deterministic tests; a real implementation
// (internal/realnet) carries messages over actual sockets.
//
// Network never inspects Payload; it routes solely on Message.Destination.
type Network interface {
	// Send enqueues msg for delivery. Send never returns an error for a
	// message the delivery policy chooses to drop: silent loss is part of
	// the network model (spec §4.1), not a transport error. An error return
	// means msg could not be handed to the transport at all (e.g. the
	// network has been closed, or internal/realnet could not resolve,
	// dial, or write to the destination). internal/simnet's Send never
	// blocks; internal/realnet's Send dials and writes synchronously.
	Send(msg Message) error

	// Tick advances the network by one logical tick, delivering to each
	// destination's MessageBus every message whose delivery tick has
	// arrived, in per-destination FIFO order for messages sharing a tick.
	Tick()

	// PartitionOneWay prevents messages sent from `from` to `to` from
	// being delivered until the partition is healed. Partitioning is not
	// symmetric by default; callers wanting a symmetric partition call it
	// twice, once in each direction (spec §4.1).
	PartitionOneWay(from, to ProcessId)

	// HealOneWay reverses a prior PartitionOneWay(from, to).
	HealOneWay(from, to ProcessId)

	// HealAll clears every partition installed via PartitionOneWay.
	HealAll()

	// Close releases resources held by the network. After Close, Send
	// must return ErrShutdown.
	Close() error
}
