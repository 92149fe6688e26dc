// Package cluster is the test harness for building and deterministically
// driving a tickloom cluster: it wires a simulated network, per-node
// simulated storage, and a set of replica processes, and exposes tick-at-a
// -time control for writing reproducible scenario tests.
package cluster

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/tickloom/tickloom"
	"github.com/tickloom/tickloom/internal/simnet"
	"github.com/tickloom/tickloom/internal/simstorage"
)

const defaultRequestTimeoutTicks = 10

// Factory builds the protocol handlers for one node, given its Replica
// (identity + peer set) and its Storage. Most callers pass
// tickloom.NewQuorumReplica wrapped to discard the return value:
//
//	c.Build(func(r *tickloom.Replica, s tickloom.Storage) { tickloom.NewQuorumReplica(r, s) })
type Factory func(replica *tickloom.Replica, storage tickloom.Storage)

type config struct {
	numProcesses        int
	seed                int64
	initialClockTime    int64
	requestTimeoutTicks int64
	useSimulated        bool
	networkOpts         []tickloom.NetworkOption
	storageOpts         []tickloom.StorageOption
}

// Option configures a Cluster before Build.
type Option func(*config)

// WithNumProcesses sets the number of replica nodes the cluster builds.
func WithNumProcesses(n int) Option {
	return func(c *config) { c.numProcesses = n }
}

// UseSimulatedNetwork selects the deterministic simulated Network and
// Storage implementations. It is currently the only supported transport
// for the harness; real clusters wire internal/realnet and
// internal/diskstorage directly rather than through this harness.
func UseSimulatedNetwork() Option {
	return func(c *config) { c.useSimulated = true }
}

// WithInitialClockTime sets the nanosecond value every node's simulated
// clock starts at.
func WithInitialClockTime(t int64) Option {
	return func(c *config) { c.initialClockTime = t }
}

// WithSeed sets the cluster's PRNG seed, shared (via deterministic
// per-component derivation) by the simulated network and every node's
// simulated storage.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithRequestTimeoutTicks overrides the default number of ticks a process
// waits for a correlated response before it times out.
func WithRequestTimeoutTicks(ticks int64) Option {
	return func(c *config) { c.requestTimeoutTicks = ticks }
}

// WithNetworkOptions passes through options to the underlying simulated
// Network (delay, drop rate).
func WithNetworkOptions(opts ...tickloom.NetworkOption) Option {
	return func(c *config) { c.networkOpts = append(c.networkOpts, opts...) }
}

// WithStorageOptions passes through options to each node's underlying
// simulated Storage (delay, failure rate).
func WithStorageOptions(opts ...tickloom.StorageOption) Option {
	return func(c *config) { c.storageOpts = append(c.storageOpts, opts...) }
}

// Cluster is a deterministically-driven set of replica nodes plus the
// clients addressing them, built from Options and advanced tick by tick
// (spec §8).
type Cluster struct {
	cfg     config
	bus     *tickloom.MessageBus
	network tickloom.Network

	ids      []tickloom.ProcessId
	storages []tickloom.Storage
	replicas []*tickloom.Replica
	clocks   map[tickloom.ProcessId]*tickloom.SimulatedClock

	clients []*tickloom.ClusterClient

	tick int64
}

// New returns a Cluster configured by opts. Defaults: 1 process, seed 0,
// initial clock time 0, a 10-tick request timeout, simulated network.
func New(opts ...Option) *Cluster {
	cfg := config{
		numProcesses:        1,
		requestTimeoutTicks: defaultRequestTimeoutTicks,
		useSimulated:        true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cluster{
		cfg:    cfg,
		clocks: make(map[tickloom.ProcessId]*tickloom.SimulatedClock),
	}
}

// Build constructs cfg.numProcesses replica nodes named "server-1".."server-N",
// wires them to a shared simulated network, gives each its own simulated
// storage, and invokes factory once per node to install its protocol
// handlers.
func (c *Cluster) Build(factory Factory) error {
	if !c.cfg.useSimulated {
		return errors.New("cluster: only UseSimulatedNetwork is currently supported")
	}
	if c.cfg.numProcesses <= 0 {
		return errors.New("cluster: numProcesses must be positive")
	}

	c.ids = make([]tickloom.ProcessId, c.cfg.numProcesses)
	for i := 0; i < c.cfg.numProcesses; i++ {
		c.ids[i] = tickloom.NewProcessId(fmt.Sprintf("server-%d", i+1), i)
	}

	netCfg := tickloom.NewNetworkConfig(c.cfg.networkOpts...)
	bus := tickloom.NewMessageBus(nil, tickloom.NopLogger)
	network := simnet.New(c.cfg.seed, netCfg, bus.DeliverFromNetwork)
	bus.SetNetwork(network)
	c.network = network
	c.bus = bus

	storageCfg := tickloom.NewStorageConfig(c.cfg.storageOpts...)
	for i, id := range c.ids {
		clock := tickloom.NewSimulatedClock(c.cfg.initialClockTime)
		c.clocks[id] = clock
		idGen := tickloom.NewSeededIdGenerator(id.Name())
		process, err := tickloom.NewProcess(id, tickloom.ReplicaRole, c.bus, clock, idGen, c.cfg.requestTimeoutTicks, tickloom.NopLogger)
		if err != nil {
			return err
		}
		replica := tickloom.NewReplica(process, c.ids)
		storage := simstorage.New(c.cfg.seed+int64(i)+1, storageCfg)
		c.storages = append(c.storages, storage)
		c.replicas = append(c.replicas, replica)
		factory(replica, storage)
	}
	return nil
}

// Start is a no-op for the simulated transport: every node is already
// wired and ready to tick once Build returns. It exists for symmetry with
// a real-transport harness, where Start would bind listening sockets.
func (c *Cluster) Start() error { return nil }

// NewClient returns a ClusterClient named name, registered on the
// cluster's bus with its own simulated clock and correlation-id
// generator. name must be unique among every process registered on the
// cluster, clients and replicas alike.
func (c *Cluster) NewClient(name string) (*tickloom.ClusterClient, error) {
	id := tickloom.NewProcessId(name, len(c.ids)+len(c.clients))
	clock := tickloom.NewSimulatedClock(c.cfg.initialClockTime)
	c.clocks[id] = clock
	idGen := tickloom.NewSeededIdGenerator(id.Name())
	process, err := tickloom.NewProcess(id, tickloom.ClientRole, c.bus, clock, idGen, c.cfg.requestTimeoutTicks, tickloom.NopLogger)
	if err != nil {
		return nil, err
	}
	client := tickloom.NewClusterClient(process)
	c.clients = append(c.clients, client)
	return client, nil
}

// ReplicaId returns the ProcessId of the i'th built replica (0-indexed).
func (c *Cluster) ReplicaId(i int) tickloom.ProcessId { return c.ids[i] }

// Tick advances every component by exactly one logical tick, in fixed
// order: the network (and, through it, the message bus's inbound
// deliveries), then every process, then every node's storage (spec §2).
func (c *Cluster) Tick() {
	c.bus.Tick()
	for _, r := range c.replicas {
		r.Tick(nil)
	}
	for _, client := range c.clients {
		client.Tick(nil)
	}
	for _, s := range c.storages {
		s.Tick()
	}
	c.tick++
}

// CurrentTick returns the number of ticks this cluster has executed.
func (c *Cluster) CurrentTick() int64 { return c.tick }

// TickUntil calls Tick repeatedly until pred returns true or budgetTicks
// ticks have elapsed, whichever comes first. It returns an error if the
// budget was exhausted without pred becoming true.
func (c *Cluster) TickUntil(pred func() bool, budgetTicks int) error {
	for i := 0; i < budgetTicks; i++ {
		if pred() {
			return nil
		}
		c.Tick()
	}
	if pred() {
		return nil
	}
	return errors.Newf("tick budget of %d exhausted without predicate becoming true", budgetTicks)
}

// PartitionNodes installs a symmetric partition between a and b: messages
// in either direction are silently dropped until HealPartition is called.
func (c *Cluster) PartitionNodes(a, b tickloom.ProcessId) {
	c.network.PartitionOneWay(a, b)
	c.network.PartitionOneWay(b, a)
}

// HealPartition removes a symmetric partition previously installed by
// PartitionNodes.
func (c *Cluster) HealPartition(a, b tickloom.ProcessId) {
	c.network.HealOneWay(a, b)
	c.network.HealOneWay(b, a)
}

// SetTimeForProcess jumps id's simulated clock directly to nanos.
func (c *Cluster) SetTimeForProcess(id tickloom.ProcessId, nanos int64) {
	if clock, ok := c.clocks[id]; ok {
		clock.SetTime(nanos)
	}
}

// AdvanceTimeForProcess moves id's simulated clock forward by deltaNanos.
func (c *Cluster) AdvanceTimeForProcess(id tickloom.ProcessId, deltaNanos int64) {
	if clock, ok := c.clocks[id]; ok {
		clock.Advance(deltaNanos)
	}
}

// Close releases every resource the cluster holds: it fails every
// outstanding request with ErrShutdown and closes the network and every
// node's storage.
func (c *Cluster) Close() error {
	for _, r := range c.replicas {
		r.Close()
	}
	for _, cl := range c.clients {
		cl.Close()
	}
	if err := c.network.Close(); err != nil {
		return err
	}
	for _, s := range c.storages {
		if err := s.Close(); err != nil {
			return err
		}
	}
	return nil
}
