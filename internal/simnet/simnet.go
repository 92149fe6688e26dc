// Package simnet implements a deterministic, in-memory Network used by
// simulated cluster runs: messages for every destination are held in one
// tick-ordered priority queue and released only when Tick is called,
// optionally delayed, dropped, or blocked by a partition.
package simnet

import (
	"container/heap"
	"math/rand"

	"github.com/tickloom/tickloom"
)

type envelope struct {
	msg          tickloom.Message
	deliveryTick int64
	seq          int64
}

// queue is a container/heap priority queue ordered by deliveryTick, with
// seq (assignment order) as the FIFO tie-break for envelopes sharing a
// delivery tick.
type queue []*envelope

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].deliveryTick != q[j].deliveryTick {
		return q[i].deliveryTick < q[j].deliveryTick
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)        { *q = append(*q, x.(*envelope)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type pairKey struct {
	from, to string
}

// Network is a deterministic simulated tickloom.Network (spec §4.1).
type Network struct {
	cfg         tickloom.NetworkConfig
	rng         *rand.Rand
	deliver     tickloom.DeliverFunc
	currentTick int64
	nextSeq     int64
	pending     queue
	partitions  map[pairKey]bool
	closed      bool
}

// New returns a Network seeded with seed, configured by cfg, that hands
// released messages to deliver.
func New(seed int64, cfg tickloom.NetworkConfig, deliver tickloom.DeliverFunc) *Network {
	n := &Network{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(seed)),
		deliver:    deliver,
		partitions: make(map[pairKey]bool),
	}
	heap.Init(&n.pending)
	return n
}

// Send implements tickloom.Network. A message destined across a
// partitioned link, or chosen for drop by the configured DropRate, is
// silently discarded: Send still returns nil, matching the model's
// silent-loss semantics (spec §4.1).
func (n *Network) Send(msg tickloom.Message) error {
	if n.closed {
		return tickloom.ErrShutdown
	}
	if n.partitioned(msg.Source, msg.Destination) {
		return nil
	}
	if n.cfg.DropRate > 0 && n.rng.Float64() < n.cfg.DropRate {
		return nil
	}
	env := &envelope{
		msg:          msg,
		deliveryTick: n.currentTick + n.cfg.DelayTicks,
		seq:          n.nextSeq,
	}
	n.nextSeq++
	heap.Push(&n.pending, env)
	return nil
}

// Tick implements tickloom.Network.
func (n *Network) Tick() {
	n.currentTick++
	for n.pending.Len() > 0 && n.pending[0].deliveryTick <= n.currentTick {
		env := heap.Pop(&n.pending).(*envelope)
		if n.partitioned(env.msg.Source, env.msg.Destination) {
			continue
		}
		n.deliver(env.msg)
	}
}

func key(a, b tickloom.ProcessId) pairKey {
	return pairKey{from: a.Name(), to: b.Name()}
}

func (n *Network) partitioned(from, to tickloom.ProcessId) bool {
	return n.partitions[key(from, to)]
}

// PartitionOneWay implements tickloom.Network.
func (n *Network) PartitionOneWay(from, to tickloom.ProcessId) {
	n.partitions[key(from, to)] = true
}

// HealOneWay implements tickloom.Network.
func (n *Network) HealOneWay(from, to tickloom.ProcessId) {
	delete(n.partitions, key(from, to))
}

// HealAll implements tickloom.Network.
func (n *Network) HealAll() {
	n.partitions = make(map[pairKey]bool)
}

// Close implements tickloom.Network.
func (n *Network) Close() error {
	n.closed = true
	return nil
}

var _ tickloom.Network = (*Network)(nil)
