// Package simstorage implements a deterministic, in-memory Storage used by
// simulated cluster runs: operations complete on a tick-ordered priority
// queue after a configured delay, with optional injected failures.
package simstorage

import (
	"container/heap"
	"math/rand"

	"github.com/tickloom/tickloom"
)

type opKind int

const (
	opGet opKind = iota
	opSet
)

type pendingOp struct {
	kind         opKind
	key          string
	value        tickloom.VersionedValue
	cb           tickloom.StorageCallback
	completionTick int64
	seq          int64
}

type queue []*pendingOp

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].completionTick != q[j].completionTick {
		return q[i].completionTick < q[j].completionTick
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(*pendingOp)) }
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Storage is a deterministic simulated tickloom.Storage (spec §4.7).
type Storage struct {
	cfg         tickloom.StorageConfig
	rng         *rand.Rand
	data        map[string]tickloom.VersionedValue
	currentTick int64
	nextSeq     int64
	pending     queue
	closed      bool
}

// New returns a Storage seeded with seed and configured by cfg.
func New(seed int64, cfg tickloom.StorageConfig) *Storage {
	s := &Storage{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		data: make(map[string]tickloom.VersionedValue),
	}
	heap.Init(&s.pending)
	return s
}

func (s *Storage) enqueue(op *pendingOp) {
	op.completionTick = s.currentTick + s.cfg.DelayTicks
	op.seq = s.nextSeq
	s.nextSeq++
	heap.Push(&s.pending, op)
}

func (s *Storage) fails() bool {
	return s.cfg.FailureRate > 0 && s.rng.Float64() < s.cfg.FailureRate
}

// Get implements tickloom.Storage.
func (s *Storage) Get(key []byte, cb tickloom.StorageCallback) {
	s.enqueue(&pendingOp{kind: opGet, key: string(key), cb: cb})
}

// Set implements tickloom.Storage. The write is applied to s.data only
// when the operation completes on a later Tick, using the monotone-write
// policy: overwrite only if the key is absent, or the existing entry's
// timestamp is strictly smaller than value.Timestamp (spec §6).
func (s *Storage) Set(key []byte, value tickloom.VersionedValue, cb tickloom.StorageCallback) {
	s.enqueue(&pendingOp{kind: opSet, key: string(key), value: value, cb: cb})
}

// Tick implements tickloom.Storage.
func (s *Storage) Tick() {
	s.currentTick++
	for s.pending.Len() > 0 && s.pending[0].completionTick <= s.currentTick {
		op := heap.Pop(&s.pending).(*pendingOp)
		s.complete(op)
	}
}

func (s *Storage) complete(op *pendingOp) {
	if s.fails() {
		op.cb.OnError(tickloom.ErrStorageFailure)
		return
	}
	switch op.kind {
	case opGet:
		value, found := s.data[op.key]
		op.cb.OnGetResult(value, found)
	case opSet:
		existing, found := s.data[op.key]
		if !found || existing.Timestamp < op.value.Timestamp {
			s.data[op.key] = op.value
		}
		op.cb.OnSetResult(nil)
	}
}

// Close implements tickloom.Storage.
func (s *Storage) Close() error {
	s.closed = true
	return nil
}

var _ tickloom.Storage = (*Storage)(nil)
