// Package tickloom is a framework for building and deterministically testing
// distributed replication protocols.
//
// Its core is a single-threaded, tick-driven simulation substrate: a cluster
// of replica processes is advanced one logical tick at a time by a driver
// that steps, in fixed order, a pluggable network, a message bus, the
// processes themselves, and a pluggable storage layer. Layered on top of
// that substrate is a quorum-replicated, last-writer-wins versioned
// key/value replica (QuorumReplica) that serves as the exemplar protocol.
//
// Because every component advances only when ticked, and no goroutines run
// in the core, two runs given the same seed, topology, and operation
// sequence produce byte-identical message histories. Concurrency bugs
// become ordering bugs: reproducible by construction.
//
// Usage:
//
//	c := cluster.New(cluster.WithNumProcesses(3), cluster.WithSeed(42))
//	c.Build(func(r *tickloom.Replica, s tickloom.Storage) { tickloom.NewQuorumReplica(r, s) })
//	c.Start()
//	client, _ := c.NewClient("c1")
//	f := client.Set(c.ReplicaId(0), []byte("k"), []byte("v"))
//	c.TickUntil(f.IsCompleted, 1000)
package tickloom
