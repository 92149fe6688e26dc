package tickloom

// Replica is a Process that participates in a replicated protocol across a
// fixed set of peers (spec §4.6, §6). It supplies the fan-out helpers
// every quorum-based protocol needs: the full peer set, and a fresh
// internal correlation id per outbound internal request.
type Replica struct {
	*Process
	peers []ProcessId
}

// NewReplica returns a Replica built on process, participating alongside
// peers. peers must include process's own id; self-addressed messages are
// delivered synchronously by the MessageBus (spec §4.2).
func NewReplica(process *Process, peers []ProcessId) *Replica {
	cp := make([]ProcessId, len(peers))
	copy(cp, peers)
	return &Replica{Process: process, peers: cp}
}

// Peers returns every process participating in this replica's protocol,
// including this replica's own id.
func (r *Replica) Peers() []ProcessId {
	cp := make([]ProcessId, len(r.peers))
	copy(cp, r.peers)
	return cp
}

// GetAllNodes is an alias for Peers, named to match the fan-out target
// broadcastToAllReplicas iterates over (spec §4.4).
func (r *Replica) GetAllNodes() []ProcessId {
	return r.Peers()
}

// QuorumSize returns floor(len(Peers())/2)+1, the number of peers whose
// agreement constitutes a majority.
func (r *Replica) QuorumSize() int {
	return len(r.peers)/2 + 1
}

// broadcastToAllReplicas sends the message msgFactory builds for each node
// in GetAllNodes (this replica's full peer set, itself included) to that
// node, generating a fresh correlation id per message and registering cb
// against every one, so a single AsyncQuorumCallback shared by cb
// accumulates every peer's response (spec §4.3, §4.4). A peer whose
// SendRequest fails reports that failure to cb.OnError immediately, rather
// than leaving the quorum permanently short of a response for that peer.
func (r *Replica) broadcastToAllReplicas(cb RequestCallback, msgFactory func(peer ProcessId, correlationId string) Message) {
	for _, peer := range r.GetAllNodes() {
		correlationId := r.NewCorrelationId()
		msg := msgFactory(peer, correlationId)
		if err := r.SendRequest(msg, cb); err != nil {
			cb.OnError(err)
		}
	}
}
