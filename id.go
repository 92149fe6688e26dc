package tickloom

import (
	"strconv"

	"github.com/google/uuid"
)

// ProcessId identifies a node or client, globally unique within a cluster.
// It carries a stable display Name and a stable, non-negative Index derived
// from insertion order into the cluster topology (spec §3). Equality is by
// Name, matching spec §3's "equality by name". ProcessIds that
// internal/realnet rebuilds from received frames carry Index -1, because a
// frame carries only the name.
type ProcessId struct {
	name  string
	index int
}

// NewProcessId constructs a ProcessId with the given display name and
// topology index. index must be the process's position in cluster build
// order; it is used for deterministic tie-breaks (e.g. quorum read
// reconciliation, spec §4.8) and must never change for the life of a run.
func NewProcessId(name string, index int) ProcessId {
	return ProcessId{name: name, index: index}
}

// Name returns the process's stable display name.
func (p ProcessId) Name() string { return p.name }

// Index returns the process's stable topology index: non-negative for ids
// built from the cluster topology, -1 for ids rebuilt by internal/realnet.
func (p ProcessId) Index() int { return p.index }

// Equals reports whether p and other denote the same process, by name.
func (p ProcessId) Equals(other ProcessId) bool { return p.name == other.name }

// String implements fmt.Stringer.
func (p ProcessId) String() string { return p.name }

// IsZero reports whether p is the zero-value ProcessId (no process set).
func (p ProcessId) IsZero() bool { return p.name == "" }

// MessageType is a non-empty string tag identifying the shape of a
// Message's payload (spec §3). Equality is by string.
type MessageType string

// The wire message types defined by the quorum replica protocol (spec §6).
const (
	ClientGetRequest    MessageType = "CLIENT_GET_REQUEST"
	ClientGetResponse   MessageType = "CLIENT_GET_RESPONSE"
	ClientSetRequest    MessageType = "CLIENT_SET_REQUEST"
	ClientSetResponse   MessageType = "CLIENT_SET_RESPONSE"
	InternalGetRequest  MessageType = "INTERNAL_GET_REQUEST"
	InternalGetResponse MessageType = "INTERNAL_GET_RESPONSE"
	InternalSetRequest  MessageType = "INTERNAL_SET_REQUEST"
	InternalSetResponse MessageType = "INTERNAL_SET_RESPONSE"
)

// PeerRole classifies the relationship between a message's source and its
// destination, from the destination's point of view (spec §3).
type PeerRole int

const (
	UnknownRole PeerRole = iota
	ClientRole
	ServerRole
	ReplicaRole
)

func (r PeerRole) String() string {
	switch r {
	case ClientRole:
		return "CLIENT"
	case ServerRole:
		return "SERVER"
	case ReplicaRole:
		return "REPLICA"
	default:
		return "UNKNOWN"
	}
}

// IdGen generates correlation ids. Production clusters use UUIDGenerator;
// simulated clusters use a SeededIdGenerator so that two runs with the same
// seed produce byte-identical correlation ids (spec §3, §9).
type IdGen interface {
	// NewCorrelationId returns a correlation id unique within the lifetime
	// of the cluster run.
	NewCorrelationId() string
}

// UUIDGenerator generates correlation ids via github.com/google/uuid's
// random UUID generator. This is the production IdGen: non-deterministic,
// cryptographically random, suitable for real clusters.
type UUIDGenerator struct{}

// NewCorrelationId implements IdGen.
func (UUIDGenerator) NewCorrelationId() string {
	return uuid.New().String()
}

// SeededIdGenerator produces deterministic correlation ids of the form
// "<processName>-<n>", where n is a per-generator monotonic counter. Two
// SeededIdGenerator instances constructed with the same process name and
// driven through the same number of calls produce identical sequences,
// which is what makes simulated cluster runs reproducible byte-for-byte
// (spec §3, §9).
type SeededIdGenerator struct {
	processName string
	next        int
}

// NewSeededIdGenerator returns a deterministic IdGen keyed on processName.
func NewSeededIdGenerator(processName string) *SeededIdGenerator {
	return &SeededIdGenerator{processName: processName}
}

// NewCorrelationId implements IdGen.
func (g *SeededIdGenerator) NewCorrelationId() string {
	id := g.processName + "-" + strconv.Itoa(g.next)
	g.next++
	return id
}
