package tickloom

import "github.com/cockroachdb/errors"

// Sentinel error kinds (spec §7). Identify with errors.Is, which also
// matches a sentinel that has been wrapped with context.
var (
	// ErrRequestTimeout is returned when a RequestWaitingList entry expired
	// before a matching response arrived.
	ErrRequestTimeout = errors.New("request expired")

	// ErrQuorumUnreachable is returned when an AsyncQuorumCallback saw all N
	// participants complete (response or error) without the majority
	// predicate being satisfied.
	ErrQuorumUnreachable = errors.New("quorum condition not met")

	// ErrStorageFailure is returned when a Storage operation failed, whether
	// by injected simulation failure or a real backend error.
	ErrStorageFailure = errors.New("storage operation failed")

	// ErrMalformedMessage is returned internally when decoding a payload
	// failed; handlers that see it log and drop rather than respond.
	ErrMalformedMessage = errors.New("malformed message payload")

	// ErrUnknownMessageType is returned when no handler is registered for a
	// message's type.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrUnknownDestination is returned when the message bus has no process
	// registered under a message's destination id.
	ErrUnknownDestination = errors.New("unknown destination")

	// ErrShutdown is the error every pending request is failed with when a
	// process or the cluster is closed while requests are outstanding.
	ErrShutdown = errors.New("request cancelled due to shutdown")

	// ErrInvalidConfiguration is returned when a component is constructed
	// with an out-of-range configuration value (e.g. requestTimeoutTicks <= 0).
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
