package tickloom

// Message is the unit of communication between processes (spec §3). Header
// fields are interpreted by the MessageBus and Network; Payload is opaque
// to both and is only interpreted by the handler registered for Type. Role
// is the sending process's PeerRole, stamped by Process.createMessage and
// Process.createResponseMessage so a receiver can tell a client's request
// from a peer replica's without consulting anything outside the message
// itself.
type Message struct {
	Source        ProcessId
	Destination   ProcessId
	Type          MessageType
	CorrelationId string
	Payload       []byte
	Role          PeerRole
}

// Handler processes a decoded Message for a Process. Handlers run
// synchronously on the driver's tick goroutine; they must never block.
type Handler func(msg Message) error

// HandlerTable maps a MessageType to the Handler responsible for it. A
// Process consults its HandlerTable on every message it receives from the
// bus. A message whose type has no registered handler is handed to the
// waiting list if its correlation id is pending there (a response), and
// otherwise yields ErrUnknownMessageType.
type HandlerTable map[MessageType]Handler
