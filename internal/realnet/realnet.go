// Package realnet implements tickloom.Network over real TCP connections,
// for running a tickloom cluster across actual processes rather than
// inside a simulation. Unlike the single-threaded core, this package does
// run background goroutines: one to accept inbound connections and one per
// inbound connection to read frames, feeding a mutex-guarded inbox that
// Tick drains synchronously, so receiving never blocks the driver. Sending
// does: Send dials and writes on the caller's goroutine.
package realnet

import (
	"bufio"
	"net"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tickloom/tickloom"
	"github.com/tickloom/tickloom/internal/wire"
)

// AddressBook resolves a ProcessId to the TCP address it listens on.
type AddressBook interface {
	Address(id tickloom.ProcessId) (string, bool)
}

// StaticAddressBook is an AddressBook backed by a fixed map.
type StaticAddressBook map[string]string

// Address implements AddressBook.
func (b StaticAddressBook) Address(id tickloom.ProcessId) (string, bool) {
	addr, ok := b[id.Name()]
	return addr, ok
}

// Network is a real, socket-based tickloom.Network. Each Send dials (or
// reuses) a persistent connection to the destination's address and writes
// a framed message; a background listener accepts connections from peers
// and feeds decoded messages into an inbox that Tick drains.
type Network struct {
	self      tickloom.ProcessId
	addresses AddressBook
	deliver   tickloom.DeliverFunc

	mu       sync.Mutex
	conns    map[string]net.Conn
	inbox    []tickloom.Message
	listener net.Listener
	closed   bool
}

// New returns a Network for self, whose peers are resolved through
// addresses, delivering received messages to deliver.
func New(self tickloom.ProcessId, addresses AddressBook, deliver tickloom.DeliverFunc) *Network {
	return &Network{
		self:      self,
		addresses: addresses,
		deliver:   deliver,
		conns:     make(map[string]net.Conn),
	}
}

// Listen starts accepting inbound connections on addr. It must be called
// before any peer can reach this node; it is the realnet analogue of
// Network.bind from spec §4.1.
func (n *Network) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	n.listener = ln
	go n.acceptLoop(ln)
	return nil
}

func (n *Network) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go n.readLoop(conn)
	}
}

func (n *Network) readLoop(conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		frame, err := wire.ReadFrame(r)
		if err != nil {
			_ = conn.Close()
			return
		}
		msg := tickloom.Message{
			Source:        tickloom.NewProcessId(frame.Source, -1),
			Destination:   tickloom.NewProcessId(frame.Destination, -1),
			Type:          tickloom.MessageType(frame.Type),
			CorrelationId: frame.CorrelationId,
			Payload:       frame.Payload,
			Role:          tickloom.PeerRole(frame.Role),
		}
		n.mu.Lock()
		n.inbox = append(n.inbox, msg)
		n.mu.Unlock()
	}
}

// Send implements tickloom.Network by dialing (or reusing a cached
// connection to) the destination's address and writing a framed message.
// Both the dial and the write are blocking calls made before Send returns.
func (n *Network) Send(msg tickloom.Message) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return tickloom.ErrShutdown
	}
	n.mu.Unlock()

	addr, ok := n.addresses.Address(msg.Destination)
	if !ok {
		return tickloom.ErrUnknownDestination
	}
	conn, err := n.connFor(msg.Destination.Name(), addr)
	if err != nil {
		return err
	}
	return wire.WriteFrame(conn, wire.Frame{
		Source:        msg.Source.Name(),
		Destination:   msg.Destination.Name(),
		Type:          string(msg.Type),
		CorrelationId: msg.CorrelationId,
		Payload:       msg.Payload,
		Role:          byte(msg.Role),
	})
}

func (n *Network) connFor(name, addr string) (net.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if conn, ok := n.conns[name]; ok {
		return conn, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s at %s", name, addr)
	}
	n.conns[name] = conn
	return conn, nil
}

// Tick implements tickloom.Network by handing every message received
// since the last Tick to deliver, in arrival order.
func (n *Network) Tick() {
	n.mu.Lock()
	pending := n.inbox
	n.inbox = nil
	n.mu.Unlock()

	for _, msg := range pending {
		n.deliver(msg)
	}
}

// PartitionOneWay is not supported by the real transport: two real
// processes either can or cannot reach each other at the socket layer,
// which this package does not simulate. It is a no-op, present only to
// satisfy tickloom.Network.
func (n *Network) PartitionOneWay(from, to tickloom.ProcessId) {}

// HealOneWay is a no-op; see PartitionOneWay.
func (n *Network) HealOneWay(from, to tickloom.ProcessId) {}

// HealAll is a no-op; see PartitionOneWay.
func (n *Network) HealAll() {}

// Close shuts down the listener and every outbound connection.
func (n *Network) Close() error {
	n.mu.Lock()
	n.closed = true
	conns := n.conns
	n.conns = nil
	n.mu.Unlock()

	if n.listener != nil {
		_ = n.listener.Close()
	}
	for _, conn := range conns {
		_ = conn.Close()
	}
	return nil
}

var _ tickloom.Network = (*Network)(nil)
