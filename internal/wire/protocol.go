package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// FrameMagic is the magic byte that starts every framed message on a real
// socket connection (internal/realnet). It has no role in the simulated
// network, which passes Messages in memory.
const FrameMagic byte = 0xB5

// FrameHeaderSize is the size, in bytes, of a Frame's fixed header:
// Magic(1) + Role(1) + SourceLen(2) + DestLen(2) + TypeLen(2) +
// CorrelationLen(2) + PayloadLen(4) = 14.
const FrameHeaderSize = 14

// Frame is the on-the-wire envelope for a tickloom.Message sent over a
// real network connection. String fields are length-prefixed UTF-8;
// Payload is length-prefixed opaque bytes. Role carries the sender's
// tickloom.PeerRole as its underlying byte value (0 unknown, 1 client, 2
// server, 3 replica); this package does not import tickloom, so callers
// are responsible for the PeerRole<->byte conversion (internal/realnet
// does this on both send and receive).
type Frame struct {
	Source        string
	Destination   string
	Type          string
	CorrelationId string
	Payload       []byte
	Role          byte
}

// WriteFrame writes f to w as a single framed message.
func WriteFrame(w io.Writer, f Frame) error {
	header := make([]byte, FrameHeaderSize)
	header[0] = FrameMagic
	header[1] = f.Role
	binary.BigEndian.PutUint16(header[2:4], uint16(len(f.Source)))
	binary.BigEndian.PutUint16(header[4:6], uint16(len(f.Destination)))
	binary.BigEndian.PutUint16(header[6:8], uint16(len(f.Type)))
	binary.BigEndian.PutUint16(header[8:10], uint16(len(f.CorrelationId)))
	binary.BigEndian.PutUint32(header[10:14], uint32(len(f.Payload)))

	buf := make([]byte, 0, len(header)+len(f.Source)+len(f.Destination)+len(f.Type)+len(f.CorrelationId)+len(f.Payload))
	buf = append(buf, header...)
	buf = append(buf, f.Source...)
	buf = append(buf, f.Destination...)
	buf = append(buf, f.Type...)
	buf = append(buf, f.CorrelationId...)
	buf = append(buf, f.Payload...)

	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "writing frame")
	}
	return nil
}

// ReadFrame reads a single framed message from r.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, errors.Wrap(err, "reading frame header")
	}
	if header[0] != FrameMagic {
		return Frame{}, errors.Newf("invalid frame magic: %x", header[0])
	}
	role := header[1]
	sourceLen := binary.BigEndian.Uint16(header[2:4])
	destLen := binary.BigEndian.Uint16(header[4:6])
	typeLen := binary.BigEndian.Uint16(header[6:8])
	corrLen := binary.BigEndian.Uint16(header[8:10])
	payloadLen := binary.BigEndian.Uint32(header[10:14])

	body := make([]byte, int(sourceLen)+int(destLen)+int(typeLen)+int(corrLen)+int(payloadLen))
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, errors.Wrap(err, "reading frame body")
	}

	var f Frame
	f.Role = role
	off := 0
	f.Source = string(body[off : off+int(sourceLen)])
	off += int(sourceLen)
	f.Destination = string(body[off : off+int(destLen)])
	off += int(destLen)
	f.Type = string(body[off : off+int(typeLen)])
	off += int(typeLen)
	f.CorrelationId = string(body[off : off+int(corrLen)])
	off += int(corrLen)
	f.Payload = body[off : off+int(payloadLen)]
	return f, nil
}
