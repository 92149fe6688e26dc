// Package diskstorage implements tickloom.Storage over a single append-only
// file plus an in-memory index, for running a tickloom cluster with real
// persistence rather than a simulated in-memory map. Like internal/realnet,
// it trades the single-threaded tick-driven model for real I/O: operations
// complete synchronously, within the Get/Set call itself, rather than on a
// later Tick.
package diskstorage

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/tickloom/tickloom"
)

// record is one length-prefixed, append-only log entry: keyLen(4) +
// valueLen(4) + timestamp(8) + key + value.
const recordHeaderSize = 16

// Storage is a file-backed tickloom.Storage. Every Set appends a record to
// the log and updates the in-memory index; every Get is served from the
// index. The log is never compacted: Storage is meant for demonstrations
// and tests, not production durability.
type Storage struct {
	mu    sync.Mutex
	file  *os.File
	index map[string]tickloom.VersionedValue
}

// Open opens (creating if necessary) the log file at path and replays it
// into an in-memory index.
func Open(path string) (*Storage, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	s := &Storage{file: f, index: make(map[string]tickloom.VersionedValue)}
	if err := s.replay(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) replay() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "seeking to start for replay")
	}
	r := bufio.NewReader(s.file)
	header := make([]byte, recordHeaderSize)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "reading record header during replay")
		}
		keyLen := binary.BigEndian.Uint32(header[0:4])
		valueLen := binary.BigEndian.Uint32(header[4:8])
		ts := int64(binary.BigEndian.Uint64(header[8:16]))

		body := make([]byte, int(keyLen)+int(valueLen))
		if _, err := io.ReadFull(r, body); err != nil {
			return errors.Wrap(err, "reading record body during replay")
		}
		key := string(body[:keyLen])
		value := append([]byte(nil), body[keyLen:]...)
		s.index[key] = tickloom.VersionedValue{Value: value, Timestamp: ts}
	}
	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrap(err, "seeking to end after replay")
	}
	return nil
}

func (s *Storage) appendRecord(key string, value tickloom.VersionedValue) error {
	header := make([]byte, recordHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(len(key)))
	binary.BigEndian.PutUint32(header[4:8], uint32(len(value.Value)))
	binary.BigEndian.PutUint64(header[8:16], uint64(value.Timestamp))

	buf := make([]byte, 0, len(header)+len(key)+len(value.Value))
	buf = append(buf, header...)
	buf = append(buf, key...)
	buf = append(buf, value.Value...)

	if _, err := s.file.Write(buf); err != nil {
		return errors.Wrap(err, "appending record")
	}
	return s.file.Sync()
}

// Get implements tickloom.Storage. It completes synchronously, inline,
// invoking cb before Get returns.
func (s *Storage) Get(key []byte, cb tickloom.StorageCallback) {
	s.mu.Lock()
	value, found := s.index[string(key)]
	s.mu.Unlock()
	cb.OnGetResult(value, found)
}

// Set implements tickloom.Storage, applying the same monotone-write
// policy as the simulated storage: overwrite only if the key is absent,
// or the existing entry's timestamp is strictly smaller. It completes
// synchronously, inline, invoking cb before Set returns.
func (s *Storage) Set(key []byte, value tickloom.VersionedValue, cb tickloom.StorageCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	existing, found := s.index[k]
	if found && existing.Timestamp >= value.Timestamp {
		cb.OnSetResult(nil)
		return
	}
	if err := s.appendRecord(k, value); err != nil {
		cb.OnSetResult(tickloom.ErrStorageFailure)
		return
	}
	s.index[k] = value
	cb.OnSetResult(nil)
}

// Tick implements tickloom.Storage. diskstorage completes operations
// synchronously, so Tick has nothing to drain; it exists only to satisfy
// the interface.
func (s *Storage) Tick() {}

// Close closes the underlying log file.
func (s *Storage) Close() error {
	return s.file.Close()
}

var _ tickloom.Storage = (*Storage)(nil)
