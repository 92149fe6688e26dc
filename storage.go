package tickloom

// VersionedValue is a value tagged with the timestamp it was written at,
// used for last-writer-wins resolution (spec §6).
type VersionedValue struct {
	Value     []byte
	Timestamp int64
}

// StorageCallback receives the outcome of an asynchronous Storage
// operation (spec §4.7).
type StorageCallback interface {
	OnGetResult(value VersionedValue, found bool)
	OnSetResult(err error)
	OnError(err error)
}

// Storage is the key/value backing a replica (spec §4.7). Every operation
// is callback-based rather than blocking, so that simulated and real
// storage present the same calling convention to a Replica. internal/simstorage
// queues every completion to be drained on a later (or the same) Tick, so
// that simulated runs stay deterministic and reproducible under the driver's
// tick order. A real, synchronous backend (internal/diskstorage) is free to
// invoke the callback inline, before Get/Set returns, since real file I/O
// has no tick schedule to respect; Tick is then a no-op for that backend.
type Storage interface {
	// Get asynchronously reads key, invoking cb.OnGetResult with the
	// stored VersionedValue and found=true if key is present, or
	// found=false if it is absent. A backend failure invokes cb.OnError
	// with ErrStorageFailure instead.
	Get(key []byte, cb StorageCallback)

	// Set asynchronously writes value under key with the given timestamp,
	// applying the monotone-write policy (spec §6: only overwrite if
	// absent, or if the existing entry's timestamp is strictly smaller).
	// cb.OnSetResult is invoked with nil on success (including the no-op
	// case where an existing, newer value was kept). A backend failure
	// reports ErrStorageFailure through cb.OnError (internal/simstorage) or
	// as cb.OnSetResult's argument (internal/diskstorage).
	Set(key []byte, value VersionedValue, cb StorageCallback)

	// Tick advances the storage by one logical tick, invoking callbacks
	// for operations whose completion tick has arrived.
	Tick()

	// Close releases resources held by the storage backend.
	Close() error
}
