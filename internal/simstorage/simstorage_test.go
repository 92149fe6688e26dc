package simstorage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickloom/tickloom"
	"github.com/tickloom/tickloom/internal/simstorage"
)

type capturingCallback struct {
	value tickloom.VersionedValue
	found bool
	err   error
	calls int
}

func (c *capturingCallback) OnGetResult(value tickloom.VersionedValue, found bool) {
	c.value, c.found, c.calls = value, found, c.calls+1
}
func (c *capturingCallback) OnSetResult(err error) { c.err, c.calls = err, c.calls+1 }
func (c *capturingCallback) OnError(err error)     { c.err, c.calls = err, c.calls+1 }

func TestGetSetCompleteAfterDelay(t *testing.T) {
	s := simstorage.New(1, tickloom.StorageConfig{DelayTicks: 2})

	setCb := &capturingCallback{}
	s.Set([]byte("k"), tickloom.VersionedValue{Value: []byte("v"), Timestamp: 10}, setCb)
	s.Tick()
	require.Zero(t, setCb.calls)
	s.Tick()
	require.Equal(t, 1, setCb.calls)
	require.NoError(t, setCb.err)

	getCb := &capturingCallback{}
	s.Get([]byte("k"), getCb)
	s.Tick()
	require.Zero(t, getCb.calls)
	s.Tick()
	require.True(t, getCb.found)
	require.Equal(t, []byte("v"), getCb.value.Value)
}

func TestMonotoneWritePolicyRejectsOlderTimestamp(t *testing.T) {
	s := simstorage.New(1, tickloom.StorageConfig{})

	cb1 := &capturingCallback{}
	s.Set([]byte("k"), tickloom.VersionedValue{Value: []byte("X"), Timestamp: 200}, cb1)
	s.Tick()
	require.NoError(t, cb1.err)

	cb2 := &capturingCallback{}
	s.Set([]byte("k"), tickloom.VersionedValue{Value: []byte("Y"), Timestamp: 100}, cb2)
	s.Tick()
	require.NoError(t, cb2.err, "a lower-timestamp write is acknowledged, not overwritten")

	getCb := &capturingCallback{}
	s.Get([]byte("k"), getCb)
	s.Tick()
	require.Equal(t, []byte("X"), getCb.value.Value)
}

func TestFailureRateOneAlwaysFails(t *testing.T) {
	s := simstorage.New(1, tickloom.StorageConfig{FailureRate: 1.0})
	cb := &capturingCallback{}
	s.Set([]byte("k"), tickloom.VersionedValue{Value: []byte("v"), Timestamp: 1}, cb)
	s.Tick()
	require.ErrorIs(t, cb.err, tickloom.ErrStorageFailure)
}

func TestGetOnAbsentKey(t *testing.T) {
	s := simstorage.New(1, tickloom.StorageConfig{})
	cb := &capturingCallback{}
	s.Get([]byte("missing"), cb)
	s.Tick()
	require.False(t, cb.found)
}
