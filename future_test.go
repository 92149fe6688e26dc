package tickloom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickloom/tickloom"
)

func TestFutureCompletesSuccessOnce(t *testing.T) {
	f := tickloom.NewFuture[int]()
	var got []int
	f.OnSuccess(func(v int) { got = append(got, v) })

	f.Complete(1)
	f.Complete(2) // ignored, already completed

	require.True(t, f.IsCompleted())
	require.Equal(t, []int{1}, got)
}

func TestFutureOnSuccessAfterCompletionRunsInline(t *testing.T) {
	f := tickloom.CompletedFuture(42)
	var got int
	f.OnSuccess(func(v int) { got = v })
	require.Equal(t, 42, got)
}

func TestFutureOnFailure(t *testing.T) {
	f := tickloom.FailedFuture[int](tickloom.ErrRequestTimeout)
	var got error
	f.OnFailure(func(err error) { got = err })
	require.ErrorIs(t, got, tickloom.ErrRequestTimeout)
}

func TestFutureHandleRunsExactlyOnce(t *testing.T) {
	f := tickloom.NewFuture[string]()
	calls := 0
	f.Handle(func(string, error) { calls++ })
	f.Complete("a")
	f.Complete("b")
	f.CompleteError(tickloom.ErrShutdown)
	require.Equal(t, 1, calls)
}

func TestAndThenChains(t *testing.T) {
	f := tickloom.CompletedFuture(2)
	g := tickloom.AndThen(f, func(v int) *tickloom.ListenableFuture[int] {
		return tickloom.CompletedFuture(v * 10)
	})
	var got int
	g.OnSuccess(func(v int) { got = v })
	require.Equal(t, 20, got)
}

func TestAndThenPropagatesError(t *testing.T) {
	f := tickloom.FailedFuture[int](tickloom.ErrStorageFailure)
	called := false
	g := tickloom.AndThen(f, func(v int) *tickloom.ListenableFuture[int] {
		called = true
		return tickloom.CompletedFuture(v)
	})
	var got error
	g.OnFailure(func(err error) { got = err })
	require.False(t, called)
	require.ErrorIs(t, got, tickloom.ErrStorageFailure)
}
