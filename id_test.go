package tickloom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickloom/tickloom"
)

func TestProcessIdEqualityByName(t *testing.T) {
	a := tickloom.NewProcessId("server-1", 0)
	b := tickloom.NewProcessId("server-1", 7) // different index, same name
	c := tickloom.NewProcessId("server-2", 1)

	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
	require.Equal(t, "server-1", a.String())
}

func TestSeededIdGeneratorIsDeterministic(t *testing.T) {
	g1 := tickloom.NewSeededIdGenerator("server-1")
	g2 := tickloom.NewSeededIdGenerator("server-1")

	for i := 0; i < 5; i++ {
		require.Equal(t, g1.NewCorrelationId(), g2.NewCorrelationId())
	}
}

func TestSeededIdGeneratorProducesUniqueSequence(t *testing.T) {
	g := tickloom.NewSeededIdGenerator("server-1")
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id := g.NewCorrelationId()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestUUIDGeneratorProducesUniqueIds(t *testing.T) {
	g := tickloom.UUIDGenerator{}
	a := g.NewCorrelationId()
	b := g.NewCorrelationId()
	require.NotEqual(t, a, b)
}
