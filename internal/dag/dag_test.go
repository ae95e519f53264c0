package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	assert.True(t, g.HasNode("b"))
	assert.Equal(t, []string{"a", "b"}, g.order)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b") // a depends on b
		require.NoError(t, err)

		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, deps)

		dependents, err := g.Dependents("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, dependents)
	})

	t.Run("duplicate edge is ignored", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "b"))

		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, deps)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		_, err = g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("diamond has no cycles", func(t *testing.T) {
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "d"))
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("simple direct cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a")) // Cycle

		err := g.DetectCycles()
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Path)
		assert.EqualError(t, err, "cycle detected: a -> b -> a")
	})

	t.Run("self reference is a cycle", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		require.NoError(t, g.AddEdge("a", "a"))

		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.Equal(t, []string{"a", "a"}, cycleErr.Path)
	})

	t.Run("cycle path excludes the entry prefix", func(t *testing.T) {
		g := New()
		for _, id := range []string{"root", "x", "y", "z"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("root", "x"))
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "x")) // Cycle back into the middle

		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.Equal(t, []string{"x", "y", "z", "x"}, cycleErr.Path)
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		// Component 2 (has a cycle)
		g.AddNode("x")
		g.AddNode("y")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "x"))

		assert.ErrorContains(t, g.DetectCycles(), "cycle detected")
	})
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	for _, id := range []string{"app", "ui", "core", "log"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("app", "ui"))
	require.NoError(t, g.AddEdge("app", "core"))
	require.NoError(t, g.AddEdge("ui", "core"))
	require.NoError(t, g.AddEdge("core", "log"))

	for i := 0; i < 5; i++ {
		sorted, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"log", "core", "ui", "app"}, sorted)
	}
}
