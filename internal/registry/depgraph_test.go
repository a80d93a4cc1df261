package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGraph_AddRemove(t *testing.T) {
	g := NewGraph()

	g.AddDependency("a", "b")
	g.AddDependency("a", "c")
	g.AddDependency("b", "c")

	assert.Equal(t, []string{"b", "c"}, g.Dependencies("a"))
	assert.Equal(t, []string{"a", "b"}, g.Dependents("c"))
	assert.Equal(t, 3, g.EdgeCount())

	g.RemoveDependency("a", "c")
	assert.Equal(t, []string{"b"}, g.Dependencies("a"))
	assert.Equal(t, []string{"b"}, g.Dependents("c"))
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraph_AddDependency_Idempotent(t *testing.T) {
	g := NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("a", "b")

	assert.Equal(t, 1, g.EdgeCount())
}

func TestGraph_RemoveNode(t *testing.T) {
	g := NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("c", "a")
	g.AddDependency("b", "c")

	g.RemoveNode("a")

	assert.Empty(t, g.Dependencies("a"))
	assert.Empty(t, g.Dependents("a"))
	assert.Empty(t, g.Dependencies("c"))
	assert.Equal(t, []string{"c"}, g.Dependencies("b"))
}

func TestGraph_RefreshAsset(t *testing.T) {
	g := NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("x", "a")

	g.RefreshAsset("a", []string{"c", "d"})

	assert.Equal(t, []string{"c", "d"}, g.Dependencies("a"))
	assert.Empty(t, g.Dependents("b"))
	// Incoming edges survive a refresh.
	assert.Equal(t, []string{"x"}, g.Dependents("a"))
}

func TestGraph_EdgesToUnregisteredIDs(t *testing.T) {
	// The graph is id-based and does not care whether either endpoint is a
	// registered asset.
	g := NewGraph()
	g.AddDependency("known", "ghost")

	assert.Equal(t, []string{"ghost"}, g.Dependencies("known"))
	assert.Equal(t, []string{"known"}, g.Dependents("ghost"))
}

func TestGraph_TransitiveDependencies(t *testing.T) {
	g := NewGraph()
	g.AddDependency("model", "mesh")
	g.AddDependency("model", "material")
	g.AddDependency("material", "shader")
	g.AddDependency("material", "texture")

	deps := g.TransitiveDependencies("model")
	assert.ElementsMatch(t, []string{"mesh", "material", "shader", "texture"}, deps)
	// Breadth-first: direct dependencies come before their own dependencies.
	assert.Equal(t, []string{"material", "mesh"}, deps[:2])
}

func TestGraph_TransitiveDependencies_CycleSafe(t *testing.T) {
	g := NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("b", "c")
	g.AddDependency("c", "a")

	deps := g.TransitiveDependencies("a")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, deps)
}

func TestGraph_HasCycle(t *testing.T) {
	g := NewGraph()
	g.AddDependency("a", "b")
	g.AddDependency("b", "a")
	g.AddDependency("x", "y")

	assert.True(t, g.HasCycle("a"))
	assert.True(t, g.HasCycle("b"))
	assert.False(t, g.HasCycle("x"))
	assert.False(t, g.HasCycle("y"))

	// Self-dependency is the smallest cycle.
	g.AddDependency("s", "s")
	assert.True(t, g.HasCycle("s"))
}

// TestGraph_InverseMapsStayConsistent drives the graph with random
// add/remove sequences and checks the two adjacency maps remain exact
// inverses.
func TestGraph_InverseMapsStayConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGraph()
		ids := rapid.SliceOfN(rapid.StringMatching(`[a-f]`), 2, 6).Draw(t, "ids")

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			a := rapid.SampledFrom(ids).Draw(t, fmt.Sprintf("a%d", i))
			b := rapid.SampledFrom(ids).Draw(t, fmt.Sprintf("b%d", i))
			switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("op%d", i)) {
			case 0:
				g.AddDependency(a, b)
			case 1:
				g.RemoveDependency(a, b)
			case 2:
				g.RemoveNode(a)
			}
		}

		// Every forward edge has its inverse, and vice versa.
		for a, deps := range g.dependencies {
			for b := range deps {
				_, ok := g.dependents[b][a]
				if !ok {
					t.Fatalf("edge %s->%s missing inverse", a, b)
				}
			}
		}
		for b, rdeps := range g.dependents {
			for a := range rdeps {
				_, ok := g.dependencies[a][b]
				if !ok {
					t.Fatalf("inverse %s<-%s missing forward edge", b, a)
				}
			}
		}
	})
}
