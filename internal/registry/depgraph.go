package registry

import (
	"sort"
)

// Graph is the registry's dependency cache: two adjacency maps kept as exact
// inverses of each other. Edges are derived from asset metadata and may point
// at identifiers that are not (or not yet) registered. Cycles are tolerated;
// single-hop queries cannot loop, and the transitive queries carry their own
// visited sets.
type Graph struct {
	dependencies map[string]map[string]struct{}
	dependents   map[string]map[string]struct{}
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		dependencies: make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
	}
}

// AddDependency records that a depends on b.
func (g *Graph) AddDependency(a, b string) {
	if a == "" || b == "" {
		return
	}
	if g.dependencies[a] == nil {
		g.dependencies[a] = make(map[string]struct{})
	}
	g.dependencies[a][b] = struct{}{}

	if g.dependents[b] == nil {
		g.dependents[b] = make(map[string]struct{})
	}
	g.dependents[b][a] = struct{}{}
}

// RemoveDependency removes the a-depends-on-b edge from both maps.
func (g *Graph) RemoveDependency(a, b string) {
	if deps, ok := g.dependencies[a]; ok {
		delete(deps, b)
		if len(deps) == 0 {
			delete(g.dependencies, a)
		}
	}
	if rdeps, ok := g.dependents[b]; ok {
		delete(rdeps, a)
		if len(rdeps) == 0 {
			delete(g.dependents, b)
		}
	}
}

// RemoveNode removes every edge touching id, in both directions.
func (g *Graph) RemoveNode(id string) {
	for dep := range g.dependencies[id] {
		g.RemoveDependency(id, dep)
	}
	for dependent := range g.dependents[id] {
		g.RemoveDependency(dependent, id)
	}
	delete(g.dependencies, id)
	delete(g.dependents, id)
}

// RefreshAsset replaces id's outgoing edges with the given dependency list.
// Incoming edges (other assets depending on id) are untouched.
func (g *Graph) RefreshAsset(id string, deps []string) {
	for dep := range g.dependencies[id] {
		g.RemoveDependency(id, dep)
	}
	for _, dep := range deps {
		g.AddDependency(id, dep)
	}
}

// Clear drops every edge.
func (g *Graph) Clear() {
	g.dependencies = make(map[string]map[string]struct{})
	g.dependents = make(map[string]map[string]struct{})
}

// Dependencies returns id's direct dependencies, sorted.
func (g *Graph) Dependencies(id string) []string {
	return sortedSet(g.dependencies[id])
}

// Dependents returns the assets that directly depend on id, sorted.
func (g *Graph) Dependents(id string) []string {
	return sortedSet(g.dependents[id])
}

// EdgeCount returns the total number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.dependencies {
		n += len(deps)
	}
	return n
}

// TransitiveDependencies returns everything id depends on, directly or
// indirectly, in breadth-first order. The visited set makes this safe in the
// presence of cycles; id itself is excluded unless it participates in one.
func (g *Graph) TransitiveDependencies(id string) []string {
	visited := make(map[string]bool)
	var out []string

	queue := g.Dependencies(id)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		out = append(out, cur)
		queue = append(queue, g.Dependencies(cur)...)
	}
	return out
}

// HasCycle reports whether id sits on a dependency cycle.
func (g *Graph) HasCycle(id string) bool {
	return g.reachableFrom(id, id)
}

// reachableFrom reports whether target is reachable by following dependency
// edges starting from from's dependencies.
func (g *Graph) reachableFrom(from, target string) bool {
	visited := make(map[string]bool)
	stack := g.Dependencies(from)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		stack = append(stack, g.Dependencies(cur)...)
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
