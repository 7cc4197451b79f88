// Package toposort orders directed graphs of names, parents before the nodes
// that depend on them. Ties resolve lexicographically so orderings stay
// stable across runs.
package toposort

import "sort"

// Graph is a directed graph keyed by node name.
type Graph struct {
	nodes map[string]map[string]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]map[string]struct{})}
}

// AddNode inserts a node and reports whether it was new.
func (g *Graph) AddNode(name string) bool {
	if _, ok := g.nodes[name]; ok {
		return false
	}

	g.nodes[name] = make(map[string]struct{})

	return true
}

// AddEdge links from to to, inserting either node as needed, and reports
// whether the edge was new.
func (g *Graph) AddEdge(from, to string) bool {
	g.AddNode(from)
	g.AddNode(to)

	if _, ok := g.nodes[from][to]; ok {
		return false
	}

	g.nodes[from][to] = struct{}{}

	return true
}

// Len returns how many nodes the graph holds.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// FindChildren returns the other ends of outgoing edges, sorted.
func (g *Graph) FindChildren(from string) []string {
	children := make([]string, 0, len(g.nodes[from]))
	for child := range g.nodes[from] {
		children = append(children, child)
	}

	sort.Strings(children)

	return children
}

// FindParents returns the other ends of incoming edges, sorted.
func (g *Graph) FindParents(to string) []string {
	var parents []string

	for name, children := range g.nodes {
		if _, ok := children[to]; ok {
			parents = append(parents, name)
		}
	}

	sort.Strings(parents)

	return parents
}

// Toposort returns the nodes parents-first. The second return is false when
// a cycle makes the ordering impossible.
func (g *Graph) Toposort() ([]string, bool) {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}

	for _, children := range g.nodes {
		for child := range children {
			inDegree[child]++
		}
	}

	ready := make([]string, 0, len(g.nodes))

	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	sort.Strings(ready)

	sorted := make([]string, 0, len(g.nodes))

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, name)

		for _, child := range g.FindChildren(name) {
			inDegree[child]--

			if inDegree[child] == 0 {
				at := sort.SearchStrings(ready, child)
				ready = append(ready, "")
				copy(ready[at+1:], ready[at:])
				ready[at] = child
			}
		}
	}

	return sorted, len(sorted) == len(g.nodes)
}

// FindCycle returns a cycle through seed, seed first, or nil when seed sits
// on none.
func (g *Graph) FindCycle(seed string) []string {
	if _, ok := g.nodes[seed]; !ok {
		return nil
	}

	var path []string

	visited := make(map[string]bool, len(g.nodes))
	visited[seed] = true

	var walk func(name string) bool
	walk = func(name string) bool {
		path = append(path, name)

		for _, child := range g.FindChildren(name) {
			if child == seed {
				return true
			}

			if !visited[child] {
				visited[child] = true

				if walk(child) {
					return true
				}
			}
		}

		path = path[:len(path)-1]

		return false
	}

	if walk(seed) {
		return path
	}

	return nil
}
