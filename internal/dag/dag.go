package dag

import (
	"fmt"
	"strings"
)

// CycleError is returned when the graph contains a cycle. Path starts and
// ends with the same node and follows dependency edges.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.order)
}

// AddEdge records that `fromID` depends on `toID`. Adding an existing edge
// again is a no-op. An error is returned if either node does not exist.
// Self-references are accepted and reported by DetectCycles.
func (g *Graph) AddEdge(fromID, toID string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if fromNode.dependsOn(toID) {
		return nil
	}
	fromNode.deps = append(fromNode.deps, toNode)
	toNode.dependents = append(toNode.dependents, fromNode)

	return nil
}

// Dependencies returns the IDs the given node depends on, in edge order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	return ids(n.deps), nil
}

// Dependents returns the IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	return ids(n.dependents), nil
}

// DetectCycles checks the graph for any cycles. Nodes are visited in
// insertion order and edges in the order they were added, so the same graph
// always reports the same *CycleError.
func (g *Graph) DetectCycles() error {
	_, err := g.walk()
	return err
}

// TopologicalSort returns every node ID ordered so that each node comes
// after all of its dependencies. Ties are broken by insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	return g.walk()
}

// walk is a three-color depth-first traversal along dependency edges. It
// returns the post-order, which is a topological order when no cycle exists.
func (g *Graph) walk() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// permanent: nodes fully visited and known not to be part of a cycle.
	// temporary: nodes on the current traversal stack.
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)
	var stack []string
	sorted := make([]string, 0, len(g.nodes))

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			// Back-edge: the cycle is the stack suffix starting at n.
			start := 0
			for i, id := range stack {
				if id == n.id {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), n.id)
			return &CycleError{Path: path}
		}

		temporary[n.id] = true
		stack = append(stack, n.id)

		for _, dep := range n.deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		delete(temporary, n.id)
		permanent[n.id] = true
		sorted = append(sorted, n.id)

		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return nil, err
		}
	}

	return sorted, nil
}

func ids(nodes []*node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.id)
	}
	return out
}
