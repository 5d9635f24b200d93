// Package depgraph renders an extracted object graph (pkg/mirror.Extract's
// output) as a dominikbraun/graph directed graph, for the CLI's "graph"
// diagnostic command. Grounded on mvp-joe-project-cortex's internal/graph
// searcher, which builds a graph.Graph[string, *Node] the same way: one
// AddVertex per discovered node, one AddEdge per discovered reference.
package depgraph

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Node is one object in the rendered graph: its id and typename, the two
// fields every extracted object carries regardless of schema.
type Node struct {
	ID       string
	Typename string
}

func hash(n Node) string { return n.ID }

// Build walks root (the shape returned by pkg/mirror.Extract) and produces a
// directed graph.Graph of every reachable object and every link/connection
// edge between them, without needing the schema: it recognizes object
// references and connections by their JSON shape.
func Build(root map[string]any) (graph.Graph[string, Node], error) {
	g := graph.New(hash, graph.Directed(), graph.PreventCycles())

	visited := make(map[string]bool)
	var walk func(obj map[string]any) error
	walk = func(obj map[string]any) error {
		id, ok := asObjectRef(obj)
		if !ok {
			return fmt.Errorf("depgraph: expected an object with id/__typename")
		}
		if visited[id] {
			return nil
		}
		visited[id] = true

		typename, _ := obj["__typename"].(string)
		if err := g.AddVertex(Node{ID: id, Typename: typename}); err != nil && err != graph.ErrVertexAlreadyExists {
			return fmt.Errorf("depgraph: adding vertex %q: %w", id, err)
		}

		for key, value := range obj {
			if key == "id" || key == "__typename" {
				continue
			}
			if err := walkValue(g, id, value, visited, walk); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return g, nil
}

func walkValue(g graph.Graph[string, Node], parentID string, value any, visited map[string]bool, walk func(map[string]any) error) error {
	switch v := value.(type) {
	case map[string]any:
		if childID, ok := asObjectRef(v); ok {
			if err := walk(v); err != nil {
				return err
			}
			return addEdge(g, parentID, childID)
		}
		// A nested group (not itself an object): recurse into its own
		// fields for nested-egg links.
		for _, nested := range v {
			if err := walkValue(g, parentID, nested, visited, walk); err != nil {
				return err
			}
		}
	case []any:
		// A connection field: the plain ordered list of resolved entries.
		for _, n := range v {
			child, ok := n.(map[string]any)
			if !ok {
				continue // a null connection entry: no edge.
			}
			childID, ok := asObjectRef(child)
			if !ok {
				continue
			}
			if err := walk(child); err != nil {
				return err
			}
			if err := addEdge(g, parentID, childID); err != nil {
				return err
			}
		}
	}
	return nil
}

// HasCycle reports whether root contains a self-referential object cycle
// reachable through ordinary link/connection fields -- the shape that a
// tree-structured encoding like JSON cannot represent, since it has no
// notion of a back-reference. Unlike Build, which silently drops any edge
// that would close a cycle, this walks with an explicit call stack so it
// can actually detect one.
func HasCycle(root map[string]any) bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	return objectHasCycle(root, visited, onStack)
}

func objectHasCycle(obj map[string]any, visited, onStack map[string]bool) bool {
	id, ok := asObjectRef(obj)
	if !ok {
		return false
	}
	if onStack[id] {
		return true
	}
	if visited[id] {
		return false
	}
	visited[id] = true
	onStack[id] = true
	defer delete(onStack, id)

	for key, value := range obj {
		if key == "id" || key == "__typename" {
			continue
		}
		if valueHasCycle(value, visited, onStack) {
			return true
		}
	}
	return false
}

func valueHasCycle(value any, visited, onStack map[string]bool) bool {
	switch v := value.(type) {
	case map[string]any:
		if _, ok := asObjectRef(v); ok {
			return objectHasCycle(v, visited, onStack)
		}
		for _, nested := range v {
			if valueHasCycle(nested, visited, onStack) {
				return true
			}
		}
	case []any:
		for _, n := range v {
			if child, ok := n.(map[string]any); ok && valueHasCycle(child, visited, onStack) {
				return true
			}
		}
	}
	return false
}

func addEdge(g graph.Graph[string, Node], from, to string) error {
	if err := g.AddEdge(from, to); err != nil && err != graph.ErrEdgeAlreadyExists && err != graph.ErrEdgeCreatesCycle {
		return fmt.Errorf("depgraph: adding edge %s -> %s: %w", from, to, err)
	}
	return nil
}

func asObjectRef(v map[string]any) (string, bool) {
	rawID, ok := v["id"]
	if !ok {
		return "", false
	}
	id, ok := rawID.(string)
	if !ok {
		return "", false
	}
	if _, ok := v["__typename"]; !ok {
		return "", false
	}
	return id, true
}

// WriteDOT renders g as Graphviz DOT text, for `graphmirror graph --out`.
func WriteDOT(g graph.Graph[string, Node], w io.Writer) error {
	return draw.DOT(g, w)
}
