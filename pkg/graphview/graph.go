package graphview

import (
	"sort"

	"github.com/vanderheijden86/cfgview/pkg/model"
)

// MutableGraph is the node/edge set a rendering surface lays out. The
// projectors clear and repopulate it on every structural rebuild; node ids
// in it are rendering ids and mean nothing across rebuilds.
//
// Self-edges are allowed (a basic block can jump to itself); duplicate
// edges are collapsed.
type MutableGraph struct {
	ids     []int
	present map[int]bool
	succs   map[int][]int
	edges   map[model.Edge]bool
}

// NewMutableGraph returns an empty graph.
func NewMutableGraph() *MutableGraph {
	g := &MutableGraph{}
	g.Clear()
	return g
}

// Clear removes every node and edge.
func (g *MutableGraph) Clear() {
	g.ids = g.ids[:0]
	g.present = make(map[int]bool)
	g.succs = make(map[int][]int)
	g.edges = make(map[model.Edge]bool)
}

// AddNode registers a rendering node id. Adding an existing id is a no-op.
func (g *MutableGraph) AddNode(id int) {
	if g.present[id] {
		return
	}
	g.present[id] = true
	g.ids = append(g.ids, id)
}

// AddEdge registers a directed edge between two known nodes. Unknown
// endpoints and duplicates are ignored.
func (g *MutableGraph) AddEdge(from, to int) {
	if !g.present[from] || !g.present[to] {
		return
	}
	e := model.Edge{From: from, To: to}
	if g.edges[e] {
		return
	}
	g.edges[e] = true
	g.succs[from] = append(g.succs[from], to)
}

// HasNode reports whether id is part of the graph.
func (g *MutableGraph) HasNode(id int) bool {
	return g.present[id]
}

// HasEdge reports whether the directed edge exists.
func (g *MutableGraph) HasEdge(from, to int) bool {
	return g.edges[model.Edge{From: from, To: to}]
}

// NodeCount returns the number of nodes.
func (g *MutableGraph) NodeCount() int {
	return len(g.ids)
}

// EdgeCount returns the number of distinct edges.
func (g *MutableGraph) EdgeCount() int {
	return len(g.edges)
}

// NodeIDs returns all rendering node ids, sorted ascending.
func (g *MutableGraph) NodeIDs() []int {
	out := make([]int, len(g.ids))
	copy(out, g.ids)
	sort.Ints(out)
	return out
}

// Successors returns the successors of id in insertion order.
func (g *MutableGraph) Successors(id int) []int {
	return g.succs[id]
}

// EdgeList returns every edge ordered by (from, to).
func (g *MutableGraph) EdgeList() []model.Edge {
	out := make([]model.Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
