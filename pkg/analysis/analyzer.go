// Package analysis computes structural metrics over a function flowchart:
// degrees, entry/exit blocks, topological order, loop detection via
// strongly connected components, immediate dominators, and BFS depth
// levels. The UI surfaces these as the insights panel and the export
// renderer uses the levels for layout.
package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/flow"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/cfgview/pkg/model"
)

// Stats holds the results of one flowchart analysis. All fields are
// read-only after Analyze returns.
type Stats struct {
	NodeCount int
	EdgeCount int
	Density   float64

	InDegree  map[int]int
	OutDegree map[int]int

	// EntryBlocks have no predecessors, ExitBlocks no successors.
	// Self loops do not count toward either.
	EntryBlocks []int
	ExitBlocks  []int

	// TopoOrder is a topological order of the blocks, nil when the
	// flowchart has loops.
	TopoOrder []int

	// Loops lists the blocks of each strongly connected component with
	// more than one member, plus single blocks that branch to themselves.
	// Each loop is sorted by block id; loops are ordered by first member.
	Loops [][]int

	// IDom maps each reachable block to its immediate dominator. The
	// entry block is absent.
	IDom map[int]int

	// Levels maps each block reachable from the entry to its BFS depth.
	// Unreachable blocks are absent.
	Levels map[int]int

	// Depth is the number of BFS levels, 0 for an empty flowchart.
	Depth int
}

// Analyze computes all metrics for the given flowchart.
func Analyze(fc *model.Flowchart) *Stats {
	stats := &Stats{
		InDegree:  make(map[int]int),
		OutDegree: make(map[int]int),
		IDom:      make(map[int]int),
		Levels:    make(map[int]int),
		NodeCount: fc.Size(),
	}
	if fc.Size() == 0 {
		return stats
	}

	// gonum's simple graphs reject self edges, so those are tracked on
	// the side and folded back into the loop report.
	g := simple.NewDirectedGraph()
	for _, id := range fc.BlockIDs() {
		g.AddNode(simple.Node(int64(id)))
		stats.InDegree[id] = 0
		stats.OutDegree[id] = 0
	}
	selfLoop := make(map[int]bool)
	for _, e := range fc.Edges() {
		stats.EdgeCount++
		if e.From == e.To {
			selfLoop[e.From] = true
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(int64(e.From)), g.Node(int64(e.To))))
		stats.OutDegree[e.From]++
		stats.InDegree[e.To]++
	}

	n := float64(stats.NodeCount)
	if n > 1 {
		stats.Density = float64(stats.EdgeCount) / (n * (n - 1))
	}

	for _, id := range fc.BlockIDs() {
		if stats.InDegree[id] == 0 {
			stats.EntryBlocks = append(stats.EntryBlocks, id)
		}
		if stats.OutDegree[id] == 0 {
			stats.ExitBlocks = append(stats.ExitBlocks, id)
		}
	}
	sort.Ints(stats.EntryBlocks)
	sort.Ints(stats.ExitBlocks)

	// Topological order exists only for loop-free flowcharts. Self loops
	// disqualify it too, even though the reduced graph is acyclic.
	if sorted, err := topo.Sort(g); err == nil && len(selfLoop) == 0 {
		for _, node := range sorted {
			stats.TopoOrder = append(stats.TopoOrder, int(node.ID()))
		}
	}

	stats.Loops = findLoops(g, selfLoop)

	entry := fc.Entry()
	if entry != -1 {
		dt := flow.Dominators(g.Node(int64(entry)), g)
		for _, id := range fc.BlockIDs() {
			if id == entry {
				continue
			}
			if dom := dt.DominatorOf(int64(id)); dom != nil {
				stats.IDom[id] = int(dom.ID())
			}
		}
		stats.Levels, stats.Depth = bfsLevels(fc, entry)
	}

	return stats
}

// findLoops reports strongly connected components of size > 1 and
// self-looping blocks as single-member loops.
func findLoops(g *simple.DirectedGraph, selfLoop map[int]bool) [][]int {
	var loops [][]int
	inMulti := make(map[int]bool)

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		loop := make([]int, 0, len(scc))
		for _, node := range scc {
			id := int(node.ID())
			loop = append(loop, id)
			inMulti[id] = true
		}
		sort.Ints(loop)
		loops = append(loops, loop)
	}
	for id := range selfLoop {
		if !inMulti[id] {
			loops = append(loops, []int{id})
		}
	}

	sort.Slice(loops, func(i, j int) bool {
		return loops[i][0] < loops[j][0]
	})
	return loops
}

// bfsLevels assigns each block reachable from entry its breadth-first
// depth, following the flowchart's own successor lists so self loops are
// included in the traversal (they simply never extend it).
func bfsLevels(fc *model.Flowchart, entry int) (map[int]int, int) {
	levels := map[int]int{entry: 0}
	queue := []int{entry}
	depth := 1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range fc.Successors(cur) {
			if _, seen := levels[next]; seen {
				continue
			}
			levels[next] = levels[cur] + 1
			if levels[next]+1 > depth {
				depth = levels[next] + 1
			}
			queue = append(queue, next)
		}
	}
	return levels, depth
}

// Unreachable returns the blocks the entry cannot reach, sorted.
func (s *Stats) Unreachable(fc *model.Flowchart) []int {
	var out []int
	for _, id := range fc.BlockIDs() {
		if _, ok := s.Levels[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Insights renders the human-readable summary lines shown in the UI.
func (s *Stats) Insights(fc *model.Flowchart) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%d blocks, %d edges, density %.3f", s.NodeCount, s.EdgeCount, s.Density))

	if entry := fc.Entry(); entry != -1 {
		b := fc.Block(entry)
		lines = append(lines, fmt.Sprintf("entry block %d at %x", entry, b.Start))
	}
	if len(s.ExitBlocks) > 0 {
		lines = append(lines, fmt.Sprintf("%d exit block(s)", len(s.ExitBlocks)))
	}
	switch len(s.Loops) {
	case 0:
		lines = append(lines, "no loops")
	case 1:
		lines = append(lines, fmt.Sprintf("1 loop (%d blocks)", len(s.Loops[0])))
	default:
		lines = append(lines, fmt.Sprintf("%d loops", len(s.Loops)))
	}
	if unreachable := s.Unreachable(fc); len(unreachable) > 0 {
		lines = append(lines, fmt.Sprintf("%d unreachable block(s): %v", len(unreachable), unreachable))
	}
	lines = append(lines, fmt.Sprintf("depth %d", s.Depth))
	return lines
}
