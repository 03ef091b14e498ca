// Package testutil provides deterministic flowchart and grouping fixtures
// for tests across the repository.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// BaseAddress is the start address of the first generated block.
const BaseAddress uint64 = 0x401000

// BlockSize is the address span of every generated block.
const BlockSize uint64 = 0x10

// Flowchart builds a flowchart with blocks 1..n and the given edges.
// Block i spans [BaseAddress+(i-1)*BlockSize, +BlockSize).
func Flowchart(n int, edges [][2]int) *model.Flowchart {
	fc := model.NewFlowchart(fmt.Sprintf("sub_%x", BaseAddress))
	for i := 1; i <= n; i++ {
		start := BaseAddress + uint64(i-1)*BlockSize
		fc.AddBlock(model.BasicBlock{ID: i, Start: start, End: start + BlockSize})
	}
	for _, e := range edges {
		fc.AddEdge(e[0], e[1])
	}
	return fc
}

// Chain builds a linear flowchart 1 -> 2 -> ... -> n.
func Chain(n int) *model.Flowchart {
	var edges [][2]int
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return Flowchart(n, edges)
}

// Diamond builds the four-block diamond 1 -> {2,3} -> 4.
func Diamond() *model.Flowchart {
	return Flowchart(4, [][2]int{{1, 2}, {1, 3}, {2, 4}, {3, 4}})
}

// Grouping builds a sanitized group manager over fc. Each entry of
// partitions is one super-group; each inner slice is one node-group of
// block ids. Blocks left out of every partition get synthetic wrappers
// from sanitization.
func Grouping(t *testing.T, fc *model.Flowchart, partitions [][][]int) *groupman.Manager {
	t.Helper()

	var b strings.Builder
	b.WriteString("supergroups:\n")
	for si, groups := range partitions {
		fmt.Fprintf(&b, "  - id: sg_%d\n    name: Group %d\n    groups:\n", si, si)
		for _, group := range groups {
			for i, id := range group {
				blk := fc.Block(id)
				if blk == nil {
					t.Fatalf("partition references unknown block %d", id)
				}
				indent := "        "
				if i == 0 {
					indent = "      - "
				}
				fmt.Fprintf(&b, "%s- {id: %d, start: %d, end: %d}\n", indent, id, blk.Start, blk.End)
			}
		}
	}

	gm, err := groupman.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("building grouping fixture: %v", err)
	}
	if err := gm.Sanitize(fc); err != nil {
		t.Fatalf("sanitizing grouping fixture: %v", err)
	}
	return gm
}

// AssertBlockOwnership verifies that every flowchart block is owned by
// exactly one node-group in the manager.
func AssertBlockOwnership(t *testing.T, fc *model.Flowchart, gm *groupman.Manager) {
	t.Helper()
	for _, id := range fc.BlockIDs() {
		if gm.FindNodeLoc(id) == nil {
			t.Errorf("block %d not owned by any group", id)
		}
	}
	if gm.NodeCount() != fc.Size() {
		t.Errorf("manager owns %d nodes, flowchart has %d blocks", gm.NodeCount(), fc.Size())
	}
}
