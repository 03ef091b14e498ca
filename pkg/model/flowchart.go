package model

import "sort"

// BasicBlock is one vertex of the function flowchart. Block ids are the
// stable node-definition ids; in the single (ungrouped) projection they
// double as rendering node ids.
type BasicBlock struct {
	ID    int    `json:"id"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Edge is a directed control-flow edge between two block ids.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Flowchart is the control-flow graph of one function, as produced by the
// external extraction tool. It is read-only once loaded; the viewer only
// projects it.
type Flowchart struct {
	Title  string
	blocks map[int]*BasicBlock
	order  []int         // block ids in insertion order
	succs  map[int][]int // adjacency, deduplicated, stable order
}

// NewFlowchart returns an empty flowchart with the given title.
func NewFlowchart(title string) *Flowchart {
	return &Flowchart{
		Title:  title,
		blocks: make(map[int]*BasicBlock),
		succs:  make(map[int][]int),
	}
}

// AddBlock registers a basic block. Re-adding an id overwrites the address
// range but keeps the original position in iteration order.
func (fc *Flowchart) AddBlock(b BasicBlock) {
	if _, ok := fc.blocks[b.ID]; !ok {
		fc.order = append(fc.order, b.ID)
	}
	blk := b
	fc.blocks[b.ID] = &blk
}

// AddEdge registers a control-flow edge. Duplicate edges are ignored.
// Edges referring to unknown blocks are ignored as well; the extraction
// tool occasionally emits edges into stripped-out padding blocks.
func (fc *Flowchart) AddEdge(from, to int) {
	if _, ok := fc.blocks[from]; !ok {
		return
	}
	if _, ok := fc.blocks[to]; !ok {
		return
	}
	for _, s := range fc.succs[from] {
		if s == to {
			return
		}
	}
	fc.succs[from] = append(fc.succs[from], to)
}

// Block returns the block with the given id, or nil.
func (fc *Flowchart) Block(id int) *BasicBlock {
	return fc.blocks[id]
}

// Size returns the number of basic blocks.
func (fc *Flowchart) Size() int {
	return len(fc.blocks)
}

// BlockIDs returns all block ids in insertion order.
func (fc *Flowchart) BlockIDs() []int {
	out := make([]int, len(fc.order))
	copy(out, fc.order)
	return out
}

// Successors returns the successor block ids of id, in insertion order.
func (fc *Flowchart) Successors(id int) []int {
	return fc.succs[id]
}

// Edges returns every control-flow edge, ordered by (from, to) so callers
// get deterministic output.
func (fc *Flowchart) Edges() []Edge {
	var out []Edge
	for from, tos := range fc.succs {
		for _, to := range tos {
			out = append(out, Edge{From: from, To: to})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Entry returns the id of the entry block: the block with the lowest start
// address. Returns -1 for an empty flowchart.
func (fc *Flowchart) Entry() int {
	entry := -1
	var lowest uint64
	for id, b := range fc.blocks {
		if entry == -1 || b.Start < lowest {
			entry = id
			lowest = b.Start
		}
	}
	return entry
}
