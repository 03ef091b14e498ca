package testutil

import "testing"

func TestChain(t *testing.T) {
	fc := Chain(4)
	if fc.Size() != 4 || len(fc.Edges()) != 3 {
		t.Fatalf("chain shape: %d blocks, %d edges", fc.Size(), len(fc.Edges()))
	}
	if fc.Entry() != 1 {
		t.Errorf("entry = %d", fc.Entry())
	}
}

func TestGroupingCoversAllBlocks(t *testing.T) {
	fc := Diamond()
	// Blocks 3 and 4 are left to sanitization.
	gm := Grouping(t, fc, [][][]int{
		{{1, 2}},
	})
	AssertBlockOwnership(t, fc, gm)

	synthetic := 0
	for _, sg := range gm.PathList() {
		if sg.Synthetic {
			synthetic++
		}
	}
	if synthetic != 2 {
		t.Errorf("synthetic supergroups = %d, want 2", synthetic)
	}
}
