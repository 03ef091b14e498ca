package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/cfgview/pkg/testutil"
)

func newTestTree(t *testing.T) *TreeModel {
	t.Helper()
	fc := testutil.Chain(6)
	gm := testutil.Grouping(t, fc, [][][]int{
		{{1, 2}, {3}},
		{{4}, {5, 6}},
	})
	return NewTreeModel(gm, TestTheme())
}

func TestTreeRowLayout(t *testing.T) {
	tree := newTestTree(t)
	// header + 2 super-groups with 2 node-groups each
	if tree.Len() != 7 {
		t.Fatalf("rows = %d, want 7", tree.Len())
	}
	if tree.CurrentGroup() != nil || tree.CurrentSuperGroup() != nil {
		t.Fatal("header row should resolve to no group")
	}
	tree.MoveDown()
	if tree.CurrentSuperGroup() == nil || tree.CurrentGroup() != nil {
		t.Fatal("row 1 should be a super-group row")
	}
	tree.MoveDown()
	ng := tree.CurrentGroup()
	if ng == nil {
		t.Fatal("row 2 should be a node-group row")
	}
	if ng.FirstNode().ID != 1 {
		t.Fatalf("first group starts at node %d, want 1", ng.FirstNode().ID)
	}
}

func TestTreeCursorBounds(t *testing.T) {
	tree := newTestTree(t)
	tree.MoveUp()
	if tree.cursor != 0 {
		t.Fatal("cursor moved above top")
	}
	for i := 0; i < 20; i++ {
		tree.MoveDown()
	}
	if tree.cursor != tree.Len()-1 {
		t.Fatalf("cursor = %d, want last row %d", tree.cursor, tree.Len()-1)
	}
}

func TestTreeRebuildKeepsCursorGroup(t *testing.T) {
	tree := newTestTree(t)
	tree.MoveDown()
	tree.MoveDown()
	tree.MoveDown() // second node-group of sg 0
	ng := tree.CurrentGroup()
	if ng == nil {
		t.Fatal("expected node-group row")
	}
	tree.Rebuild()
	if tree.CurrentGroup() != ng {
		t.Fatal("rebuild lost the cursor's group")
	}
}

func TestTreeScrollWindow(t *testing.T) {
	tree := newTestTree(t)
	tree.SetHeight(3)
	for i := 0; i < 6; i++ {
		tree.MoveDown()
	}
	view := tree.View(true)
	if got := strings.Count(view, "\n"); got != 3 {
		t.Fatalf("visible rows = %d, want 3", got)
	}
	if tree.scroll != tree.cursor-2 {
		t.Fatalf("scroll = %d with cursor %d", tree.scroll, tree.cursor)
	}
}

func TestTreeViewMarksSynthetic(t *testing.T) {
	fc := testutil.Chain(4)
	// Blocks 3 and 4 are left to sanitization.
	gm := testutil.Grouping(t, fc, [][][]int{{{1, 2}}})
	tree := NewTreeModel(gm, TestTheme())
	if !strings.Contains(tree.View(true), "·") {
		t.Fatal("synthetic super-groups not marked")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate kept = %q", got)
	}
	if got := truncate("a very long label indeed", 10); got != "a very ..." {
		t.Fatalf("truncate cut = %q", got)
	}
	if got := truncate("abc", 2); got != "ab" {
		t.Fatalf("truncate tiny = %q", got)
	}
}
