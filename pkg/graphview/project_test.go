package graphview

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// drawModel generates a random flowchart plus a grouping that partitions
// its blocks, two node-groups per super-group.
func drawModel(t *rapid.T) (*model.Flowchart, *groupman.Manager) {
	n := rapid.IntRange(1, 12).Draw(t, "blocks")

	fc := model.NewFlowchart("fuzz")
	for i := 1; i <= n; i++ {
		start := uint64(0x400000 + (i-1)*0x10)
		fc.AddBlock(model.BasicBlock{ID: i, Start: start, End: start + 0x10})
	}
	edgeCount := rapid.IntRange(0, 2*n).Draw(t, "edges")
	for i := 0; i < edgeCount; i++ {
		from := rapid.IntRange(1, n).Draw(t, "from")
		to := rapid.IntRange(1, n).Draw(t, "to")
		fc.AddEdge(from, to)
	}

	k := rapid.IntRange(1, n).Draw(t, "partitions")
	buckets := make([][]int, k)
	for i := 1; i <= n; i++ {
		g := rapid.IntRange(0, k-1).Draw(t, "bucket")
		buckets[g] = append(buckets[g], i)
	}

	var b strings.Builder
	b.WriteString("supergroups:\n")
	open := false
	sgNum := 0
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		if !open {
			fmt.Fprintf(&b, "  - id: sg_%d\n    groups:\n", sgNum)
			sgNum++
		}
		b.WriteString("      - ")
		for i, id := range bucket {
			if i > 0 {
				b.WriteString("        ")
			}
			blk := fc.Block(id)
			fmt.Fprintf(&b, "- {id: %d, start: %d, end: %d}\n", id, blk.Start, blk.End)
		}
		open = !open
	}

	gm, err := groupman.Parse([]byte(b.String()))
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, b.String())
	}
	if err := gm.Sanitize(fc); err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	return fc, gm
}

func TestCombinedProjectionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fc, gm := drawModel(t)
		sess := NewSession(fc, gm, config.Default(), nil)
		surf := &fakeSurface{sess: sess, mg: NewMutableGraph()}
		sess.Attach(surf)

		groups := 0
		for _, sg := range gm.PathList() {
			groups += sg.GroupCount()
		}
		if got := surf.mg.NodeCount(); got != groups {
			t.Fatalf("node count = %d, want one per group (%d)", got, groups)
		}

		// Rendering ids and group handles resolve both ways.
		seen := make(map[int]bool)
		for _, sg := range gm.PathList() {
			for _, ng := range sg.Groups {
				id := sess.ResolveID(ng)
				if id == -1 {
					t.Fatalf("group of %s not resolvable", sg.ID)
				}
				if seen[id] {
					t.Fatalf("rendering id %d assigned twice", id)
				}
				seen[id] = true
				if sess.GroupForID(id) != ng {
					t.Fatalf("reverse resolution broken for id %d", id)
				}
			}
		}

		// Every rendered edge crosses a group boundary, and every
		// cross-group flowchart edge is rendered.
		for _, e := range surf.mg.EdgeList() {
			if sess.GroupForID(e.From) == sess.GroupForID(e.To) {
				t.Fatalf("intra-group edge %d->%d rendered", e.From, e.To)
			}
		}
		for _, e := range fc.Edges() {
			fromNG := gm.FindNodeLoc(e.From).NG
			toNG := gm.FindNodeLoc(e.To).NG
			if fromNG == toNG {
				continue
			}
			if !surf.mg.HasEdge(sess.ResolveID(fromNG), sess.ResolveID(toNG)) {
				t.Fatalf("cross-group edge %d->%d not rendered", e.From, e.To)
			}
		}
	})
}

func TestSingleProjectionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fc, gm := drawModel(t)
		sess := NewSession(fc, gm, config.Default(), nil)
		surf := &fakeSurface{sess: sess, mg: NewMutableGraph()}
		sess.Attach(surf)
		sess.RedoLayout(RefreshSingle)

		if got := surf.mg.NodeCount(); got != fc.Size() {
			t.Fatalf("node count = %d, want one per block (%d)", got, fc.Size())
		}
		if got := surf.mg.EdgeCount(); got != len(fc.Edges()) {
			t.Fatalf("edge count = %d, want %d", got, len(fc.Edges()))
		}
		for _, e := range fc.Edges() {
			if !surf.mg.HasEdge(e.From, e.To) {
				t.Fatalf("edge %d->%d not rendered", e.From, e.To)
			}
		}
	})
}

// Switching modes back and forth must reproduce the same structure:
// projections are pure functions of the model and the mode.
func TestModeSwitchIsStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fc, gm := drawModel(t)
		sess := NewSession(fc, gm, config.Default(), nil)
		surf := &fakeSurface{sess: sess, mg: NewMutableGraph()}
		sess.Attach(surf)

		nodes, edges := surf.mg.NodeCount(), surf.mg.EdgeCount()
		first := surf.mg.EdgeList()

		sess.RedoLayout(RefreshSingle)
		sess.RedoLayout(RefreshCombined)

		if surf.mg.NodeCount() != nodes || surf.mg.EdgeCount() != edges {
			t.Fatalf("combined projection changed shape across a mode round trip")
		}
		second := surf.mg.EdgeList()
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("edge %d differs after mode round trip: %v vs %v", i, first[i], second[i])
			}
		}
	})
}

func TestToggleSequenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fc, gm := drawModel(t)
		sess := NewSession(fc, gm, config.Default(), nil)
		surf := &fakeSurface{sess: sess, mg: NewMutableGraph()}
		sess.Attach(surf)

		ids := surf.mg.NodeIDs()
		toggles := rapid.SliceOfN(rapid.SampledFrom(ids), 0, 30).Draw(t, "toggles")

		odd := make(map[int]int)
		for _, id := range toggles {
			sess.ToggleSelect(id, true)
			odd[id]++
		}

		want := 0
		for id, n := range odd {
			if n%2 == 1 {
				want++
				if _, clr, _ := sess.NodeText(id); clr != SelectionColor {
					t.Fatalf("id %d toggled %d times but not selected", id, n)
				}
			} else {
				if _, clr, _ := sess.NodeText(id); !clr.IsZero() {
					t.Fatalf("id %d toggled %d times but still selected", id, n)
				}
			}
		}
		if sess.SelectionSize() != want {
			t.Fatalf("selection size = %d, want %d", sess.SelectionSize(), want)
		}
	})
}
