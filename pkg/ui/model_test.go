package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/graphview"
	"github.com/vanderheijden86/cfgview/pkg/testutil"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	fc := testutil.Flowchart(6, [][2]int{{1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 6}})
	gm := testutil.Grouping(t, fc, [][][]int{
		{{1, 2}, {3}},
		{{4, 5}, {6}},
	})
	m := newModel(AppConfig{Options: config.Default()}, fc, gm, TestTheme())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabTogglesFocus(t *testing.T) {
	m := newTestModel(t)
	if m.focus != focusTree {
		t.Fatalf("initial focus = %v, want tree", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusGraph {
		t.Fatalf("focus after tab = %v, want graph", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusTree {
		t.Fatalf("focus after second tab = %v, want tree", m.focus)
	}
}

func TestHelpOverlayToggle(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRunes("?"))
	if !m.showHelp {
		t.Fatal("expected help overlay after ?")
	}
	if m.overlay() == "" {
		t.Fatal("expected non-empty overlay render")
	}
	m.Update(keyRunes("x"))
	if m.showHelp {
		t.Fatal("expected help dismissed by any key")
	}
}

func TestViewModeKeysSwitchProjection(t *testing.T) {
	m := newTestModel(t)
	if m.sess.Mode() != graphview.RefreshCombined {
		t.Fatalf("start mode = %v, want combined", m.sess.Mode())
	}
	m.Update(keyRunes("u"))
	if m.sess.Mode() != graphview.RefreshSingle {
		t.Fatalf("mode after u = %v, want single", m.sess.Mode())
	}
	if got := m.pane.Graph().NodeCount(); got != 6 {
		t.Fatalf("single projection has %d nodes, want 6", got)
	}
	m.Update(keyRunes("g"))
	if m.sess.Mode() != graphview.RefreshCombined {
		t.Fatalf("mode after g = %v, want combined", m.sess.Mode())
	}
	if got := m.pane.Graph().NodeCount(); got != 4 {
		t.Fatalf("combined projection has %d nodes, want 4", got)
	}
}

func TestTreeEnterJumpsGraph(t *testing.T) {
	m := newTestModel(t)
	// Row 0 is the file header, row 1 the first super-group, row 2 its
	// first node-group.
	m.tree.MoveDown()
	m.tree.MoveDown()
	ng := m.tree.CurrentGroup()
	if ng == nil {
		t.Fatal("expected node-group row under cursor")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	want := m.sess.ResolveID(ng)
	if got := m.pane.CursorNode(); got != want {
		t.Fatalf("graph cursor = %d, want %d", got, want)
	}
}

func TestSearchKeyOpensPromptAndHighlights(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRunes("f"))
	if m.prompt == nil {
		t.Fatal("expected search prompt after f")
	}
	for _, r := range "Group 1" {
		m.Update(keyRunes(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt != nil {
		t.Fatal("expected prompt closed after enter")
	}
	if m.sess.HighlightSize() == 0 {
		t.Fatal("expected highlighted nodes after search")
	}
	if m.sess.LastPattern() != "Group 1" {
		t.Fatalf("last pattern = %q", m.sess.LastPattern())
	}
}

func TestSearchPromptPrefillsLastPattern(t *testing.T) {
	m := newTestModel(t)
	m.sess.FindHighlight("Group 0")
	m.Update(keyRunes("f"))
	if m.prompt == nil {
		t.Fatal("expected prompt")
	}
	if got := m.prompt.input.Value(); got != "Group 0" {
		t.Fatalf("prompt prefill = %q, want last pattern", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.prompt != nil {
		t.Fatal("expected prompt closed on esc")
	}
}

func TestDescriptionEditFromTree(t *testing.T) {
	m := newTestModel(t)
	m.tree.MoveDown() // first super-group row
	sg := m.tree.CurrentSuperGroup()
	if sg == nil || m.tree.CurrentGroup() != nil {
		t.Fatal("expected super-group row under cursor")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.prompt == nil {
		t.Fatal("expected description prompt")
	}
	if got := m.prompt.input.Value(); got != sg.DisplayName() {
		t.Fatalf("prompt prefill = %q, want %q", got, sg.DisplayName())
	}
	m.prompt.input.SetValue("Renamed")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if sg.Name != "Renamed" {
		t.Fatalf("super-group name = %q after edit", sg.Name)
	}
	// Chooser refresh hook rebuilt the tree with the new label.
	if !strings.Contains(m.tree.View(true), "Renamed") {
		t.Fatal("tree does not show edited name")
	}
}

func TestSelectionModeClickFlow(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRunes("s"))
	if !m.sess.InSelectionMode() {
		t.Fatal("expected selection mode after s")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab}) // focus graph
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.sess.SelectionSize() != 1 {
		t.Fatalf("selection size = %d, want 1", m.sess.SelectionSize())
	}
	m.Update(keyRunes("d"))
	if m.sess.SelectionSize() != 0 {
		t.Fatal("expected selection cleared by d")
	}
}

func TestCombineFromKeys(t *testing.T) {
	m := newTestModel(t)
	ids := m.pane.Graph().NodeIDs()
	m.sess.ToggleSelect(ids[0], true)
	m.sess.ToggleSelect(ids[1], true)
	m.Update(keyRunes("c"))
	if m.sess.SelectionSize() != 0 {
		t.Fatal("expected selection consumed by combine")
	}
	if m.pane.Graph().NodeCount() != 3 {
		t.Fatalf("node count after combine = %d, want 3", m.pane.Graph().NodeCount())
	}
	if !strings.Contains(m.tree.View(true), "C(4)") {
		t.Fatal("chooser does not show the merged four-node group")
	}
}

func TestSpaceHighlightsTreeScope(t *testing.T) {
	m := newTestModel(t)
	m.tree.MoveDown() // super-group row
	m.Update(keyRunes(" "))
	// Both node-groups of the super-group get highlighted.
	if got := m.sess.HighlightSize(); got != 2 {
		t.Fatalf("highlight size = %d, want 2", got)
	}
	m.tree.MoveDown() // first node-group row
	m.Update(keyRunes("h"))
	m.Update(keyRunes(" "))
	if got := m.sess.HighlightSize(); got != 1 {
		t.Fatalf("highlight size = %d, want 1", got)
	}
}

func TestStatusLineShowsModeAndCounts(t *testing.T) {
	m := newTestModel(t)
	line := m.statusLine()
	if !strings.Contains(line, "combined view") {
		t.Fatalf("status line %q missing view mode", line)
	}
	m.Update(keyRunes("u"))
	if !strings.Contains(m.statusLine(), "single view") {
		t.Fatal("status line not updated after mode switch")
	}
}

func TestAppendNodeIDToggle(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	m := newTestModel(t)
	id := m.pane.CursorNode()
	before, _, _ := m.sess.NodeText(id)
	m.Update(keyRunes("n"))
	if !m.cfg.Options.AppendNodeID {
		t.Fatal("expected append-node-id enabled")
	}
	after, _, _ := m.sess.NodeText(m.pane.CursorNode())
	if before == after {
		t.Fatal("node text unchanged after toggle")
	}
	saved, err := config.Load()
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !saved.AppendNodeID {
		t.Fatal("toggle not persisted to config")
	}
}

func TestInsightsOverlay(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRunes("i"))
	if !m.showInsights {
		t.Fatal("expected insights overlay")
	}
	if len(m.insights) == 0 {
		t.Fatal("expected insight lines")
	}
	joined := strings.Join(m.insights, "\n")
	if !strings.Contains(joined, "6 blocks") {
		t.Fatalf("insights missing block count: %q", joined)
	}
}

func TestQuitStopsAndTearsDown(t *testing.T) {
	m := newTestModel(t)
	fired := false
	m.sess.OnTeardown(func() { fired = true })
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !fired {
		t.Fatal("expected session teardown on quit")
	}
	if m.View() != "" {
		t.Fatal("expected empty view while quitting")
	}
}

func TestViewRendersBothPanes(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "Group 0") {
		t.Fatal("view missing chooser content")
	}
	if !strings.Contains(out, "combined view") {
		t.Fatal("view missing status line")
	}
}
