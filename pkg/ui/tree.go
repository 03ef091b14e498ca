package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// treeLine is one renderable row of the chooser: the file header, a
// super-group, or a node-group.
type treeLine struct {
	text string
	sg   *model.SuperGroup
	ng   *model.NodeGroup
}

// TreeModel is the chooser pane: the grouping hierarchy as a flat,
// cursor-navigable list. SG rows jump-edit, NG rows jump the graph pane
// to the matching node.
type TreeModel struct {
	gm    *groupman.Manager
	theme Theme

	lines  []treeLine
	cursor int
	scroll int
	height int
}

// NewTreeModel builds the chooser over the given manager.
func NewTreeModel(gm *groupman.Manager, theme Theme) *TreeModel {
	t := &TreeModel{gm: gm, theme: theme}
	t.Rebuild()
	return t
}

// Rebuild re-derives the rows from the manager. Called after structural
// changes (combine, description edit, file reload).
func (t *TreeModel) Rebuild() {
	var keepSG *model.SuperGroup
	var keepNG *model.NodeGroup
	if cur := t.currentLine(); cur != nil {
		keepSG, keepNG = cur.sg, cur.ng
	}

	t.lines = t.lines[:0]
	source := t.gm.SourceFile()
	if source == "" {
		source = "(unsaved)"
	}
	t.lines = append(t.lines, treeLine{text: source})

	for _, sg := range t.gm.PathList() {
		label := fmt.Sprintf("▸ %s [%d]", sg.DisplayName(), sg.GroupCount())
		if sg.Synthetic {
			label += " ·"
		}
		t.lines = append(t.lines, treeLine{text: "  " + label, sg: sg})
		for _, ng := range sg.Groups {
			t.lines = append(t.lines, treeLine{
				text: "    " + ng.Summary(),
				sg:   sg,
				ng:   ng,
			})
		}
	}

	t.cursor = 0
	for i, line := range t.lines {
		if keepNG != nil && line.ng == keepNG {
			t.cursor = i
			break
		}
		if keepNG == nil && keepSG != nil && line.sg == keepSG && line.ng == nil {
			t.cursor = i
			break
		}
	}
	t.ensureVisible()
}

// SetManager swaps the underlying manager (file reload) and rebuilds.
func (t *TreeModel) SetManager(gm *groupman.Manager) {
	t.gm = gm
	t.cursor = 0
	t.Rebuild()
}

// SetHeight sets the number of visible rows.
func (t *TreeModel) SetHeight(h int) {
	t.height = h
	t.ensureVisible()
}

func (t *TreeModel) currentLine() *treeLine {
	if t.cursor < 0 || t.cursor >= len(t.lines) {
		return nil
	}
	return &t.lines[t.cursor]
}

// CurrentGroup returns the node-group under the cursor, nil on SG or
// header rows.
func (t *TreeModel) CurrentGroup() *model.NodeGroup {
	if cur := t.currentLine(); cur != nil {
		return cur.ng
	}
	return nil
}

// CurrentSuperGroup returns the super-group the cursor row belongs to.
func (t *TreeModel) CurrentSuperGroup() *model.SuperGroup {
	if cur := t.currentLine(); cur != nil {
		return cur.sg
	}
	return nil
}

// MoveUp moves the cursor one row up.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureVisible()
	}
}

// MoveDown moves the cursor one row down.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.lines)-1 {
		t.cursor++
		t.ensureVisible()
	}
}

func (t *TreeModel) ensureVisible() {
	if t.height <= 0 {
		return
	}
	if t.cursor < t.scroll {
		t.scroll = t.cursor
	}
	if t.cursor >= t.scroll+t.height {
		t.scroll = t.cursor - t.height + 1
	}
}

// Len returns the number of rows.
func (t *TreeModel) Len() int {
	return len(t.lines)
}

// View renders the visible rows, cursor row styled.
func (t *TreeModel) View(focused bool) string {
	var b strings.Builder
	end := len(t.lines)
	if t.height > 0 && t.scroll+t.height < end {
		end = t.scroll + t.height
	}
	for i := t.scroll; i < end; i++ {
		line := t.lines[i]
		text := truncate(line.text, 44)
		switch {
		case i == t.cursor && focused:
			b.WriteString(t.theme.Selected.Render(text))
		case line.sg != nil && line.sg.Synthetic:
			b.WriteString(t.theme.MutedText.Render(text))
		case line.ng == nil && line.sg != nil:
			b.WriteString(t.theme.Base.Render(text))
		default:
			b.WriteString(t.theme.SubtleText.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to at most max terminal cells, so wide runes in
// group names don't break the column layout.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return runewidth.Truncate(s, max, "")
	}
	return runewidth.Truncate(s, max, "...")
}
