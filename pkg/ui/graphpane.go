package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cfgview/pkg/graphview"
)

// GraphPane is the interactive rendering surface for a graph session. It
// owns the projected graph, a cursor over the rendered nodes, and the
// level-based box layout. It satisfies graphview.Surface: redraw requests
// loop back into the session's refresh decision before anything is drawn.
type GraphPane struct {
	sess  *graphview.Session
	mg    *graphview.MutableGraph
	theme Theme

	width  int
	height int

	// ids is the cursor order: rendered node ids sorted ascending.
	ids    []int
	cursor int
	scroll int

	levels map[int]int
}

// NewGraphPane creates the pane. Attach it with sess.Attach(pane) to run
// the initial projection.
func NewGraphPane(sess *graphview.Session, theme Theme) *GraphPane {
	return &GraphPane{
		sess:   sess,
		mg:     graphview.NewMutableGraph(),
		theme:  theme,
		cursor: -1,
	}
}

// RequestRefresh implements graphview.Surface.
func (p *GraphPane) RequestRefresh(mode graphview.RefreshMode) {
	if p.sess.Refresh(p.mg, mode) {
		p.relayout()
	}
}

// JumpTo implements graphview.Surface: move the cursor to a rendered node.
func (p *GraphPane) JumpTo(id int) {
	for i, nid := range p.ids {
		if nid == id {
			p.cursor = i
			p.sess.CurrentChanged(id)
			p.ensureVisible()
			return
		}
	}
}

// Close implements graphview.Surface.
func (p *GraphPane) Close() {
	p.sess.Destroyed()
}

// Graph exposes the projected graph, for snapshot export.
func (p *GraphPane) Graph() *graphview.MutableGraph {
	return p.mg
}

// SetSize updates the pane's drawing area.
func (p *GraphPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.ensureVisible()
}

// relayout rebuilds cursor order and levels after a structural refresh.
func (p *GraphPane) relayout() {
	p.ids = p.mg.NodeIDs()
	p.levels = paneLevels(p.mg)
	p.scroll = 0

	if len(p.ids) == 0 {
		p.cursor = -1
		p.sess.CurrentChanged(-1)
		return
	}
	if p.cursor < 0 || p.cursor >= len(p.ids) {
		p.cursor = 0
	}
	p.sess.CurrentChanged(p.ids[p.cursor])
}

// CursorNode returns the rendering id under the cursor, -1 when empty.
func (p *GraphPane) CursorNode() int {
	if p.cursor < 0 || p.cursor >= len(p.ids) {
		return -1
	}
	return p.ids[p.cursor]
}

// MoveNext advances the cursor to the next rendered node.
func (p *GraphPane) MoveNext() {
	if p.cursor < len(p.ids)-1 {
		p.cursor++
		p.sess.CurrentChanged(p.ids[p.cursor])
		p.ensureVisible()
	}
}

// MovePrev moves the cursor to the previous rendered node.
func (p *GraphPane) MovePrev() {
	if p.cursor > 0 {
		p.cursor--
		p.sess.CurrentChanged(p.ids[p.cursor])
		p.ensureVisible()
	}
}

// Activate reports a click on the cursor node, which toggles selection
// when the session is in selection mode.
func (p *GraphPane) Activate() {
	p.sess.Clicked(p.CursorNode())
}

func (p *GraphPane) ensureVisible() {
	if p.cursor < 0 {
		return
	}
	row := p.levels[p.ids[p.cursor]]
	if row < p.scroll {
		p.scroll = row
	}
	visible := p.visibleRows()
	if visible > 0 && row >= p.scroll+visible {
		p.scroll = row - visible + 1
	}
}

// visibleRows estimates how many node rows fit: each box takes three
// terminal lines plus one connector line.
func (p *GraphPane) visibleRows() int {
	if p.height <= 0 {
		return 0
	}
	return p.height / 4
}

// View renders the level layout: one row of boxes per level, the cursor
// node framed, plus an edge readout for the current node.
func (p *GraphPane) View() string {
	if len(p.ids) == 0 {
		return p.theme.MutedText.Render("(empty graph)")
	}

	maxLevel := 0
	rows := make(map[int][]int)
	for _, id := range p.ids {
		lvl := p.levels[id]
		rows[lvl] = append(rows[lvl], id)
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	var b strings.Builder
	current := p.CursorNode()
	visible := p.visibleRows()

	for lvl := p.scroll; lvl <= maxLevel; lvl++ {
		if visible > 0 && lvl-p.scroll >= visible {
			b.WriteString(p.theme.MutedText.Render(fmt.Sprintf("  … %d more level(s)", maxLevel-lvl+1)))
			b.WriteString("\n")
			break
		}
		ids := rows[lvl]
		sort.Ints(ids)

		boxes := make([]string, 0, len(ids))
		for _, id := range ids {
			boxes = append(boxes, p.renderNode(id, id == current))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
		b.WriteString("\n")
	}

	b.WriteString(p.renderEdgeReadout(current))
	return b.String()
}

func (p *GraphPane) renderNode(id int, current bool) string {
	text, clr, ok := p.sess.NodeText(id)
	if !ok {
		text = fmt.Sprintf("#%d", id)
	}
	label := firstLine(text)
	if label == "" {
		label = fmt.Sprintf("#%d", id)
	}
	return p.theme.NodeStyle(clr, current).Render(fmt.Sprintf("%d %s", id, truncate(label, 28)))
}

// renderEdgeReadout shows the current node's incoming and outgoing edges,
// since box rows cannot draw the arrows themselves.
func (p *GraphPane) renderEdgeReadout(current int) string {
	if current == -1 {
		return ""
	}

	var preds, succs []int
	for _, e := range p.mg.EdgeList() {
		if e.To == current {
			preds = append(preds, e.From)
		}
		if e.From == current {
			succs = append(succs, e.To)
		}
	}

	var b strings.Builder
	b.WriteString(p.theme.SubtleText.Render(fmt.Sprintf("node %d", current)))
	if hint, ok := p.sess.NodeHint(current); ok {
		b.WriteString(p.theme.MutedText.Render("  " + truncate(firstLine(hint), 60)))
	}
	b.WriteString("\n")
	b.WriteString(p.theme.MutedText.Render(fmt.Sprintf("  in: %s  out: %s", joinIDs(preds), joinIDs(succs))))
	return b.String()
}

func joinIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// paneLevels assigns BFS depths from every root so the pane and snapshot
// exports place nodes in the same columns.
func paneLevels(g *graphview.MutableGraph) map[int]int {
	indeg := make(map[int]int)
	for _, e := range g.EdgeList() {
		if e.From != e.To {
			indeg[e.To]++
		}
	}

	levels := make(map[int]int)
	var queue []int
	for _, id := range g.NodeIDs() {
		if indeg[id] == 0 {
			levels[id] = 0
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur) {
			if _, seen := levels[next]; seen {
				continue
			}
			levels[next] = levels[cur] + 1
			queue = append(queue, next)
		}
	}
	return levels
}
