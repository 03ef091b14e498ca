// Package export renders static snapshots (SVG or PNG) of the currently
// projected graph, preserving the on-screen selection and highlight
// colors. The layout is a simple left-to-right leveling of the projected
// nodes, not a faithful copy of the interactive pane.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/cfgview/pkg/colorgen"
	"github.com/vanderheijden86/cfgview/pkg/graphview"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// NodeSource answers per-node text/color queries. graphview.Session
// satisfies it, so a snapshot sees exactly what the screen shows.
type NodeSource interface {
	NodeText(id int) (string, colorgen.Color, bool)
}

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // rendered in the header block
	Preset string // layout preset: "compact" (default) or "roomy"

	Graph *graphview.MutableGraph
	Nodes NodeSource
}

// SaveSnapshot renders the projected graph to opts.Path.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Graph == nil || opts.Graph.NodeCount() == 0 {
		return fmt.Errorf("no nodes to export")
	}
	if opts.Nodes == nil {
		return fmt.Errorf("node source is required for snapshot export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildLayout(opts)

	switch format {
	case "svg":
		file, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		return renderSVG(file, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// --- layout computation ----------------------------------------------------

type layoutNode struct {
	ID    int
	Label string
	Fill  color.RGBA
	X, Y  float64
	W, H  float64
}

type layoutResult struct {
	Nodes  []layoutNode
	Edges  []model.Edge
	ByID   map[int]layoutNode
	Width  int
	Height int
	Header float64
	Title  string
}

func buildLayout(opts SnapshotOptions) layoutResult {
	const (
		nodeWCompact = 170.0
		nodeHCompact = 54.0
		nodeWRoomy   = 200.0
		nodeHRoomy   = 66.0
		colGapComp   = 70.0
		rowGapComp   = 34.0
		colGapRoomy  = 100.0
		rowGapRoomy  = 48.0
		padding      = 36.0
		headerHeight = 84.0
	)

	nodeW, nodeH, colGap, rowGap := nodeWCompact, nodeHCompact, colGapComp, rowGapComp
	if strings.EqualFold(opts.Preset, "roomy") {
		nodeW, nodeH, colGap, rowGap = nodeWRoomy, nodeHRoomy, colGapRoomy, rowGapRoomy
	}

	levels := graphLevels(opts.Graph)
	maxLevel := 0
	buckets := make(map[int][]int)
	for _, id := range opts.Graph.NodeIDs() {
		lvl := levels[id]
		buckets[lvl] = append(buckets[lvl], id)
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	var nodes []layoutNode
	byID := make(map[int]layoutNode)
	maxRows := 0
	for lvl := 0; lvl <= maxLevel; lvl++ {
		bucket := buckets[lvl]
		sort.Ints(bucket)
		if len(bucket) > maxRows {
			maxRows = len(bucket)
		}
		for row, id := range bucket {
			label, clr := nodeAppearance(opts.Nodes, id)
			n := layoutNode{
				ID:    id,
				Label: label,
				Fill:  fillColor(clr),
				X:     padding + float64(lvl)*(nodeW+colGap),
				Y:     padding + headerHeight + float64(row)*(nodeH+rowGap),
				W:     nodeW,
				H:     nodeH,
			}
			nodes = append(nodes, n)
			byID[id] = n
		}
	}

	width := int(padding*2 + float64(maxLevel)*(nodeW+colGap) + nodeW)
	if width < 640 {
		width = 640
	}
	height := int(padding*2 + headerHeight + float64(maxRows-1)*(nodeH+rowGap) + nodeH)
	if height < 400 {
		height = 400
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Graph Snapshot"
	}

	return layoutResult{
		Nodes:  nodes,
		Edges:  opts.Graph.EdgeList(),
		ByID:   byID,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Title:  title,
	}
}

// graphLevels assigns BFS depths starting from every root (in-degree 0
// node). Nodes unreachable from any root, such as members of an entry
// loop, stay at level 0.
func graphLevels(g *graphview.MutableGraph) map[int]int {
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

func nodeAppearance(src NodeSource, id int) (string, colorgen.Color) {
	text, clr, ok := src.NodeText(id)
	if !ok {
		return fmt.Sprintf("#%d", id), colorgen.Color{}
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return truncate(line, 24), clr
		}
	}
	return fmt.Sprintf("#%d", id), clr
}

// --- rendering -------------------------------------------------------------

var (
	colorNodeFill = color.RGBA{0xe8, 0xea, 0xf0, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func fillColor(c colorgen.Color) color.RGBA {
	if c.IsZero() {
		return colorNodeFill
	}
	return color.RGBA{c.R, c.G, c.B, 0xff}
}

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, layout.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, 32, 40, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  edges: %d", len(layout.Nodes), len(layout.Edges)), 32, 60, 0, 0.5)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(2)
	for _, e := range layout.Edges {
		from, to := layout.ByID[e.From], layout.ByID[e.To]
		if e.From == e.To {
			dc.DrawArc(from.X+from.W, from.Y, 14, 0, 4.7)
			dc.Stroke()
			continue
		}
		x1, y1 := from.X+from.W, from.Y+from.H/2
		x2, y2 := to.X, to.Y+to.H/2
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		dc.NewSubPath()
		dc.MoveTo(x2, y2)
		dc.LineTo(x2-8, y2+4)
		dc.LineTo(x2-8, y2-4)
		dc.ClosePath()
		dc.Fill()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(n.Fill)
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.Label, n.X+10, n.Y+20, 0, 0.5)
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(fmt.Sprintf("node %d", n.ID), n.X+10, n.Y+38, 0, 0.5)
	}

	return dc.SavePNG(path)
}

func renderSVG(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(layout.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 44, layout.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, fmt.Sprintf("nodes: %d  edges: %d", len(layout.Nodes), len(layout.Edges)),
		fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))

	for _, e := range layout.Edges {
		from, to := layout.ByID[e.From], layout.ByID[e.To]
		if e.From == e.To {
			canvas.Circle(int(from.X+from.W), int(from.Y), 12,
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorEdge)))
			continue
		}
		x1, y1 := int(from.X+from.W), int(from.Y+from.H/2)
		x2, y2 := int(to.X), int(to.Y+to.H/2)
		canvas.Line(x1, y1, x2, y2, fmt.Sprintf("stroke:%s;stroke-width:2", css(colorEdge)))
		canvas.Polygon(
			[]int{x2, x2 - 8, x2 - 8},
			[]int{y2, y2 + 4, y2 - 4},
			fmt.Sprintf("fill:%s", css(colorEdge)),
		)
	}

	for _, n := range layout.Nodes {
		x, y := int(n.X), int(n.Y)
		canvas.Roundrect(x, y, int(n.W), int(n.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(n.Fill), css(colorStroke)))
		canvas.Text(x+10, y+22, n.Label,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		canvas.Text(x+10, y+40, fmt.Sprintf("node %d", n.ID),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
