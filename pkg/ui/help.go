package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/cfgview/pkg/graphview"
)

// helpMarkdown assembles the key reference from the live menu registry,
// so relabeled entries (selection mode) show their current names.
func helpMarkdown(items []graphview.MenuItem) string {
	var b strings.Builder
	b.WriteString("# cfgview\n\n")
	b.WriteString("## Commands\n\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("- **%s** %s\n", it.Hotkey, it.Name))
	}
	b.WriteString(`
## Navigation

- **tab** switch focus between chooser and graph
- **↑/↓ k/j** move cursor
- **enter** jump to / toggle node
- **space** highlight the chooser row's scope
- **n** toggle node-id suffix (saved to config)
- **y** copy current node text
- **w** write graph snapshot (SVG)
- **i** toggle flowchart insights
- **?** toggle this help
- **q** quit
`)
	return b.String()
}

// RenderHelp renders the key reference through glamour at the given
// wrap width.
func RenderHelp(items []graphview.MenuItem, width int) string {
	if width <= 0 || width > 72 {
		width = 72
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown(items)
	}
	out, err := r.Render(helpMarkdown(items))
	if err != nil {
		return helpMarkdown(items)
	}
	return out
}
