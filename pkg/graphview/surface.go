package graphview

// RefreshMode is passed with every redraw request. Single and Combined ask
// for a structural rebuild into that projection; Soft asks for a repaint
// with the existing node map. The mode travels with the request rather
// than living in shared state, so two requests issued back to back cannot
// race each other's intent.
type RefreshMode int

const (
	// RefreshSoft repaints without rebuilding the node map. The surface
	// also uses it for cosmetic refreshes (focus changes and the like).
	RefreshSoft RefreshMode = iota
	// RefreshSingle rebuilds into the ungrouped projection.
	RefreshSingle
	// RefreshCombined rebuilds into the grouped projection.
	RefreshCombined
)

// String returns the mode name for logs and status messages.
func (m RefreshMode) String() string {
	switch m {
	case RefreshSoft:
		return "soft"
	case RefreshSingle:
		return "single"
	case RefreshCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// Surface is the rendering side of a graph session: it owns the layout and
// the screen, and pulls node text/colors from the session one node at a
// time after a refresh cycle has been accepted.
//
// The contract is pull-based and single-threaded. RequestRefresh must end
// up invoking Session.Refresh with the same mode (and the surface's
// mutable graph) before the surface repaints; JumpTo moves focus to a
// rendering id from the current layout generation.
type Surface interface {
	// RequestRefresh schedules the refresh callback with the given mode.
	RequestRefresh(mode RefreshMode)
	// JumpTo scrolls/focuses the given rendering node id.
	JumpTo(id int)
	// Close tears the surface down. The surface must deliver
	// Session.Destroyed exactly once, whether closed through here or by
	// the host.
	Close()
}

// GNode is one rendering node's cached presentation: display text plus an
// optional dedicated hint. An empty hint falls back to the text.
type GNode struct {
	Text string
	Hint string
}
