// Package graphview owns one open graph-rendering session: the current
// view mode, the mapping between rendering node ids and the grouping
// model, selection/highlight state, and the interactive command set.
//
// A Session never talks to a screen directly. It drives a Surface (the
// rendering side) and answers the surface's pull callbacks: the surface
// asks for a refresh decision, then queries text/color/hint one node at a
// time. Everything runs synchronously on the host event loop; no locks.
package graphview

import (
	"strconv"
	"strings"

	"github.com/vanderheijden86/cfgview/pkg/colorgen"
	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// SelectionColor is the fixed background color of selected nodes. It wins
// over any highlight color on the same node.
var SelectionColor = colorgen.RGB(0x7c, 0x75, 0xad)

// MessageFunc receives user-facing status messages (precondition
// violations, selection echoes, search results).
type MessageFunc func(format string, args ...any)

// Hooks are the session's outward callbacks. The front end fills in the
// ones it supports; nil hooks degrade to no-ops with a status message
// where that would otherwise lose a command silently.
type Hooks struct {
	// PromptSearch asks the user for a search pattern; submit is called
	// only on acceptance.
	PromptSearch func(last string, submit func(pattern string))
	// PromptDescription asks for a new super-group description; submit is
	// called only on acceptance.
	PromptDescription func(current string, submit func(text string))
	// RefreshChooser repopulates the chooser/tree after a structural
	// change (combine, description edit).
	RefreshChooser func()
}

// Session is the authoritative owner of one graph-rendering session.
type Session struct {
	gm   *groupman.Manager
	fc   *model.Flowchart
	opts config.Options
	surf Surface
	msg  MessageFunc

	hooks Hooks

	// curNode tracks the rendering surface's current node, -1 when none.
	curNode int

	// curMode is the projection actually rendered. It only changes inside
	// Refresh, and never records the soft pseudo-mode.
	curMode RefreshMode

	nodeMap map[int]*GNode
	ng2id   map[*model.NodeGroup]int
	id2ng   map[int]*model.NodeGroup

	selected    map[int]colorgen.Color
	highlighted map[int]colorgen.Color

	selMode     bool
	lastPattern string

	onTeardown []func()

	// Menu handles, for relabeling the selection-mode toggle.
	reg          *Registry
	idmSelMode   int
	menuIDs      []int
	installedMnu bool
}

// NewSession creates a session over the given flowchart and group manager.
// The session is inert until Attach hands it a surface.
func NewSession(fc *model.Flowchart, gm *groupman.Manager, opts config.Options, msg MessageFunc) *Session {
	if msg == nil {
		msg = func(string, ...any) {}
	}
	s := &Session{
		gm:      gm,
		fc:      fc,
		opts:    opts,
		msg:     msg,
		curNode: -1,
		curMode: modeForConfig(opts.StartViewMode),
	}
	s.resetState()
	return s
}

func modeForConfig(m config.ViewMode) RefreshMode {
	if m == config.ViewSingle {
		return RefreshSingle
	}
	return RefreshCombined
}

// SetHooks installs the front end's callbacks.
func (s *Session) SetHooks(h Hooks) {
	s.hooks = h
}

// Attach connects the rendering surface and requests the initial layout.
func (s *Session) Attach(surf Surface) {
	s.surf = surf
	surf.RequestRefresh(s.curMode)
}

// Manager returns the shared group manager.
func (s *Session) Manager() *groupman.Manager {
	return s.gm
}

// Options returns the read-only options snapshot.
func (s *Session) Options() config.Options {
	return s.opts
}

// Mode returns the currently rendered projection.
func (s *Session) Mode() RefreshMode {
	return s.curMode
}

// CurrentNode returns the surface's current rendering id, -1 when none.
func (s *Session) CurrentNode() int {
	return s.curNode
}

// SelectionSize returns the number of selected rendering ids.
func (s *Session) SelectionSize() int {
	return len(s.selected)
}

// HighlightSize returns the number of highlighted rendering ids.
func (s *Session) HighlightSize() int {
	return len(s.highlighted)
}

// InSelectionMode reports whether clicks toggle selection.
func (s *Session) InSelectionMode() bool {
	return s.selMode
}

// LastPattern returns the most recent search pattern, for prompt prefill.
func (s *Session) LastPattern() string {
	return s.lastPattern
}

// resetState wipes every per-layout structure. Called before each
// structural rebuild and on session creation.
func (s *Session) resetState() {
	s.nodeMap = make(map[int]*GNode)
	s.ng2id = make(map[*model.NodeGroup]int)
	s.id2ng = make(map[int]*model.NodeGroup)
	s.selected = make(map[int]colorgen.Color)
	s.highlighted = make(map[int]colorgen.Color)
	s.curNode = -1
}

// ---------------------------------------------------------------------------
// Surface callbacks

// Refresh is the rebuild-vs-repaint decision point. The surface calls it
// with its mutable graph and the mode carried by the redraw request.
// Returns true when a structural rebuild happened (the surface must then
// re-run layout), false when only a repaint is needed.
func (s *Session) Refresh(mg *MutableGraph, mode RefreshMode) bool {
	if mode == RefreshSoft && len(s.nodeMap) > 0 {
		return false
	}

	m := mode
	if m == RefreshSoft {
		// First layout of the session: nothing built yet, fall back to
		// the start mode.
		m = s.curMode
	}

	defer debug.LogEnterExit("graphview.Refresh " + m.String())()

	mg.Clear()
	s.resetState()
	s.curMode = m

	switch m {
	case RefreshSingle:
		ProjectSingle(s.fc, mg, s.nodeMap, s.opts)
	case RefreshCombined:
		ProjectCombined(s.gm, s.fc, mg, s.nodeMap, s.ng2id, s.id2ng, s.opts)
	}
	return true
}

// NodeText answers the surface's per-node text/color query. Selection has
// priority over highlight; the zero color means "use the default".
func (s *Session) NodeText(id int) (string, colorgen.Color, bool) {
	gnode := s.nodeMap[id]
	if gnode == nil {
		return "", colorgen.Color{}, false
	}
	if clr, ok := s.selected[id]; ok {
		return gnode.Text, clr, true
	}
	if clr, ok := s.highlighted[id]; ok {
		return gnode.Text, clr, true
	}
	return gnode.Text, colorgen.Color{}, true
}

// NodeHint answers the surface's hover-hint query, falling back to the
// display text when the node has no dedicated hint.
func (s *Session) NodeHint(id int) (string, bool) {
	gnode := s.nodeMap[id]
	if gnode == nil {
		return "", false
	}
	if gnode.Hint != "" {
		return gnode.Hint, true
	}
	return gnode.Text, true
}

// Clicked reports a node click. In selection mode it toggles membership.
func (s *Session) Clicked(id int) {
	if !s.selMode || id < 0 {
		return
	}
	s.ToggleSelect(id, s.opts.ManualRefresh)
}

// CurrentChanged tracks the surface's current node.
func (s *Session) CurrentChanged(id int) {
	s.curNode = id
}

// CreatingGroup is the surface's permission query for host-side grouping.
// Always permitted.
func (s *Session) CreatingGroup(nodes []int) bool {
	return true
}

// DeletingGroup is the surface's permission query for host-side group
// deletion. Always permitted.
func (s *Session) DeletingGroup(group int) bool {
	return true
}

// GraphReplaced notifies the session that the surface swapped its graph.
func (s *Session) GraphReplaced() {
	debug.Log("graphview: graph replaced")
}

// Destroyed tears the session down: the surface is gone, so drop the
// handle and notify teardown observers. After this the session must not
// touch the surface again.
func (s *Session) Destroyed() {
	s.surf = nil
	for _, fn := range s.onTeardown {
		fn()
	}
	s.onTeardown = nil
}

// OnTeardown registers an observer fired when the surface is destroyed.
// The owner uses this to drop its session reference instead of holding a
// back-pointer the session would have to patch.
func (s *Session) OnTeardown(fn func()) {
	s.onTeardown = append(s.onTeardown, fn)
}

// ---------------------------------------------------------------------------
// Redraw requests

// RedoLayout requests a structural rebuild into the given mode.
func (s *Session) RedoLayout(mode RefreshMode) {
	if s.surf == nil {
		return
	}
	s.surf.RequestRefresh(mode)
}

// RefreshView requests a repaint of the existing node map.
func (s *Session) RefreshView() {
	if s.surf == nil {
		return
	}
	s.surf.RequestRefresh(RefreshSoft)
}

// ---------------------------------------------------------------------------
// Id resolution

// ResolveID returns the rendering id representing the node-group under the
// current view mode: the id-map entry in combined mode, the first node
// definition's id in single mode. Returns -1 when the group is unknown,
// empty, or the mode unrecognized; callers skip the entity on -1.
func (s *Session) ResolveID(ng *model.NodeGroup) int {
	if ng != nil {
		switch s.curMode {
		case RefreshCombined:
			if id, ok := s.ng2id[ng]; ok {
				return id
			}
		case RefreshSingle:
			if nd := ng.FirstNode(); nd != nil {
				return nd.ID
			}
		}
	}
	debug.Log("graphview: could not resolve rendering id for %p", ng)
	return -1
}

// GroupForID is the reverse resolution: the node-group owning a rendering
// id. Combined mode uses the inverse index maintained alongside the
// id-map; single mode goes through the manager's node-location lookup.
func (s *Session) GroupForID(id int) *model.NodeGroup {
	switch s.curMode {
	case RefreshCombined:
		return s.id2ng[id]
	case RefreshSingle:
		if loc := s.gm.FindNodeLoc(id); loc != nil {
			return loc.NG
		}
	}
	return nil
}

// SuperGroupForID resolves a rendering id to its owning super-group:
// rendering id -> node-group -> first node definition -> node location.
func (s *Session) SuperGroupForID(id int) *model.SuperGroup {
	ng := s.GroupForID(id)
	if ng == nil {
		return nil
	}
	nd := ng.FirstNode()
	if nd == nil {
		return nil
	}
	loc := s.gm.FindNodeLoc(nd.ID)
	if loc == nil {
		return nil
	}
	return loc.SG
}

// ---------------------------------------------------------------------------
// Selection

// ToggleSelect flips a rendering id's membership in the selection set.
// Deferred calls only echo a message; immediate calls repaint.
func (s *Session) ToggleSelect(id int, deferred bool) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = SelectionColor
	}

	if deferred {
		s.msg("Selected %d", id)
	} else {
		s.RefreshView()
	}
}

// ClearSelection empties the selection set.
func (s *Session) ClearSelection(deferred bool) {
	s.selected = make(map[int]colorgen.Color)
	if !deferred {
		s.RefreshView()
	}
}

// ClearHighlight empties the highlight set.
func (s *Session) ClearHighlight(deferred bool) {
	s.highlighted = make(map[int]colorgen.Color)
	if !deferred {
		s.RefreshView()
	}
}

// ToggleSelMode flips whether clicks toggle selection, relabeling the
// menu entry accordingly.
func (s *Session) ToggleSelMode() {
	s.setSelMode(!s.selMode)
}

func (s *Session) setSelMode(on bool) {
	if s.reg != nil && s.idmSelMode != 0 {
		s.reg.Remove(s.idmSelMode)
	}

	label := "Start selection mode"
	if on {
		label = "End selection mode"
	}
	if s.reg != nil {
		s.idmSelMode = s.reg.Add(s, label, "S", func(sess *Session) {
			sess.ToggleSelMode()
		})
	}

	s.selMode = on
	s.msg("Trigger again to '%s'", label)
}

// ---------------------------------------------------------------------------
// Highlighting

// HighlightGroup colors one node-group: the group's single rendering id in
// combined mode, every member node's id in single mode. In deferred mode
// the colors land in the highlight map without a repaint and the affected
// ids are echoed for observability. Returns false when nothing could be
// resolved.
func (s *Session) HighlightGroup(ng *model.NodeGroup, clr colorgen.Color, deferred bool) bool {
	var colored []int

	switch s.curMode {
	case RefreshCombined:
		id := s.ResolveID(ng)
		if id == -1 {
			return false
		}
		s.highlighted[id] = clr
		colored = append(colored, id)
	case RefreshSingle:
		if ng == nil {
			return false
		}
		for _, nd := range ng.Nodes {
			s.highlighted[nd.ID] = clr
			colored = append(colored, nd.ID)
		}
	default:
		return false
	}

	if deferred {
		s.msg("Lazy highlight(%s)", summarizeIDs(colored))
	} else {
		s.RefreshView()
	}
	return true
}

// HighlightGroupList colors a node-group list with one color family: a
// fresh variant per group, the single-group primitive always deferred
// internally, one repaint at the end unless deferred.
func (s *Session) HighlightGroupList(ngl model.NodeGroupList, cg *colorgen.Generator, deferred bool) {
	family := cg.NextFamily()
	for _, ng := range ngl {
		s.HighlightGroup(ng, family.NextColor(), true)
	}
	if !deferred {
		s.RefreshView()
	}
}

// HighlightSuperGroups colors a super-group list: one hue family per
// super-group, propagated across all its node-groups. Synthetic
// super-groups are skipped unless the options say otherwise.
func (s *Session) HighlightSuperGroups(sgl model.SuperGroupList, cg *colorgen.Generator, deferred bool) {
	for _, sg := range sgl {
		if sg.Synthetic && !s.opts.HighlightSynthetic {
			continue
		}
		family := cg.NextFamily()
		for _, ng := range sg.Groups {
			s.HighlightGroup(ng, family.NextColor(), true)
		}
	}
	if !deferred {
		s.RefreshView()
	}
}

func summarizeIDs(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Commands

// CombineSelection merges the selected node-groups into one. Preconditions:
// combined mode and at least two selected nodes. On success the chooser is
// refreshed and the current mode rebuilt; on violation a message is emitted
// and nothing changes.
func (s *Session) CombineSelection() bool {
	if s.curMode != RefreshCombined {
		s.msg("Grouping is only available in combined mode")
		return false
	}
	if len(s.selected) <= 1 {
		s.msg("Not enough selected nodes")
		return false
	}

	var ngl model.NodeGroupList
	for id := range s.selected {
		if ng := s.GroupForID(id); ng != nil {
			ngl = append(ngl, ng)
		}
	}

	if _, err := s.gm.Combine(ngl); err != nil {
		s.msg("Combine failed: %v", err)
		return false
	}

	s.refreshChooser()
	s.RedoLayout(s.curMode)
	return true
}

// EditDescription resolves the current node's super-group and asks the
// front end for a new description. Precondition: combined mode with a
// current node.
func (s *Session) EditDescription() {
	if s.curMode != RefreshCombined || s.curNode == -1 {
		s.msg("Incorrect view mode or no nodes are selected")
		return
	}

	sg := s.SuperGroupForID(s.curNode)
	if sg == nil {
		return
	}
	s.EditDescriptionOf(sg)
}

// EditDescriptionOf prompts for a new description of the given super-group
// (the chooser front end calls this directly for its edit action).
func (s *Session) EditDescriptionOf(sg *model.SuperGroup) {
	if s.hooks.PromptDescription == nil {
		s.msg("No description editor available")
		return
	}
	s.hooks.PromptDescription(sg.DisplayName(), func(text string) {
		s.ApplyDescription(sg, text)
		s.refreshChooser()
	})
}

// ApplyDescription renames the super-group and patches the cached display
// text of every combined node under it, so the edit shows without a full
// rebuild.
func (s *Session) ApplyDescription(sg *model.SuperGroup, text string) {
	if sg == nil || text == "" {
		return
	}
	sg.Name = text

	for _, ng := range sg.Groups {
		id := s.ResolveID(ng)
		if id == -1 {
			continue
		}
		gnode := s.nodeMap[id]
		if gnode == nil {
			continue
		}
		gnode.Text = combinedNodeText(sg, ng, id, s.opts)
	}

	if !s.opts.ManualRefresh {
		s.RefreshView()
	}
}

// FindAndHighlight prompts for a pattern and highlights matching
// super-groups (see FindHighlight).
func (s *Session) FindAndHighlight() {
	if s.hooks.PromptSearch == nil {
		s.msg("No search prompt available")
		return
	}
	s.hooks.PromptSearch(s.lastPattern, func(pattern string) {
		s.FindHighlight(pattern)
	})
}

// FindHighlight matches pattern case-insensitively against every
// super-group's name and stable id along the active path, highlights the
// contents of each match, and jumps to the first match's first node-group.
// With no match the highlight map is left untouched and focus does not
// move. Returns the number of matching super-groups.
func (s *Session) FindHighlight(pattern string) int {
	if pattern == "" {
		return 0
	}
	s.lastPattern = pattern

	var matched model.SuperGroupList
	for _, sg := range s.gm.PathList() {
		if containsFold(sg.Name, pattern) || containsFold(sg.ID, pattern) {
			matched = append(matched, sg)
		}
	}
	if len(matched) == 0 {
		s.msg("No group matches '%s'", pattern)
		return 0
	}

	s.ClearHighlight(true)
	cg := colorgen.New()
	for _, sg := range matched {
		s.HighlightGroupList(sg.Groups, cg, true)
	}

	if !s.opts.ManualRefresh {
		s.RefreshView()
	}

	if ng := matched[0].FirstGroup(); ng != nil {
		if id := s.ResolveID(ng); id != -1 && s.surf != nil {
			s.surf.JumpTo(id)
		}
	}
	return len(matched)
}

// JumpToGroup moves the surface's focus to the node representing the given
// node-group under the current mode. Used by the chooser's enter action.
func (s *Session) JumpToGroup(ng *model.NodeGroup) {
	id := s.ResolveID(ng)
	if id == -1 || s.surf == nil {
		return
	}
	s.surf.JumpTo(id)
}

func (s *Session) refreshChooser() {
	if s.hooks.RefreshChooser != nil {
		s.hooks.RefreshChooser()
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
