package graphview

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// ProjectSingle populates mg and nodeMap with the ungrouped projection:
// one rendering node per basic block, the rendering id equal to the
// block's own id, edges straight from the flowchart.
func ProjectSingle(
	fc *model.Flowchart,
	mg *MutableGraph,
	nodeMap map[int]*GNode,
	opts config.Options,
) {
	for _, id := range fc.BlockIDs() {
		b := fc.Block(id)
		text := fmt.Sprintf("%x - %x", b.Start, b.End)
		if opts.AppendNodeID {
			text = fmt.Sprintf("%s (%d)", text, b.ID)
		}
		mg.AddNode(b.ID)
		nodeMap[b.ID] = &GNode{Text: text}
	}
	for _, e := range fc.Edges() {
		mg.AddEdge(e.From, e.To)
	}
}

// ProjectCombined populates mg and nodeMap with the grouped projection:
// one fresh rendering id per node-group along the manager's active
// super-group list. The id-map (and its inverse) record which synthetic
// node stands for which node-group; flowchart edges are collapsed to group
// granularity, dropping intra-group edges and duplicates.
func ProjectCombined(
	gm *groupman.Manager,
	fc *model.Flowchart,
	mg *MutableGraph,
	nodeMap map[int]*GNode,
	ng2id map[*model.NodeGroup]int,
	id2ng map[int]*model.NodeGroup,
	opts config.Options,
) {
	nextID := 0
	for _, sg := range gm.PathList() {
		for _, ng := range sg.Groups {
			nid := nextID
			nextID++
			ng2id[ng] = nid
			id2ng[nid] = ng
			mg.AddNode(nid)
			nodeMap[nid] = &GNode{
				Text: combinedNodeText(sg, ng, nid, opts),
				Hint: ng.Summary(),
			}
		}
	}

	// Collapse control-flow edges to group granularity.
	for _, e := range fc.Edges() {
		fromLoc := gm.FindNodeLoc(e.From)
		toLoc := gm.FindNodeLoc(e.To)
		if fromLoc == nil || toLoc == nil {
			// Block not owned by any group; sanitize should have wrapped
			// it, so just skip.
			continue
		}
		if fromLoc.NG == toLoc.NG {
			continue
		}
		mg.AddEdge(ng2id[fromLoc.NG], ng2id[toLoc.NG])
	}
}

// combinedNodeText builds the display text of a combined-mode node from
// its super-group's name. One-line names are padded when the enlarge
// option is on, so a short label still renders as a visible box.
func combinedNodeText(sg *model.SuperGroup, ng *model.NodeGroup, nid int, opts config.Options) string {
	text := sg.DisplayName()
	if opts.AppendNodeID {
		text = fmt.Sprintf("%s (%d)", text, nid)
	}
	if opts.EnlargeGroupName && !strings.Contains(text, "\n") {
		text = "\n" + text + "\n"
	}
	return text
}
