package groupman

import (
	"fmt"

	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// Sanitize reconciles the grouping model with a flowchart:
//
//   - node definitions referring to blocks the flowchart does not contain
//     are dropped (group files can outlive a re-extracted binary);
//   - blocks the group file does not cover are wrapped in synthetic
//     single-block super-groups, so every rendering node in either view
//     mode is reachable from the active path.
//
// Returns an error only when sanitizing empties the model entirely.
// Callers should InitLookups afterwards; Sanitize does it on success.
func (m *Manager) Sanitize(fc *model.Flowchart) error {
	covered := make(map[int]bool, fc.Size())

	var newPath model.SuperGroupList
	dropped := 0
	for _, sg := range m.path {
		var keptGroups model.NodeGroupList
		for _, ng := range sg.Groups {
			var keptNodes []*model.NodeDef
			for _, nd := range ng.Nodes {
				if fc.Block(nd.ID) == nil {
					dropped++
					continue
				}
				if covered[nd.ID] {
					// First owner wins; duplicate definitions are a file
					// defect, not fatal.
					dropped++
					continue
				}
				covered[nd.ID] = true
				keptNodes = append(keptNodes, nd)
			}
			if len(keptNodes) > 0 {
				ng.Nodes = keptNodes
				keptGroups = append(keptGroups, ng)
			}
		}
		if len(keptGroups) > 0 {
			sg.Groups = keptGroups
			newPath = append(newPath, sg)
		}
	}

	// Wrap uncovered blocks into synthetic super-groups, in block order.
	synth := 0
	for _, id := range fc.BlockIDs() {
		if covered[id] {
			continue
		}
		b := fc.Block(id)
		nd := &model.NodeDef{ID: b.ID, Start: b.Start, End: b.End}
		sg := &model.SuperGroup{
			ID:        fmt.Sprintf("synth_%d", id),
			Synthetic: true,
			Groups:    model.NodeGroupList{{Nodes: []*model.NodeDef{nd}}},
		}
		newPath = append(newPath, sg)
		synth++
	}

	if len(newPath) == 0 {
		return fmt.Errorf("sanitize: no node definitions match the flowchart")
	}

	m.path = newPath
	m.InitLookups()
	debug.LogIf(dropped > 0 || synth > 0,
		"groupman: sanitize dropped %d stale nodes, added %d synthetic supergroups", dropped, synth)
	return nil
}
