// Package model defines the domain types shared across cfgview: basic-block
// node definitions, node-groups, named super-groups, and the function
// flowchart the groups partition.
//
// Identity rules matter here. A NodeDef's ID is stable for the lifetime of a
// loaded file. NodeGroup and SuperGroup values are referenced by pointer;
// those pointers are the handles the rest of the program passes around.
// Rendering node ids (the small integers a graph surface assigns per layout)
// are deliberately NOT part of this package: they are ephemeral and live in
// pkg/graphview's per-session maps.
package model

import (
	"fmt"
	"strings"
)

// DummySuperGroupName is the display fallback for an unnamed super-group.
const DummySuperGroupName = "No name"

// NodeDef is a single basic block: numeric id, address range, free-text hint.
type NodeDef struct {
	ID    int    `yaml:"id" json:"id"`
	Start uint64 `yaml:"start" json:"start"`
	End   uint64 `yaml:"end" json:"end"`
	Hint  string `yaml:"hint,omitempty" json:"hint,omitempty"`
}

// String renders the id:start:end triple used in chooser lines and summaries.
func (nd *NodeDef) String() string {
	return fmt.Sprintf("%d:%x:%x", nd.ID, nd.Start, nd.End)
}

// NodeGroup is an ordered, non-empty collection of node definitions rendered
// as one unit in combined mode. The *NodeGroup pointer is the group's handle.
type NodeGroup struct {
	Nodes []*NodeDef
}

// FirstNode returns the first node definition, or nil for an empty group.
func (ng *NodeGroup) FirstNode() *NodeDef {
	if ng == nil || len(ng.Nodes) == 0 {
		return nil
	}
	return ng.Nodes[0]
}

// Size returns the number of node definitions in the group.
func (ng *NodeGroup) Size() int {
	if ng == nil {
		return 0
	}
	return len(ng.Nodes)
}

// Summary renders the member list, e.g. "C(2):(1:401000:401010, 2:401010:401020)".
func (ng *NodeGroup) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "C(%d):(", len(ng.Nodes))
	for i, nd := range ng.Nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(nd.String())
	}
	b.WriteString(")")
	return b.String()
}

// NodeGroupList is an ordered list of node-group handles.
type NodeGroupList []*NodeGroup

// FirstGroup returns the first node-group in the list, or nil.
func (ngl NodeGroupList) FirstGroup() *NodeGroup {
	if len(ngl) == 0 {
		return nil
	}
	return ngl[0]
}

// SuperGroup is a named collection of node-groups. ID is a stable string
// identifier from the group file; Name is human-editable. Synthetic marks
// machine-generated groups that were never named by a user.
type SuperGroup struct {
	ID        string
	Name      string
	Synthetic bool
	Groups    NodeGroupList
}

// DisplayName returns the editable name, falling back to the stable id and
// finally to DummySuperGroupName.
func (sg *SuperGroup) DisplayName() string {
	if sg.Name != "" {
		return sg.Name
	}
	if sg.ID != "" {
		return sg.ID
	}
	return DummySuperGroupName
}

// FirstGroup returns the super-group's first node-group, or nil.
func (sg *SuperGroup) FirstGroup() *NodeGroup {
	return sg.Groups.FirstGroup()
}

// GroupCount returns the number of node-groups under this super-group.
func (sg *SuperGroup) GroupCount() int {
	return len(sg.Groups)
}

// SuperGroupList is the ordered set of super-groups along one path through
// the flowchart. The group manager owns the active list.
type SuperGroupList []*SuperGroup

// FirstGroup returns the first node-group of the first super-group, or nil.
func (sgl SuperGroupList) FirstGroup() *NodeGroup {
	if len(sgl) == 0 {
		return nil
	}
	return sgl[0].FirstGroup()
}

// NodeLoc locates a node definition inside the hierarchy: the super-group and
// node-group that own it.
type NodeLoc struct {
	SG *SuperGroup
	NG *NodeGroup
	ND *NodeDef
}
