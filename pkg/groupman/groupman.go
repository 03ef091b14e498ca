// Package groupman owns the hierarchical grouping model: flat node
// definitions, node-groups, and named super-groups parsed from a group
// definition file. It answers the structural queries the graph view needs
// (first node, owning super-group of a node id, the active super-group
// list) and performs the single mutation the viewer supports: combining
// node-groups.
//
// The manager is a single-writer structure. Combine invalidates every
// rendering-id mapping derived from it, so callers must rebuild their
// projections after a successful mutation.
package groupman

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// Manager holds the grouping model for one loaded group file.
type Manager struct {
	sourceFile string
	path       model.SuperGroupList

	// Lookup caches, built by InitLookups and kept current by Combine.
	allNodes map[int]*model.NodeDef
	nodeLocs map[int]model.NodeLoc
}

// New returns an empty manager. Use Load or Parse to populate it.
func New() *Manager {
	return &Manager{
		allNodes: make(map[int]*model.NodeDef),
		nodeLocs: make(map[int]model.NodeLoc),
	}
}

// fileSuperGroup mirrors the on-disk YAML shape of one super-group.
type fileSuperGroup struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name,omitempty"`
	Synthetic bool              `yaml:"synthetic,omitempty"`
	Groups    [][]model.NodeDef `yaml:"groups"`
}

// fileDoc mirrors the top-level YAML document.
type fileDoc struct {
	Source      string           `yaml:"source,omitempty"`
	SuperGroups []fileSuperGroup `yaml:"supergroups"`
}

// Load reads and parses a group definition file. Lookup caches are not
// built yet; callers typically Sanitize against a flowchart first and then
// call InitLookups.
func Load(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading group file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing group file %s: %w", path, err)
	}
	m.sourceFile = path
	return m, nil
}

// Parse builds a manager from YAML group-definition content.
func Parse(data []byte) (*Manager, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling groups: %w", err)
	}
	if len(doc.SuperGroups) == 0 {
		return nil, fmt.Errorf("no supergroups defined")
	}

	m := New()
	m.sourceFile = doc.Source
	for _, fsg := range doc.SuperGroups {
		sg := &model.SuperGroup{
			ID:        fsg.ID,
			Name:      fsg.Name,
			Synthetic: fsg.Synthetic,
		}
		for gi, nodes := range fsg.Groups {
			if len(nodes) == 0 {
				return nil, fmt.Errorf("supergroup %s: group %d is empty", fsg.ID, gi)
			}
			ng := &model.NodeGroup{}
			for i := range nodes {
				nd := nodes[i]
				ng.Nodes = append(ng.Nodes, &nd)
			}
			sg.Groups = append(sg.Groups, ng)
		}
		if len(sg.Groups) == 0 {
			return nil, fmt.Errorf("supergroup %s has no groups", fsg.ID)
		}
		m.path = append(m.path, sg)
	}
	return m, nil
}

// SourceFile returns the path (or document source tag) the model came from.
func (m *Manager) SourceFile() string {
	return m.sourceFile
}

// PathList returns the active super-group list. The returned slice is the
// manager's own; treat it as read-only.
func (m *Manager) PathList() model.SuperGroupList {
	return m.path
}

// InitLookups (re)builds the node-id caches: the flat node table and the
// node-id to owning super-group/node-group index.
func (m *Manager) InitLookups() {
	m.allNodes = make(map[int]*model.NodeDef)
	m.nodeLocs = make(map[int]model.NodeLoc)
	for _, sg := range m.path {
		for _, ng := range sg.Groups {
			for _, nd := range ng.Nodes {
				m.allNodes[nd.ID] = nd
				m.nodeLocs[nd.ID] = model.NodeLoc{SG: sg, NG: ng, ND: nd}
			}
		}
	}
	debug.Log("groupman: lookups built, %d nodes, %d supergroups", len(m.allNodes), len(m.path))
}

// NodeDef returns the node definition with the given id, or nil.
func (m *Manager) NodeDef(id int) *model.NodeDef {
	return m.allNodes[id]
}

// FindNodeLoc returns the hierarchy location owning node id, or nil if the
// id is unknown (a lookup miss, not an error).
func (m *Manager) FindNodeLoc(id int) *model.NodeLoc {
	loc, ok := m.nodeLocs[id]
	if !ok {
		return nil
	}
	return &loc
}

// FirstNode returns the first node definition of the first node-group on
// the active path, or nil for an empty model.
func (m *Manager) FirstNode() *model.NodeDef {
	ng := m.path.FirstGroup()
	return ng.FirstNode()
}

// NodeCount returns the number of node definitions known to the manager.
func (m *Manager) NodeCount() int {
	return len(m.allNodes)
}

// Combine merges the given node-groups into a single node-group under a
// fresh super-group. All input groups are detached from their previous
// owners; super-groups left empty are dropped from the path. The merged
// group's nodes are ordered by start address so the display text stays
// deterministic.
//
// Combine requires at least two distinct groups and returns the new
// super-group on success. Lookup caches are rebuilt before returning, so
// the mutation is never observable half-applied.
func (m *Manager) Combine(groups model.NodeGroupList) (*model.SuperGroup, error) {
	distinct := make(map[*model.NodeGroup]bool, len(groups))
	for _, ng := range groups {
		if ng != nil {
			distinct[ng] = true
		}
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("combine needs at least two distinct node-groups, got %d", len(distinct))
	}

	merged := &model.NodeGroup{}
	for _, sg := range m.path {
		for _, ng := range sg.Groups {
			if distinct[ng] {
				merged.Nodes = append(merged.Nodes, ng.Nodes...)
			}
		}
	}
	if len(merged.Nodes) == 0 {
		return nil, fmt.Errorf("combine: groups not owned by this manager")
	}
	sort.Slice(merged.Nodes, func(i, j int) bool {
		return merged.Nodes[i].Start < merged.Nodes[j].Start
	})

	// Detach the merged groups, dropping emptied super-groups.
	var newPath model.SuperGroupList
	for _, sg := range m.path {
		var kept model.NodeGroupList
		for _, ng := range sg.Groups {
			if !distinct[ng] {
				kept = append(kept, ng)
			}
		}
		if len(kept) > 0 {
			sg.Groups = kept
			newPath = append(newPath, sg)
		}
	}

	nsg := &model.SuperGroup{
		ID:     fmt.Sprintf("merged_%d", merged.Nodes[0].ID),
		Name:   fmt.Sprintf("Merged (%d nodes)", len(merged.Nodes)),
		Groups: model.NodeGroupList{merged},
	}
	m.path = append(newPath, nsg)
	m.InitLookups()

	debug.Log("groupman: combined %d groups into %s", len(distinct), nsg.ID)
	return nsg, nil
}
