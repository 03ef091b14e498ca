package datasource

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/cfgview/pkg/model"
)

// jsonDoc mirrors the JSON flowchart export shape.
type jsonDoc struct {
	Title  string      `json:"title,omitempty"`
	Blocks []jsonBlock `json:"blocks"`
	Edges  []jsonEdge  `json:"edges"`
}

type jsonBlock struct {
	ID    int    `json:"id"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

type jsonEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// LoadJSON reads a JSON flowchart export.
func LoadJSON(path string) (*model.Flowchart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flowchart: %w", err)
	}
	return ParseJSON(data, path)
}

// ParseJSON builds a flowchart from JSON content. name is used as the
// title fallback when the document carries none.
func ParseJSON(data []byte, name string) (*model.Flowchart, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling flowchart: %w", err)
	}
	if len(doc.Blocks) == 0 {
		return nil, fmt.Errorf("flowchart %s has no blocks", name)
	}

	title := doc.Title
	if title == "" {
		title = name
	}
	fc := model.NewFlowchart(title)
	for _, b := range doc.Blocks {
		if b.End < b.Start {
			return nil, fmt.Errorf("block %d has end %x before start %x", b.ID, b.End, b.Start)
		}
		fc.AddBlock(model.BasicBlock{ID: b.ID, Start: b.Start, End: b.End})
	}
	for _, e := range doc.Edges {
		fc.AddEdge(e.From, e.To)
	}
	return fc, nil
}
