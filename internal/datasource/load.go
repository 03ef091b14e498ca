package datasource

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
)

// Load reads the flowchart and the group definition file concurrently,
// then sanitizes the grouping against the flowchart so every basic block
// is owned by exactly one node-group.
func Load(ctx context.Context, flowchartPath, groupPath string) (*model.Flowchart, *groupman.Manager, error) {
	var (
		fc *model.Flowchart
		gm *groupman.Manager
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fc, err = LoadFlowchart(flowchartPath)
		return err
	})
	g.Go(func() error {
		var err error
		gm, err = groupman.Load(groupPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if err := gm.Sanitize(fc); err != nil {
		return nil, nil, fmt.Errorf("sanitizing groups against flowchart: %w", err)
	}
	debug.Log("datasource: loaded %d blocks, %d supergroups", fc.Size(), len(gm.PathList()))
	return fc, gm, nil
}

// LoadFlowchart detects the source type and dispatches to the matching
// reader.
func LoadFlowchart(path string) (*model.Flowchart, error) {
	st, err := DetectSource(path)
	if err != nil {
		return nil, err
	}
	switch st {
	case SourceTypeJSON:
		return LoadJSON(path)
	case SourceTypeSQLite:
		return LoadSQLite(path)
	}
	return nil, fmt.Errorf("unsupported source type %q", st)
}
