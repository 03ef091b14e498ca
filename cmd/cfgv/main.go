package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vanderheijden86/cfgview/internal/datasource"
	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/export"
	"github.com/vanderheijden86/cfgview/pkg/graphview"
	"github.com/vanderheijden86/cfgview/pkg/ui"
	"github.com/vanderheijden86/cfgview/pkg/version"
)

func main() {
	viewFlag := flag.String("view", "", "Start view mode: single or combined (overrides config)")
	snapshotFlag := flag.String("snapshot", "", "Render the graph to the given file (.svg or .png) and exit")
	presetFlag := flag.String("preset", "", "Snapshot layout preset: compact or roomy")
	noWatch := flag.Bool("no-watch", false, "Disable live reload when input files change")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	helpFlag := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *helpFlag {
		fmt.Println("Usage: cfgv [options] <flowchart.(json|db)> <groups.yaml>")
		fmt.Println("\nA TUI viewer for grouped control-flow graphs.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("cfgv %s\n", version.Version)
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: cfgv [options] <flowchart.(json|db)> <groups.yaml>")
		os.Exit(2)
	}
	flowchartPath, groupPath := flag.Arg(0), flag.Arg(1)

	opts, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load config: %v\n", err)
		os.Exit(1)
	}
	if *debugFlag {
		opts.Debug = true
		debug.SetEnabled(true)
	}
	if *viewFlag != "" {
		mode := config.ViewMode(*viewFlag)
		if !mode.Valid() {
			fmt.Fprintf(os.Stderr, "Unknown view mode %q (want single or combined)\n", *viewFlag)
			os.Exit(2)
		}
		opts.StartViewMode = mode
	}

	if *snapshotFlag != "" {
		if err := writeSnapshot(flowchartPath, groupPath, opts, *snapshotFlag, *presetFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *snapshotFlag)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "cfgv needs a terminal; use --snapshot for non-interactive rendering")
		os.Exit(1)
	}

	m, err := ui.New(ui.AppConfig{
		FlowchartPath: flowchartPath,
		GroupPath:     groupPath,
		Options:       opts,
		Watch:         !*noWatch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// snapshotSurface is the minimal surface for headless rendering: it runs
// the projection once and keeps the graph for the exporter.
type snapshotSurface struct {
	sess *graphview.Session
	mg   *graphview.MutableGraph
}

func (s *snapshotSurface) RequestRefresh(mode graphview.RefreshMode) {
	s.sess.Refresh(s.mg, mode)
}

func (s *snapshotSurface) JumpTo(id int) {}
func (s *snapshotSurface) Close()        {}

func writeSnapshot(flowchartPath, groupPath string, opts config.Options, outPath, preset string) error {
	fc, gm, err := datasource.Load(context.Background(), flowchartPath, groupPath)
	if err != nil {
		return err
	}
	sess := graphview.NewSession(fc, gm, opts, nil)
	surf := &snapshotSurface{sess: sess, mg: graphview.NewMutableGraph()}
	sess.Attach(surf)

	return export.SaveSnapshot(export.SnapshotOptions{
		Path:   outPath,
		Title:  fc.Title,
		Preset: preset,
		Graph:  surf.mg,
		Nodes:  sess,
	})
}
