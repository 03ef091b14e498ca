package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cfgview/internal/datasource"
	"github.com/vanderheijden86/cfgview/pkg/analysis"
	"github.com/vanderheijden86/cfgview/pkg/colorgen"
	"github.com/vanderheijden86/cfgview/pkg/config"
	"github.com/vanderheijden86/cfgview/pkg/debug"
	"github.com/vanderheijden86/cfgview/pkg/export"
	"github.com/vanderheijden86/cfgview/pkg/graphview"
	"github.com/vanderheijden86/cfgview/pkg/groupman"
	"github.com/vanderheijden86/cfgview/pkg/model"
	"github.com/vanderheijden86/cfgview/pkg/watcher"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusGraph
)

// fileChangedMsg reports that one of the watched input files changed on
// disk.
type fileChangedMsg struct{ path string }

// AppConfig bundles everything main needs to hand over.
type AppConfig struct {
	FlowchartPath string
	GroupPath     string
	Options       config.Options
	Watch         bool
}

// Model is the root bubbletea model: chooser tree on the left, graph
// pane on the right, status bar below, modal prompts and overlays on
// top.
type Model struct {
	cfg   AppConfig
	theme Theme

	fc   *model.Flowchart
	gm   *groupman.Manager
	sess *graphview.Session
	pane *GraphPane
	tree *TreeModel
	reg  *graphview.Registry

	prompt       *PromptModel
	showHelp     bool
	showInsights bool
	insights     []string

	focus    focusArea
	status   string
	width    int
	height   int
	quitting bool

	watchers []*watcher.Watcher
}

// New loads the input files and assembles the application model.
func New(cfg AppConfig) (*Model, error) {
	fc, gm, err := datasource.Load(context.Background(), cfg.FlowchartPath, cfg.GroupPath)
	if err != nil {
		return nil, err
	}
	m := newModel(cfg, fc, gm, DefaultTheme(lipgloss.DefaultRenderer()))

	if cfg.Watch {
		for _, path := range []string{cfg.FlowchartPath, cfg.GroupPath} {
			w, err := watcher.New(path,
				watcher.WithDebounceDuration(300*time.Millisecond),
				watcher.WithOnError(func(err error) {
					debug.Log("watch %s: %v", path, err)
				}),
			)
			if err != nil {
				return nil, fmt.Errorf("watching %s: %w", path, err)
			}
			m.watchers = append(m.watchers, w)
		}
	}
	return m, nil
}

func newModel(cfg AppConfig, fc *model.Flowchart, gm *groupman.Manager, theme Theme) *Model {
	m := &Model{
		cfg:   cfg,
		theme: theme,
		fc:    fc,
		gm:    gm,
		reg:   graphview.NewRegistry(),
	}
	m.wireSession()
	return m
}

// wireSession builds a fresh session over the current flowchart and
// manager and attaches the panes to it.
func (m *Model) wireSession() {
	m.sess = graphview.NewSession(m.fc, m.gm, m.cfg.Options, m.setStatus)
	m.tree = NewTreeModel(m.gm, m.theme)
	m.sess.SetHooks(graphview.Hooks{
		PromptSearch: func(last string, submit func(string)) {
			m.prompt = NewPrompt("Find group", last, m.theme, submit)
			m.prompt.SetWidth(m.width / 2)
		},
		PromptDescription: func(current string, submit func(string)) {
			m.prompt = NewPrompt("Edit description", current, m.theme, submit)
			m.prompt.SetWidth(m.width / 2)
		},
		RefreshChooser: func() { m.tree.Rebuild() },
	})
	m.sess.InstallMenu(m.reg)
	m.pane = NewGraphPane(m.sess, m.theme)
	if m.width > 0 {
		m.applySize()
	}
	m.sess.Attach(m.pane)
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

// Init starts the file watchers.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, w := range m.watchers {
		w := w
		if err := w.Start(); err != nil {
			m.setStatus("watch %s: %v", w.Path(), err)
			continue
		}
		cmds = append(cmds, waitForChange(w))
	}
	return tea.Batch(cmds...)
}

func waitForChange(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changed(); !ok {
			return nil
		}
		return fileChangedMsg{path: w.Path()}
	}
}

// Update handles terminal events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.applySize()
		return m, nil

	case fileChangedMsg:
		m.reload()
		for _, w := range m.watchers {
			if w.Path() == msg.path {
				return m, waitForChange(w)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		if done, _ := m.prompt.Update(msg); done {
			m.prompt = nil
		}
		return m, nil
	}
	if m.showHelp || m.showInsights {
		m.showHelp, m.showInsights = false, false
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()
	case "tab":
		if m.focus == focusTree {
			m.focus = focusGraph
		} else {
			m.focus = focusTree
		}
		return m, nil
	case "up", "k":
		if m.focus == focusTree {
			m.tree.MoveUp()
		} else {
			m.pane.MovePrev()
		}
		return m, nil
	case "down", "j":
		if m.focus == focusTree {
			m.tree.MoveDown()
		} else {
			m.pane.MoveNext()
		}
		return m, nil
	case "enter":
		if m.focus == focusTree {
			if ng := m.tree.CurrentGroup(); ng != nil {
				m.sess.JumpToGroup(ng)
			} else if sg := m.tree.CurrentSuperGroup(); sg != nil {
				m.sess.EditDescriptionOf(sg)
			}
		} else {
			m.pane.Activate()
		}
		return m, nil
	case " ", "space":
		if m.focus == focusTree {
			m.highlightTreeScope()
		}
		return m, nil
	case "r":
		m.sess.RefreshView()
		return m, nil
	case "n":
		m.cfg.Options.AppendNodeID = !m.cfg.Options.AppendNodeID
		if err := config.Save(m.cfg.Options); err != nil {
			debug.Log("saving options: %v", err)
		}
		m.pane.Close()
		m.wireSession()
		m.setStatus("append node id: %v", m.cfg.Options.AppendNodeID)
		return m, nil
	case "y":
		m.copyCurrentNode()
		return m, nil
	case "w":
		m.writeSnapshot()
		return m, nil
	case "i":
		m.insights = analysis.Analyze(m.fc).Insights(m.fc)
		m.showInsights = true
		return m, nil
	case "?":
		m.showHelp = true
		return m, nil
	}

	key := msg.String()
	if len(key) == 1 && m.reg.DispatchKey(strings.ToUpper(key)) {
		return m, nil
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	for _, w := range m.watchers {
		w.Stop()
	}
	m.pane.Close()
	return m, tea.Quit
}

// reload re-reads both input files and rebuilds the session on top of
// the fresh data. The old session tears down first so its menu entries
// leave the registry.
func (m *Model) reload() {
	fc, gm, err := datasource.Load(context.Background(), m.cfg.FlowchartPath, m.cfg.GroupPath)
	if err != nil {
		m.setStatus("reload failed: %v", err)
		return
	}
	m.pane.Close()
	m.fc, m.gm = fc, gm
	m.wireSession()
	m.setStatus("reloaded %s", m.fc.Title)
}

// highlightTreeScope highlights whatever the chooser cursor rests on:
// one node-group, a whole super-group, or the full path list on the
// header row. Highlights are applied deferred and repainted once.
func (m *Model) highlightTreeScope() {
	cg := colorgen.New()
	switch {
	case m.tree.CurrentGroup() != nil:
		m.sess.HighlightGroup(m.tree.CurrentGroup(), cg.NextFamily().NextColor(), true)
	case m.tree.CurrentSuperGroup() != nil:
		m.sess.HighlightGroupList(m.tree.CurrentSuperGroup().Groups, cg, true)
	default:
		m.sess.HighlightSuperGroups(m.gm.PathList(), cg, true)
	}
	m.sess.RefreshView()
}

func (m *Model) copyCurrentNode() {
	id := m.pane.CursorNode()
	text, _, ok := m.sess.NodeText(id)
	if !ok {
		m.setStatus("nothing to copy")
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.setStatus("clipboard: %v", err)
		return
	}
	m.setStatus("copied node %d", id)
}

func (m *Model) writeSnapshot() {
	path := fmt.Sprintf("cfgview-%s.svg", time.Now().Format("20060102-150405"))
	err := export.SaveSnapshot(export.SnapshotOptions{
		Path:  path,
		Title: m.fc.Title,
		Graph: m.pane.Graph(),
		Nodes: m.sess,
	})
	if err != nil {
		m.setStatus("snapshot: %v", err)
		return
	}
	m.setStatus("wrote %s", path)
}

func (m *Model) applySize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	treeWidth := m.width / 3
	if treeWidth > 48 {
		treeWidth = 48
	}
	body := m.height - 2 // status bar and header
	m.tree.SetHeight(body - 2)
	if m.pane != nil {
		m.pane.SetSize(m.width-treeWidth-4, body)
	}
}

// View renders the full screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}

	treeWidth := m.width / 3
	if treeWidth > 48 {
		treeWidth = 48
	}
	body := m.height - 2

	treeBox := m.theme.Base.
		Width(treeWidth).
		Height(body).
		Render(m.tree.View(m.focus == focusTree))
	graphBox := m.theme.Base.
		Width(m.width - treeWidth - 1).
		Height(body).
		Render(m.pane.View())

	screen := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, treeBox, " ", graphBox),
		m.statusLine(),
	)

	if overlay := m.overlay(); overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return screen
}

func (m *Model) overlay() string {
	switch {
	case m.prompt != nil:
		return m.prompt.View()
	case m.showHelp:
		return m.theme.NodeBox.Render(RenderHelp(m.reg.Items(), m.width-8))
	case m.showInsights:
		return m.theme.NodeBox.Render(
			m.theme.Header.Render("Flowchart insights") + "\n" +
				strings.Join(m.insights, "\n"))
	}
	return ""
}

func (m *Model) statusLine() string {
	mode := "combined"
	if m.sess.Mode() == graphview.RefreshSingle {
		mode = "single"
	}
	left := fmt.Sprintf(" %s · %s view · %d sel · %d hl",
		truncate(m.fc.Title, 32), mode, m.sess.SelectionSize(), m.sess.HighlightSize())
	if m.sess.InSelectionMode() {
		left += " · SELECT"
	}
	right := m.status
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the program with the alternate screen enabled.
func (m *Model) Run() error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
