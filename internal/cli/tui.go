package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/objview/pkg/editor"
	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/export"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/interaction"
)

// frameMargin shrinks a framed view so node borders stay on screen.
const frameMargin = 0.9

// panStep is how far an arrow key pans, in cells.
const panStep = 4

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	stateStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key bindings
// =============================================================================

type editorKeys struct {
	Frame    key.Binding
	Delete   key.Binding
	Snap     key.Binding
	Grid     key.Binding
	GridSnap key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var defaultEditorKeys = editorKeys{
	Frame:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "frame")),
	Delete:   key.NewBinding(key.WithKeys("delete", "x"), key.WithHelp("del/x", "delete selected")),
	Snap:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "hold snap")),
	Grid:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "grid")),
	GridSnap: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "always snap")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	Save:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write snapshot")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Frame, k.Delete, k.Snap, k.Save, k.Help, k.Quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Frame, k.ZoomIn, k.ZoomOut},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Delete, k.Snap, k.Grid, k.GridSnap},
		{k.Save, k.Help, k.Quit},
	}
}

// =============================================================================
// view command
// =============================================================================

type viewOpts struct {
	target   targetFlags
	snapshot string
}

// viewCommand creates the view command, the interactive terminal editor.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Walk a struct and edit the graph in the terminal",
		Long: `View walks the root and opens the graph in a terminal editor.

Mouse:
  drag empty space         select nodes in a rubber band (shift adds, ctrl removes, shift+ctrl toggles)
  drag a node              move the selection
  drag from a slot         draw a connection, drop it on a compatible slot
  drag a connection end    reconnect or remove it
  alt+middle drag          pan
  alt+right drag           zoom
  wheel                    zoom at the pointer

Without --type the struct type is asked for, offering the type declared at
the root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runView(cmd, opts)
		},
	}

	opts.target.bind(cmd)
	cmd.Flags().StringVarP(&opts.snapshot, "output", "o", "objview.json", "file written by the snapshot key")

	return cmd
}

func (c *CLI) runView(cmd *cobra.Command, opts viewOpts) error {
	ctx := cmd.Context()

	s, img, err := c.openSession(opts.target.image)
	if err != nil {
		return err
	}
	root, err := resolveRoot(img, opts.target, promptType)
	if err != nil {
		return err
	}
	if _, err := c.walk(ctx, s, root); err != nil {
		if s.Graph.Len() == 0 {
			return err
		}
		printWarning(cmd.ErrOrStderr(), "editing the %d nodes found before: %s", s.Graph.Len(), errors.UserMessage(err))
	}

	// The alternate screen owns the terminal until the editor exits.
	s.Logger.SetOutput(io.Discard)
	defer s.Logger.SetOutput(c.out)

	m := newEditorModel(s, opts.snapshot)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run editor")
	}

	printStats(cmd.OutOrStdout(), s.Graph.Len(), len(s.Graph.Connections()), len(s.Graph.Selected()))
	return nil
}

// =============================================================================
// Editor model
// =============================================================================

// editorModel is the bubbletea front-end of an interaction controller.
// Terminal cells are mapped to view coordinates with [cellCenter].
type editorModel struct {
	session  *editor.Session
	ctrl     *interaction.Controller
	keys     editorKeys
	help     help.Model
	snapshot string

	width, height int
	framed        bool
	message       string
	failed        bool
}

func newEditorModel(s *editor.Session, snapshot string) *editorModel {
	return &editorModel{
		session:  s,
		ctrl:     interaction.New(s, geom.Size{}),
		keys:     defaultEditorKeys,
		help:     help.New(),
		snapshot: snapshot,
	}
}

func (m *editorModel) Init() tea.Cmd { return nil }

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		if !m.framed {
			m.frame()
			m.framed = true
		}

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.KeyMsg:
		return m, m.key(msg)
	}
	return m, nil
}

func (m *editorModel) key(msg tea.KeyMsg) tea.Cmd {
	m.message, m.failed = "", false
	center := geom.Pt(m.ctrl.View().Viewport.W/2, m.ctrl.View().Viewport.H/2)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Frame):
		m.frame()
	case key.Matches(msg, m.keys.Delete):
		n := len(m.session.Graph.Selected())
		m.tap(interaction.KeyDelete)
		if n > 0 {
			m.message = fmt.Sprintf("deleted %d nodes", n)
		}
	case key.Matches(msg, m.keys.Snap):
		// Terminals report no key release, so the snap key toggles.
		if m.ctrl.KeyHeld(interaction.KeySnap) {
			m.ctrl.KeyRelease(interaction.KeySnap)
		} else {
			m.ctrl.KeyPress(interaction.KeySnap)
		}
		m.message = "node snap " + onOff(m.ctrl.NodeSnap())
	case key.Matches(msg, m.keys.Grid):
		m.ctrl.SetShowGrid(!m.ctrl.ShowGrid())
		m.message = "grid " + onOff(m.ctrl.ShowGrid())
	case key.Matches(msg, m.keys.GridSnap):
		m.ctrl.SetSnapToGrid(!m.ctrl.SnapToGrid())
		m.message = "always snap " + onOff(m.ctrl.SnapToGrid())
	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.Wheel(interaction.WheelEvent{Pos: center, Delta: 1})
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.Wheel(interaction.WheelEvent{Pos: center, Delta: -1})
	case key.Matches(msg, m.keys.Up):
		m.ctrl.View().Pan(geom.Pt(0, panStep*cellHeight))
	case key.Matches(msg, m.keys.Down):
		m.ctrl.View().Pan(geom.Pt(0, -panStep*cellHeight))
	case key.Matches(msg, m.keys.Left):
		m.ctrl.View().Pan(geom.Pt(panStep*cellWidth, 0))
	case key.Matches(msg, m.keys.Right):
		m.ctrl.View().Pan(geom.Pt(-panStep*cellWidth, 0))
	case key.Matches(msg, m.keys.Save):
		m.save()
	default:
		m.tap(interaction.Key(msg.String()))
	}
	return nil
}

// tap presses and releases k. Terminals only report key presses.
func (m *editorModel) tap(k interaction.Key) {
	m.ctrl.KeyPress(k)
	m.ctrl.KeyRelease(k)
}

func (m *editorModel) mouse(msg tea.MouseMsg) {
	ev := pointerEvent(msg)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.Wheel(interaction.WheelEvent{Pos: ev.Pos, Delta: 1})
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.Wheel(interaction.WheelEvent{Pos: ev.Pos, Delta: -1})
	case msg.Action == tea.MouseActionPress:
		m.ctrl.Press(ev)
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.Release(ev)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.Move(ev)
	}
}

// pointerEvent converts a terminal mouse message to a controller event.
func pointerEvent(msg tea.MouseMsg) interaction.PointerEvent {
	ev := interaction.PointerEvent{Pos: cellCenter(msg.X, msg.Y)}
	switch msg.Button {
	case tea.MouseButtonLeft:
		ev.Button = interaction.ButtonPrimary
	case tea.MouseButtonMiddle:
		ev.Button = interaction.ButtonMiddle
	case tea.MouseButtonRight:
		ev.Button = interaction.ButtonSecondary
	}
	if msg.Shift {
		ev.Mods |= interaction.ModShift
	}
	if msg.Ctrl {
		ev.Mods |= interaction.ModCtrl
	}
	if msg.Alt {
		ev.Mods |= interaction.ModAlt
	}
	return ev
}

func (m *editorModel) frame() {
	m.tap(interaction.KeyFrame)
	v := m.ctrl.View()
	v.ZoomAt(frameMargin, geom.Pt(v.Viewport.W/2, v.Viewport.H/2))
}

func (m *editorModel) save() {
	f, err := os.Create(m.snapshot)
	if err != nil {
		m.message, m.failed = err.Error(), true
		return
	}
	opts := export.Options{Session: m.session.ID}
	err = export.Write(context.Background(), f, m.session.Graph, export.FormatJSON, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(errors.ErrCodeInternal, cerr, "close %s", m.snapshot)
	}
	if err != nil {
		m.message, m.failed = errors.UserMessage(err), true
		return
	}
	m.message = "wrote " + m.snapshot
}

// resize gives the canvas every row the footer leaves.
func (m *editorModel) resize() {
	rows := m.canvasRows()
	m.ctrl.View().Viewport = geom.Size{W: float64(m.width * cellWidth), H: float64(rows * cellHeight)}
}

func (m *editorModel) canvasRows() int {
	return max(m.height-lipgloss.Height(m.footer()), 0)
}

func (m *editorModel) View() string {
	if m.width == 0 {
		return "loading..."
	}
	cv := newCanvas(m.width, m.canvasRows())
	drawScene(cv, m.ctrl, m.session.Config.GridSize)
	return cv.String() + "\n" + m.footer()
}

func (m *editorModel) footer() string {
	g := m.session.Graph
	status := fmt.Sprintf("%s  %3.0f%%  %d nodes · %d connections · %d selected",
		stateStyle.Render(m.ctrl.State().String()),
		m.ctrl.View().Scale*100,
		g.Len(), len(g.Connections()), len(g.Selected()))
	if m.message != "" {
		style := StyleHighlight
		if m.failed {
			style = errorStyle
		}
		status += "  " + style.Render(m.message)
	}
	return statusStyle.Render(status) + "\n" + m.help.View(m.keys)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// =============================================================================
// Type prompt
// =============================================================================

// promptModel asks for the root struct type.
type promptModel struct {
	input  textinput.Model
	answer string
	ok     bool
	done   bool
}

func newPromptModel(def string) promptModel {
	ti := textinput.New()
	ti.Prompt = "struct type: "
	ti.Placeholder = "struct name"
	ti.CharLimit = 128
	ti.Width = 40
	ti.SetValue(def)
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.answer, m.ok, m.done = strings.TrimSpace(m.input.Value()), true, true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		return ""
	}
	return StyleTitle.Render("Walk root") + "\n" + m.input.View() + "\n" + StyleDim.Render("enter: walk  esc: cancel") + "\n"
}

// promptType asks for the root type on the terminal. It implements the
// image host prompt.
func promptType(def string) (string, bool) {
	res, err := tea.NewProgram(newPromptModel(def)).Run()
	if err != nil {
		return "", false
	}
	m := res.(promptModel)
	return m.answer, m.ok
}
