// Package tui renders a paginator in the terminal with bubbletea. It is a
// messaging surface like slack: the paginator view "sends" and "edits" a
// message that the model displays, and key presses become interactions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/eachlabs/pager/internal/pager"
	"github.com/eachlabs/pager/internal/session"
)

var (
	// Colors
	pagerPurple = lipgloss.Color("#A855F7")
	pagerGreen  = lipgloss.Color("#22C55E")
	pagerRed    = lipgloss.Color("#EF4444")
	pagerGray   = lipgloss.Color("#6B7280")
	pagerWhite  = lipgloss.Color("#F9FAFB")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(pagerPurple)

	embedTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(pagerGreen)

	bodyStyle = lipgloss.NewStyle().
			Foreground(pagerWhite)

	fieldNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(pagerPurple)

	footerStyle = lipgloss.NewStyle().
			Foreground(pagerGray)

	buttonStyle = lipgloss.NewStyle().
			Foreground(pagerWhite).
			Background(pagerPurple).
			Padding(0, 1)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(pagerGray).
				Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Foreground(pagerGreen)

	endedStyle = lipgloss.NewStyle().
			Foreground(pagerRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(pagerGray)
)

// Messages delivered by the transport into the bubbletea loop.
type renderMsg struct {
	payload  *pager.Payload
	controls *pager.Controls
}

type deleteMsg struct{}

// Transport delivers sends and edits to the running program.
type Transport struct {
	program *tea.Program
}

// SetProgram binds the transport to the program. Must be called before
// the paginator session begins.
func (t *Transport) SetProgram(p *tea.Program) { t.program = p }

type localHandle struct{ id string }

func (h localHandle) ID() string { return h.id }

func (t *Transport) Send(_ context.Context, p *pager.Payload, c *pager.Controls) (pager.MessageHandle, error) {
	t.program.Send(renderMsg{payload: p, controls: c})
	return localHandle{id: uuid.New().String()}, nil
}

func (t *Transport) Edit(_ context.Context, _ pager.MessageHandle, p *pager.Payload, c *pager.Controls) error {
	t.program.Send(renderMsg{payload: p, controls: c})
	return nil
}

func (t *Transport) Delete(context.Context, pager.MessageHandle) error {
	t.program.Send(deleteMsg{})
	return nil
}

// localInteraction is a key press bound to a control.
type localInteraction struct {
	program   *tea.Program
	control   pager.ControlID
	optionKey string
}

func (i localInteraction) UserID() string           { return "local" }
func (i localInteraction) Control() pager.ControlID { return i.control }
func (i localInteraction) OptionKey() string        { return i.optionKey }

func (i localInteraction) RespondEdit(_ context.Context, p *pager.Payload, c *pager.Controls) error {
	i.program.Send(renderMsg{payload: p, controls: c})
	return nil
}

func (i localInteraction) DeferDelete(context.Context) error {
	i.program.Send(deleteMsg{})
	return nil
}

type keyMap struct {
	First key.Binding
	Prev  key.Binding
	Next  key.Binding
	Last  key.Binding
	Back  key.Binding
	Stop  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Back, k.Stop}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.First, k.Prev, k.Next, k.Last},
		{k.Back, k.Stop, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "b"),
			key.WithHelp("b", "back"),
		),
		Stop: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "stop"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// Model is the bubbletea model for the paginator surface.
type Model struct {
	viewport viewport.Model
	keys     keyMap
	help     help.Model

	payload  *pager.Payload
	controls *pager.Controls
	ended    bool

	width  int
	height int
	ready  bool

	begin    func() error
	dispatch func(control pager.ControlID, optionKey string)
}

func newModel(begin func() error, dispatch func(pager.ControlID, string)) Model {
	return Model{
		viewport: viewport.New(80, 20),
		keys:     defaultKeyMap(),
		help:     help.New(),
		begin:    begin,
		dispatch: dispatch,
	}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		if err := m.begin(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

type errMsg struct{ err error }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.ended {
			// Any control key after the session ended just quits.
			if key.Matches(msg, m.keys.Stop) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.First):
			return m, m.press(pager.ControlFirst, "")
		case key.Matches(msg, m.keys.Prev):
			return m, m.press(pager.ControlPrev, "")
		case key.Matches(msg, m.keys.Next):
			return m, m.press(pager.ControlNext, "")
		case key.Matches(msg, m.keys.Last):
			return m, m.press(pager.ControlLast, "")
		case key.Matches(msg, m.keys.Back):
			return m, m.press(pager.ControlBack, "")
		case key.Matches(msg, m.keys.Stop):
			return m, m.pressStop()
		default:
			// Digit keys select drill-down options.
			s := msg.String()
			if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
				idx := int(s[0] - '1')
				if m.controls != nil && idx < len(m.controls.Select) {
					return m, m.pressOption(m.controls.Select[idx].Key())
				}
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		controlsHeight := 6
		viewportHeight := m.height - headerHeight - controlsHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(m.width-2, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width - 2
			m.viewport.Height = viewportHeight
		}
		m.updateViewport()
		return m, nil

	case renderMsg:
		m.payload = msg.payload
		m.controls = msg.controls
		if m.controls == nil || m.controls.Disabled {
			m.ended = true
		}
		m.updateViewport()
		return m, nil

	case deleteMsg:
		return m, tea.Quit

	case errMsg:
		m.payload = pager.Text(fmt.Sprintf("error: %v", msg.err))
		m.controls = nil
		m.ended = true
		m.updateViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) press(control pager.ControlID, optionKey string) tea.Cmd {
	b := m.controls.Button(control)
	if b == nil || b.Disabled {
		return nil
	}
	return m.send(control, optionKey)
}

func (m Model) pressStop() tea.Cmd {
	if m.controls.Button(pager.ControlStop) == nil {
		return tea.Quit
	}
	return m.send(pager.ControlStop, "")
}

func (m Model) pressOption(optionKey string) tea.Cmd {
	return m.send(pager.ControlNavigate, optionKey)
}

func (m Model) send(control pager.ControlID, optionKey string) tea.Cmd {
	dispatch := m.dispatch
	return func() tea.Msg {
		dispatch(control, optionKey)
		return nil
	}
}

func (m *Model) updateViewport() {
	if m.payload == nil {
		m.viewport.SetContent("Loading...")
		return
	}

	var content strings.Builder
	if m.payload.Text != "" {
		content.WriteString(bodyStyle.Render(m.payload.Text))
	} else if e := m.payload.Embed; e != nil {
		if e.Title != "" {
			content.WriteString(embedTitleStyle.Render(e.Title) + "\n\n")
		}
		if e.Body != "" {
			content.WriteString(bodyStyle.Render(e.Body) + "\n")
		}
		for _, f := range e.Fields {
			content.WriteString("\n" + fieldNameStyle.Render(f.Name) + "\n")
			content.WriteString(bodyStyle.Render(f.Value) + "\n")
		}
		if e.Footer != "" {
			content.WriteString("\n" + footerStyle.Render(e.Footer))
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("pager") + "\n")
	b.WriteString(strings.Repeat("─", max(m.width-2, 1)) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(strings.Repeat("─", max(m.width-2, 1)) + "\n")

	if m.ended {
		b.WriteString(endedStyle.Render("Session ended") + "  " + helpStyle.Render("q to quit"))
		return b.String()
	}

	b.WriteString(m.renderControls() + "\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderControls() string {
	if m.controls == nil {
		return ""
	}

	var parts []string
	for _, btn := range m.controls.Buttons {
		style := buttonStyle
		if btn.Disabled {
			style = buttonDisabledStyle
		}
		parts = append(parts, style.Render(btn.Label))
	}
	line := strings.Join(parts, " ")

	if len(m.controls.Select) > 0 {
		var opts []string
		for i, opt := range m.controls.Select {
			label := opt.Label
			if opt.Description != "" {
				label += " " + footerStyle.Render("("+opt.Description+")")
			}
			opts = append(opts, optionStyle.Render(fmt.Sprintf("%d.", i+1))+" "+label)
		}
		line += "\n" + strings.Join(opts, "  ")
	}
	return line
}

// Run displays a paginator over the given sources and blocks until the
// session ends and the user quits.
func Run(ctx context.Context, mgr *session.Manager, cfg pager.ViewConfig) error {
	sess := mgr.NewSession()
	tr := &Transport{}

	view, err := pager.NewView(tr, cfg)
	if err != nil {
		return err
	}

	var program *tea.Program
	begin := func() error {
		return sess.Begin(ctx, view)
	}
	dispatch := func(control pager.ControlID, optionKey string) {
		in := localInteraction{program: program, control: control, optionKey: optionKey}
		err := mgr.Dispatch(ctx, sess.ID, in)
		if err != nil && !errors.Is(err, pager.ErrStopped) {
			fmt.Printf("[tui] interaction failed: %v\n", err)
		}
	}

	program = tea.NewProgram(newModel(begin, dispatch), tea.WithAltScreen())
	tr.SetProgram(program)

	_, err = program.Run()
	return err
}
