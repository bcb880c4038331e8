package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/phanxgames/eraconsole"
)

// consoleFuncMsg runs a function against the console on the Bubble Tea
// goroutine.
type consoleFuncMsg struct {
	fn func(*eraconsole.Console)
}

// Do wraps fn as a message. Producers on other goroutines hand console work
// to the program with program.Send(tui.Do(fn)); the console itself is only
// touched from Update.
func Do(fn func(*eraconsole.Console)) tea.Msg {
	return consoleFuncMsg{fn: fn}
}

// commandKeys maps Bubble Tea key types to console keys and modifiers.
var commandKeys = map[tea.KeyType]struct {
	key  eraconsole.Key
	mods eraconsole.KeyModifiers
}{
	tea.KeyEnter:     {eraconsole.KeyEnter, 0},
	tea.KeyUp:        {eraconsole.KeyUp, 0},
	tea.KeyDown:      {eraconsole.KeyDown, 0},
	tea.KeyShiftUp:   {eraconsole.KeyUp, eraconsole.ModShift},
	tea.KeyShiftDown: {eraconsole.KeyDown, eraconsole.ModShift},
	tea.KeyPgUp:      {eraconsole.KeyPageUp, 0},
	tea.KeyPgDown:    {eraconsole.KeyPageDown, 0},
	tea.KeyHome:      {eraconsole.KeyHome, 0},
	tea.KeyEnd:       {eraconsole.KeyEnd, 0},
	tea.KeyEsc:       {eraconsole.KeyEscape, 0},
}

// Model renders a Console in the terminal. The bottom row is the prompt;
// every other row is the console's cell grid.
type Model struct {
	console *eraconsole.Console
	input   *eraconsole.Input
	prompt  textinput.Model
	grid    *Grid
	width   int
	height  int
}

// New creates a model for c. The console font is replaced by the cell font
// so wrapping matches the terminal grid.
func New(c *eraconsole.Console) *Model {
	c.SetFont(Font)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(hex(eraconsole.ColorEcho))
	ti.Focus()

	m := &Model{
		console: c,
		input:   eraconsole.NewInput(c),
		prompt:  ti,
		grid:    NewGrid(0, 0),
	}
	w, h := c.Viewport()
	m.resize(w/CellWidth, h/CellHeight)
	return m
}

// Console returns the driven console.
func (m *Model) Console() *eraconsole.Console {
	return m.console
}

// Input returns the input handler shared with the prompt.
func (m *Model) Input() *eraconsole.Input {
	return m.input
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) resize(cols, rows int) {
	m.width, m.height = cols, rows
	m.grid.Resize(cols, max(rows-1, 0))
	m.console.SetViewport(cols*CellWidth, rows*CellHeight)
	m.prompt.Width = max(cols-len(m.prompt.Prompt)-1, 1)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case consoleFuncMsg:
		msg.fn(m.console)
		return m, nil
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if ck, ok := commandKeys[msg.Type]; ok {
			m.commandKey(ck.key, ck.mods)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// commandKey routes a key through the shared Input so prompt history and
// scrolling behave as in the window frontend.
func (m *Model) commandKey(k eraconsole.Key, mods eraconsole.KeyModifiers) {
	line := m.input.Line()
	line.Set(m.prompt.Value())
	m.input.HandleKey(k, mods)
	m.prompt.SetValue(line.Text())
	m.prompt.CursorEnd()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.input.HandleWheel(1)
	case tea.MouseButtonWheelDown:
		m.input.HandleWheel(-1)
	case tea.MouseButtonLeft:
		x := float64(msg.X*CellWidth + CellWidth/2)
		y := float64(msg.Y*CellHeight + CellHeight/2)
		if m.input.HandleClick(x, y) {
			m.prompt.SetValue("")
		}
	}
}

func (m *Model) View() string {
	m.grid.Clear()
	m.console.Draw(m.grid)
	m.console.DrawStatus(m.grid)
	return m.grid.Render() + "\n" + m.prompt.View()
}
