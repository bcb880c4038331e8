package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phanxgames/eraconsole"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsole(t *testing.T) *eraconsole.Console {
	t.Helper()
	eraconsole.SetLogOutput(nil)
	cfg := eraconsole.DefaultConfig()
	cfg.LogFile = ""
	c := eraconsole.NewConsole(cfg, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGrid_DrawText(t *testing.T) {
	g := NewGrid(12, 3)
	g.DrawText("hi", 10, 10, eraconsole.ColorWhite)
	g.DrawText("漢x", 20, 40, eraconsole.ColorMenu)

	assert.Equal(t, " hi", g.Row(0))
	assert.Equal(t, "  漢x", g.Row(1))
	assert.Equal(t, "", g.Row(2))
}

func TestGrid_ClipsOutside(t *testing.T) {
	g := NewGrid(4, 1)
	g.DrawText("abcdefgh", 0, 0, eraconsole.ColorWhite)
	g.DrawText("z", -50, 500, eraconsole.ColorWhite)
	g.FillRect(eraconsole.Rect{X: -100, Y: -100, Width: 1000, Height: 1000}, eraconsole.ColorError)
	assert.Equal(t, "abcd", g.Row(0))
}

func TestGrid_DrawImageSamplesCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
		for x := 10; x < 20; x++ {
			img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	g := NewGrid(4, 2)
	g.DrawImage(img, 10, 0)

	require.True(t, g.at(1, 0).hasBG)
	assert.Equal(t, eraconsole.RGB{R: 255}, g.at(1, 0).bg)
	assert.Equal(t, eraconsole.RGB{B: 255}, g.at(2, 0).bg)
	assert.False(t, g.at(0, 0).hasBG)
	assert.False(t, g.at(1, 1).hasBG)
}

func TestGrid_RenderKeepsText(t *testing.T) {
	g := NewGrid(6, 2)
	g.DrawText("ok", 0, 0, eraconsole.ColorError)
	out := g.Render()
	assert.Contains(t, out, "ok")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestModel_ResizeSetsViewport(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	w, h := c.Viewport()
	assert.Equal(t, 800, w)
	assert.Equal(t, 720, h)
	cols, rows := m.grid.Size()
	assert.Equal(t, 80, cols)
	assert.Equal(t, 23, rows)
}

func TestModel_ViewShowsContent(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	c.AppendText("hello", eraconsole.ColorWhite)
	c.AppendText("world", eraconsole.ColorWhite)
	view := m.View()

	assert.Contains(t, view, "hello")
	assert.Equal(t, " hello", m.grid.Row(0))
	assert.Equal(t, " world", m.grid.Row(1))
}

func TestModel_TypeAndSubmit(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	var got []eraconsole.SubmitEvent
	c.OnSubmit(func(ev eraconsole.SubmitEvent) { got = append(got, ev) })

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("look")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, got, 1)
	assert.Equal(t, "look", got[0].Text)
	assert.Equal(t, eraconsole.SourceKeyboard, got[0].Source)
	assert.Equal(t, "", m.prompt.Value())

	// Up recalls the submitted line into the prompt.
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "look", m.prompt.Value())
}

func TestModel_ClickSubmitsValue(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	c.AppendFragments(eraconsole.Frag("[0] go north").Click("north").Fragments())
	m.View()

	var got []string
	c.OnSubmit(func(ev eraconsole.SubmitEvent) { got = append(got, ev.Text) })

	m.Update(tea.MouseMsg{X: 2, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, []string{"north"}, got)

	// A click on an empty row does nothing.
	m.Update(tea.MouseMsg{X: 2, Y: 15, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Len(t, got, 1)
}

func TestModel_WheelScrolls(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	for range 100 {
		c.AppendText("line", eraconsole.ColorWhite)
	}
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, c.Config().WheelStep, c.History().Offset())

	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 0, c.History().Offset())
}

func TestModel_DoRunsOnConsole(t *testing.T) {
	c := newConsole(t)
	m := New(c)
	m.Update(Do(func(c *eraconsole.Console) {
		c.AppendText("from producer", eraconsole.ColorWhite)
	}))
	assert.Equal(t, 1, c.History().Len())
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := New(newConsole(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
