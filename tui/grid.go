package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/phanxgames/eraconsole"
)

// Cell size in console pixels. One text line (LineHeight 30) maps to one
// terminal row.
const (
	CellWidth  = 10
	CellHeight = 30
)

// Font measures text in console pixels on the terminal cell grid.
var Font = eraconsole.CellFont{CellWidth: CellWidth, CellHeight: CellHeight}

type cell struct {
	r     rune
	fg    eraconsole.RGB
	bg    eraconsole.RGB
	hasBG bool
	cont  bool // right half of a wide rune
}

// Grid is a Surface that rasterizes console drawing onto terminal cells.
// Pixel coordinates are divided by the cell size; images are sampled once
// per cell and shown as background color.
type Grid struct {
	cols, rows int
	cells      []cell
}

// NewGrid creates a blank grid.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{}
	g.Resize(cols, rows)
	return g
}

// Resize changes the grid size and clears it.
func (g *Grid) Resize(cols, rows int) {
	g.cols, g.rows = max(cols, 0), max(rows, 0)
	g.cells = make([]cell, g.cols*g.rows)
	g.Clear()
}

// Size returns the grid size in cells.
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = cell{r: ' ', fg: eraconsole.ColorWhite}
	}
}

func (g *Grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row*g.cols+col]
}

// cellRect converts a pixel rect to the cell span it covers.
func cellRect(r eraconsole.Rect) (c0, r0, c1, r1 int) {
	c0 = int(r.X) / CellWidth
	r0 = int(r.Y) / CellHeight
	c1 = (int(r.X+r.Width) + CellWidth - 1) / CellWidth
	r1 = (int(r.Y+r.Height) + CellHeight - 1) / CellHeight
	return
}

func (g *Grid) FillRect(r eraconsole.Rect, c eraconsole.RGB) {
	c0, r0, c1, r1 := cellRect(r)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			if p := g.at(col, row); p != nil {
				p.bg, p.hasBG = c, true
			}
		}
	}
}

func (g *Grid) StrokeRect(r eraconsole.Rect, c eraconsole.RGB) {
	c0, r0, c1, r1 := cellRect(r)
	for col := c0; col < c1; col++ {
		g.setFG(col, r0, c)
		g.setFG(col, r1-1, c)
	}
	for row := r0; row < r1; row++ {
		g.setFG(c0, row, c)
		g.setFG(c1-1, row, c)
	}
}

func (g *Grid) setFG(col, row int, c eraconsole.RGB) {
	if p := g.at(col, row); p != nil {
		p.fg = c
	}
}

func (g *Grid) DrawText(s string, x, y float64, c eraconsole.RGB) {
	row := int(y+CellHeight/2) / CellHeight
	col := int(x) / CellWidth
	for _, r := range s {
		if r == '\n' {
			row++
			col = int(x) / CellWidth
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if p := g.at(col, row); p != nil {
			p.r, p.fg, p.cont = r, c, false
		}
		if w == 2 {
			if p := g.at(col+1, row); p != nil {
				p.r, p.fg, p.cont = 0, c, true
			}
		}
		col += w
	}
}

func (g *Grid) DrawImage(img *image.RGBA, x, y float64) {
	b := img.Bounds()
	c0, r0, c1, r1 := cellRect(eraconsole.Rect{X: x, Y: y, Width: float64(b.Dx()), Height: float64(b.Dy())})
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			p := g.at(col, row)
			if p == nil {
				continue
			}
			px := b.Min.X + col*CellWidth - int(x) + CellWidth/2
			py := b.Min.Y + row*CellHeight - int(y) + CellHeight/2
			if !(image.Point{X: px, Y: py}.In(b)) {
				continue
			}
			rgba := img.RGBAAt(px, py)
			if rgba.A == 0 {
				continue
			}
			p.bg, p.hasBG = eraconsole.RGB{R: rgba.R, G: rgba.G, B: rgba.B}, true
		}
	}
}

// Row returns the plain runes of one row, for tests and logs.
func (g *Grid) Row(row int) string {
	var b strings.Builder
	for col := 0; col < g.cols; col++ {
		p := g.at(col, row)
		if p.cont {
			continue
		}
		b.WriteRune(p.r)
	}
	return strings.TrimRight(b.String(), " ")
}

func hex(c eraconsole.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// Render styles the grid with lipgloss, one run per color change.
func (g *Grid) Render() string {
	var out strings.Builder
	for row := 0; row < g.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		var cur *cell
		flush := func() {
			if cur == nil || run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().Foreground(hex(cur.fg))
			if cur.hasBG {
				st = st.Background(hex(cur.bg))
			}
			out.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col := 0; col < g.cols; col++ {
			p := g.at(col, row)
			if p.cont {
				continue
			}
			if cur == nil || p.fg != cur.fg || p.hasBG != cur.hasBG || (p.hasBG && p.bg != cur.bg) {
				flush()
				cur = p
			}
			run.WriteRune(p.r)
		}
		flush()
	}
	return out.String()
}
