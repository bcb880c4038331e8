package eraconsole

import (
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ebitenSurface paints onto an ebiten.Image. Uploaded textures for image
// and composite renders are kept across frames and released once a frame
// no longer draws them.
type ebitenSurface struct {
	screen   *ebiten.Image
	font     Font
	textures map[*image.RGBA]*ebiten.Image
	used     map[*image.RGBA]bool

	// scratch receives debug-font glyphs before they are tinted.
	scratch *ebiten.Image
}

func newEbitenSurface() *ebitenSurface {
	return &ebitenSurface{
		textures: make(map[*image.RGBA]*ebiten.Image),
		used:     make(map[*image.RGBA]bool),
	}
}

// begin targets screen for one frame.
func (s *ebitenSurface) begin(screen *ebiten.Image, font Font) {
	s.screen = screen
	s.font = font
	clear(s.used)
}

// end drops textures not drawn this frame.
func (s *ebitenSurface) end() {
	for src, tex := range s.textures {
		if !s.used[src] {
			tex.Deallocate()
			delete(s.textures, src)
		}
	}
	s.screen = nil
}

// TextureCount returns the number of uploaded image textures.
func (s *ebitenSurface) TextureCount() int {
	return len(s.textures)
}

func (s *ebitenSurface) FillRect(r Rect, c RGB) {
	vector.DrawFilledRect(s.screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c.RGBA(), false)
}

func (s *ebitenSurface) StrokeRect(r Rect, c RGB) {
	vector.StrokeRect(s.screen, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, c.RGBA(), false)
}

func (s *ebitenSurface) DrawText(str string, x, y float64, c RGB) {
	switch f := s.font.(type) {
	case *TTFFont:
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, y)
		op.ColorScale.ScaleWithColor(c.RGBA())
		op.LineSpacing = f.LineHeight()
		text.Draw(s.screen, str, f.Face(), op)
	case *BitmapFont:
		f.draw(s.screen, str, x, y, c.RGBA())
	default:
		s.drawDebugText(str, x, y, c)
	}
}

// drawDebugText prints with the built-in debug font. DebugPrintAt only
// draws white, so the glyphs go through a scratch image and are tinted when
// copied to the screen.
func (s *ebitenSurface) drawDebugText(str string, x, y float64, c RGB) {
	w, h := DebugCellFont.MeasureString(str)
	if w <= 0 || h <= 0 {
		return
	}
	iw, ih := int(w)+1, int(h)+1
	if s.scratch == nil || s.scratch.Bounds().Dx() < iw || s.scratch.Bounds().Dy() < ih {
		if s.scratch != nil {
			s.scratch.Deallocate()
		}
		s.scratch = ebiten.NewImage(max(iw, 256), max(ih, 32))
	}
	s.scratch.Clear()
	ebitenutil.DebugPrintAt(s.scratch, str, 0, 0)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.RGBA())
	s.screen.DrawImage(s.scratch.SubImage(image.Rect(0, 0, iw, ih)).(*ebiten.Image), op)
}

func (s *ebitenSurface) DrawImage(img *image.RGBA, x, y float64) {
	tex, ok := s.textures[img]
	if !ok {
		tex = ebiten.NewImageFromImage(img)
		s.textures[img] = tex
	}
	s.used[img] = true
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	s.screen.DrawImage(tex, op)
}

// draw renders s with the glyph page at (x, y), the top-left of the line.
// Newlines start a new line one LineHeight down.
func (f *BitmapFont) draw(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	if f.page == nil {
		return
	}
	var cursorX, cursorY float64
	var prevRune rune
	var hasPrev bool

	op := &ebiten.DrawImageOptions{}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == '\n' {
			cursorX = 0
			cursorY += f.lineHeight
			hasPrev = false
			continue
		}
		g := f.glyph(r)
		if g == nil {
			hasPrev = false
			continue
		}
		kern := int16(0)
		if hasPrev {
			kern = f.kern(prevRune, r)
		}
		if g.width > 0 && g.height > 0 {
			sub := f.page.SubImage(image.Rect(int(g.x), int(g.y), int(g.x)+int(g.width), int(g.y)+int(g.height))).(*ebiten.Image)
			op.GeoM.Reset()
			op.GeoM.Translate(x+cursorX+float64(kern)+float64(g.xOffset), y+cursorY+float64(g.yOffset))
			op.ColorScale.Reset()
			op.ColorScale.ScaleWithColor(clr)
			dst.DrawImage(sub, op)
		}
		cursorX += float64(g.xAdvance) + float64(kern)
		prevRune = r
		hasPrev = true
	}
}
