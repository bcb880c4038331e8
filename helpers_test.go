package eraconsole

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"testing"
	"time"
)

// testFont measures every rune as one 10px cell on 30px lines.
var testFont = CellFont{CellWidth: 10, CellHeight: 30}

var testTime = time.Date(2024, 5, 6, 12, 34, 56, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LogFile = ""
	return cfg
}

// newTestConsole creates a console without a transcript on a w×h viewport.
func newTestConsole(t *testing.T, w, h int, opts ...Option) *Console {
	t.Helper()
	return newTestConsoleConfig(t, testConfig(), w, h, opts...)
}

func newTestConsoleConfig(t *testing.T, cfg Config, w, h int, opts ...Option) *Console {
	t.Helper()
	SetLogOutput(io.Discard)
	opts = append([]Option{WithClock(func() time.Time { return testTime })}, opts...)
	c := NewConsole(cfg, testFont, opts...)
	c.SetViewport(w, h)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// memImages serves in-memory images by path.
type memImages map[string]image.Image

func (m memImages) load(path string) (image.Image, error) {
	img, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("%w: no image %s", ErrIO, path)
	}
	return img, nil
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

// surfaceOp is one recorded Surface call.
type surfaceOp struct {
	op    string // fill, stroke, text, image
	rect  Rect
	text  string
	color RGB
	img   *image.RGBA
}

// recordingSurface records every call for assertions.
type recordingSurface struct {
	ops []surfaceOp
}

func (s *recordingSurface) FillRect(r Rect, c RGB) {
	s.ops = append(s.ops, surfaceOp{op: "fill", rect: r, color: c})
}

func (s *recordingSurface) StrokeRect(r Rect, c RGB) {
	s.ops = append(s.ops, surfaceOp{op: "stroke", rect: r, color: c})
}

func (s *recordingSurface) DrawText(str string, x, y float64, c RGB) {
	s.ops = append(s.ops, surfaceOp{op: "text", rect: Rect{X: x, Y: y}, text: str, color: c})
}

func (s *recordingSurface) DrawImage(img *image.RGBA, x, y float64) {
	b := img.Bounds()
	s.ops = append(s.ops, surfaceOp{op: "image", rect: Rect{X: x, Y: y, Width: float64(b.Dx()), Height: float64(b.Dy())}, img: img})
}

func (s *recordingSurface) filter(op string) []surfaceOp {
	var out []surfaceOp
	for _, o := range s.ops {
		if o.op == op {
			out = append(out, o)
		}
	}
	return out
}

func (s *recordingSurface) texts() []string {
	var out []string
	for _, o := range s.filter("text") {
		out = append(out, o.text)
	}
	return out
}

// textEntry builds a one-fragment text entry of height h.
func textEntry(s string, h int) *Entry {
	return &Entry{Kind: KindText, Height: h, Color: ColorWhite, Fragments: []Fragment{{Text: s, Color: ColorWhite}}}
}
