package eraconsole

import "image/color"

// RGB is an opaque 8-bit color triple. Content colors are always opaque; the
// console never blends text.
type RGB struct {
	R, G, B uint8
}

// RGBA converts c to an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Palette defaults shared by the producer API and the frontends.
var (
	ColorWhite       = RGB{255, 255, 255}
	ColorDivider     = RGB{150, 150, 150}
	ColorMenu        = RGB{200, 200, 255}
	ColorError       = RGB{255, 100, 100}
	ColorWarning     = RGB{255, 200, 200}
	ColorEcho        = RGB{255, 255, 200}
	ColorPlaceholder = RGB{100, 100, 150}
	ColorPlaceBorder = RGB{150, 150, 150}
	ColorPlaceGlyph  = RGB{255, 200, 100}
	ColorScrollTrack = RGB{100, 100, 100}
	ColorScrollThumb = RGB{150, 150, 150}
)

// Rect is a screen-pixel box measured from the top-left of the viewport.
// Layout produces one per fragment, image and click region.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains is the click hit test. The right and bottom edges belong to the
// box, so a click on the boundary of two stacked rows lands on the earlier
// region, which ResolveClick checks first.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other share any point, edges included.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Size is a width/height pair in pixels.
type Size struct {
	W, H int
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.W == 0 && s.H == 0
}

// Layout constants in pixels.
const (
	MarginLeft      = 10  // left edge of text, images and the click walk
	MarginTop       = 10  // top edge of the first visible entry
	MarginRight     = 20  // right gutter kept free by fragment wrapping
	MenuIndent      = 20  // x position of menu rows
	WrapGutter      = 40  // total horizontal padding removed before wrapping text
	ImagePadding    = 10  // vertical padding added to image entry heights
	ScrollbarWidth  = 10  // scrollbar track width
	PlaceholderSize = 270 // width of the error placeholder, default asset edge
	AutoPinBand     = 5   // appends with offset <= this snap back to the live tail
	TabWidth        = 4   // spaces per tab in AppendText
)

// Default scroll steps for wheel and paging keys.
const (
	WheelStep = 3
	PageStep  = 10
)
