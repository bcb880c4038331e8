package eraconsole

import (
	"fmt"
	"image"
)

const (
	minThumbHeight = 20
	scrollHint     = "↑ scroll for history"
)

// Status overlay colors.
var (
	ColorStatus = RGB{150, 150, 150}
	ColorHint   = RGB{255, 255, 100}
)

// Draw rebuilds the layout and click regions from the visible slice and
// paints it onto s. Image and composite caches are filled on first draw.
func (c *Console) Draw(s Surface) {
	for _, e := range c.history.VisibleSlice() {
		switch e.Kind {
		case KindImage:
			c.renderImage(e)
		case KindComposite:
			c.renderComposite(e)
		case KindText, KindDivider, KindMenu:
		}
	}
	c.layout = c.buildLayout()

	lh := c.font.LineHeight()
	for _, box := range c.layout.Entries {
		e := box.Entry
		switch e.Kind {
		case KindText:
			dy := max(0, (float64(e.Height)-ImagePadding-lh)/2)
			for _, fb := range box.Fragments {
				f := e.Fragments[fb.Index]
				if f.Text == "" {
					continue
				}
				s.DrawText(f.Text, fb.Rect.X, fb.Rect.Y+dy, f.Color)
			}
		case KindDivider, KindMenu:
			s.DrawText(e.Text, box.Rect.X, box.Rect.Y, e.Color)
		case KindImage:
			if img := c.renderImage(e); img != nil {
				s.DrawImage(img, box.Rect.X, box.Rect.Y)
			} else {
				c.drawPlaceholder(s, box.Rect.X, box.Rect.Y, float64(e.Height-ImagePadding))
			}
		case KindComposite:
			if img := c.renderComposite(e); img != nil {
				s.DrawImage(img, box.Rect.X, box.Rect.Y)
			} else {
				c.drawPlaceholder(s, box.Rect.X, box.Rect.Y, float64(e.Height-ImagePadding))
			}
		}
	}

	if c.history.ScrollbarVisible() && c.history.Len() > 0 {
		c.drawScrollbar(s)
	}
}

// renderImage returns the cached render of an image entry, rendering it on
// first use. A failed render is remembered and yields nil.
func (c *Console) renderImage(e *Entry) *image.RGBA {
	m := e.Image
	if m == nil {
		return nil
	}
	if m.rendered {
		return m.cached
	}
	m.rendered = true
	if m.Err != nil {
		return nil
	}
	img, err := c.resolver.RenderSingle(m.Asset, m.Request.Crop, m.Request.Size)
	if err != nil {
		m.Err = err
		c.log.WithError(err).WithField("key", m.Request.Key).Warn("image render failed")
		return nil
	}
	m.cached = img
	return img
}

func (c *Console) renderComposite(e *Entry) *image.RGBA {
	m := e.Composite
	if m == nil {
		return nil
	}
	if m.rendered {
		return m.cached
	}
	m.rendered = true
	if len(m.Layers) == 0 {
		return nil
	}
	img, err := c.resolver.RenderComposite(m.Layers, m.Template)
	if err != nil {
		m.Err = err
		c.log.WithError(err).Warn("composite layer skipped")
	}
	m.cached = img
	return img
}

// drawPlaceholder paints the error box drawn in place of an image that could
// not be resolved or rendered.
func (c *Console) drawPlaceholder(s Surface, x, y, h float64) {
	r := Rect{X: x, Y: y, Width: PlaceholderSize, Height: h}
	s.FillRect(r, ColorPlaceholder)
	s.StrokeRect(r, ColorPlaceBorder)
	w, gh := c.font.MeasureString("?")
	s.DrawText("?", x+(PlaceholderSize-w)/2, y+(h-gh)/2, ColorPlaceGlyph)
}

// scrollbarRects returns the track and thumb of the scrollbar. The thumb
// sits at the bottom of the track while pinned to the live tail.
func (c *Console) scrollbarRects() (track, thumb Rect) {
	contentH := float64(c.history.ViewHeight())
	x := float64(c.screenW - ScrollbarWidth - 5)
	track = Rect{X: x, Y: MarginTop, Width: ScrollbarWidth, Height: contentH}

	total := float64(c.history.TotalHeight())
	thumbH := contentH
	if total > 0 {
		thumbH = max(minThumbHeight, contentH*contentH/total)
	}
	thumbH = min(thumbH, contentH)
	frac := 0.0
	if n := c.history.Len(); n > 1 {
		frac = float64(c.history.Offset()) / float64(n-1)
	}
	thumb = Rect{X: x, Y: MarginTop + (1-frac)*(contentH-thumbH), Width: ScrollbarWidth, Height: thumbH}
	return track, thumb
}

func (c *Console) drawScrollbar(s Surface) {
	track, thumb := c.scrollbarRects()
	s.FillRect(track, ColorScrollTrack)
	s.FillRect(thumb, ColorScrollThumb)
}

// statusText formats the visible range as "first-last / total".
func statusText(info ScrollInfo) string {
	return fmt.Sprintf("%d-%d / %d", info.First, info.Last, info.Total)
}

// DrawStatus paints the visible range in the bottom-right corner and, while
// scrolled away from the live tail, a hint in the top-right corner.
func (c *Console) DrawStatus(s Surface) {
	info := c.ScrollInfo()
	if info.Total == 0 {
		return
	}
	font := c.font
	w, h := c.Viewport()

	status := statusText(info)
	sw, _ := font.MeasureString(status)
	s.DrawText(status, float64(w)-sw-20, float64(h)-60, ColorStatus)

	if !info.AtBottom {
		hw, _ := font.MeasureString(scrollHint)
		s.DrawText(scrollHint, float64(w)-hw-30, MarginTop, ColorHint)
	}
}
