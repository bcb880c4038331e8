package eraconsole

import "fmt"

// WrapAccounting selects how a text entry whose fragments wrap onto several
// visual rows advances the vertical cursor.
type WrapAccounting uint8

const (
	// WrapNominal advances by the entry's own height no matter how many rows
	// its fragments wrapped onto. Wrapped rows overlap the next entry and
	// their click regions may overlap too; the first laid out wins.
	WrapNominal WrapAccounting = iota
	// WrapRows advances by the entry height once per visual row.
	WrapRows
)

// String returns the config name of w.
func (w WrapAccounting) String() string {
	switch w {
	case WrapNominal:
		return "nominal"
	case WrapRows:
		return "rows"
	default:
		return fmt.Sprintf("WrapAccounting(%d)", uint8(w))
	}
}

// ParseWrapAccounting parses "nominal" or "rows". The empty string selects
// WrapNominal.
func ParseWrapAccounting(s string) (WrapAccounting, error) {
	switch s {
	case "", "nominal":
		return WrapNominal, nil
	case "rows":
		return WrapRows, nil
	}
	return WrapNominal, fmt.Errorf("eraconsole: unknown wrap accounting %q", s)
}

// FragmentBox is the placed rectangle of one fragment.
type FragmentBox struct {
	Index int
	Rect  Rect
}

// EntryBox is the placed position of one visible entry. For text entries
// Fragments holds one box per fragment; for images and composites Rect is
// the drawn bounding box.
type EntryBox struct {
	Entry     *Entry
	Rect      Rect
	Fragments []FragmentBox
	Rows      int
}

// Layout is the result of one layout pass over the visible slice.
type Layout struct {
	Entries []EntryBox
	Regions []ClickRegion
}

// ResolveClick returns the click value of the first region containing (x, y).
func (l *Layout) ResolveClick(x, y float64) (string, bool) {
	return resolveClick(l.Regions, x, y)
}

// layoutParams are the inputs of a layout pass besides the entries.
type layoutParams struct {
	font       Font
	width      float64 // viewport width
	viewHeight float64 // content area height
	wrap       WrapAccounting
}

// layoutEntries walks visible top to bottom from the top margin, places every
// entry and records a click region for each clickable fragment, image and
// composite. Entries that would run past the content area are not placed,
// except the first.
func layoutEntries(p layoutParams, visible []*Entry) Layout {
	var out Layout
	y := float64(MarginTop)
	bottom := p.viewHeight + MarginTop

	for _, e := range visible {
		h := float64(e.Height)
		if y+h > bottom && len(out.Entries) > 0 {
			break
		}
		box := EntryBox{Entry: e, Rows: 1}

		switch e.Kind {
		case KindText:
			box = layoutFragments(p, e, y, &out.Regions)
			if p.wrap == WrapRows {
				y += h * float64(box.Rows)
			} else {
				y += h
			}

		case KindDivider:
			w, _ := p.font.MeasureString(e.Text)
			box.Rect = Rect{X: (p.width - w) / 2, Y: y, Width: w, Height: h}
			y += h

		case KindMenu:
			w, _ := p.font.MeasureString(e.Text)
			box.Rect = Rect{X: MenuIndent, Y: y, Width: w, Height: h}
			y += h

		case KindImage, KindComposite:
			size := drawnSize(e)
			box.Rect = Rect{X: MarginLeft, Y: y, Width: float64(size.W), Height: float64(size.H)}
			if v := e.ClickValue(); v != "" {
				out.Regions = append(out.Regions, ClickRegion{Rect: box.Rect, Value: v, Entry: e, Fragment: -1})
			}
			y += h
		}
		out.Entries = append(out.Entries, box)
	}
	return out
}

// layoutFragments places the fragments of one text entry starting at y. A
// fragment wraps to a new row when it does not fit before the right margin
// and the cursor is not already at the left margin.
func layoutFragments(p layoutParams, e *Entry, y float64, regions *[]ClickRegion) EntryBox {
	h := float64(e.Height)
	box := EntryBox{Entry: e, Rows: 1, Fragments: make([]FragmentBox, 0, len(e.Fragments))}
	x, rowY, maxX := float64(MarginLeft), y, float64(MarginLeft)

	for i, f := range e.Fragments {
		w, _ := p.font.MeasureString(f.Text)
		if x+w > p.width-MarginRight && x > MarginLeft {
			x = MarginLeft
			rowY += h
			box.Rows++
		}
		r := Rect{X: x, Y: rowY, Width: w, Height: h}
		box.Fragments = append(box.Fragments, FragmentBox{Index: i, Rect: r})
		if f.Clickable() {
			*regions = append(*regions, ClickRegion{Rect: r, Value: f.Click, Entry: e, Fragment: i})
		}
		x += w
		if x > maxX {
			maxX = x
		}
	}
	box.Rect = Rect{X: MarginLeft, Y: y, Width: maxX - MarginLeft, Height: h * float64(box.Rows)}
	return box
}

// drawnSize returns the on-screen size of an image or composite entry: the
// bounds of the render once there is one, the measured size before that, and
// the placeholder box when it could not be resolved.
func drawnSize(e *Entry) Size {
	placeholder := Size{W: PlaceholderSize, H: e.Height - ImagePadding}
	switch e.Kind {
	case KindImage:
		if e.Image == nil || e.Image.Err != nil || e.Image.Size.IsZero() {
			return placeholder
		}
		if img := e.Image.cached; img != nil {
			return Size{W: img.Bounds().Dx(), H: img.Bounds().Dy()}
		}
		return e.Image.Size
	case KindComposite:
		if e.Composite == nil || len(e.Composite.Layers) == 0 {
			return placeholder
		}
		return e.Composite.Template
	case KindText, KindDivider, KindMenu:
	}
	return Size{}
}
