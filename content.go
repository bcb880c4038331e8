package eraconsole

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// EntryKind distinguishes how a history entry is laid out and drawn.
type EntryKind uint8

const (
	KindText      EntryKind = iota // one logical line of colored fragments
	KindDivider                    // a repeated character, centred
	KindMenu                       // one indented menu row
	KindImage                      // a single cropped/scaled asset
	KindComposite                  // several assets flattened onto one canvas
)

// String returns the transcript tag for k.
func (k EntryKind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindDivider:
		return "DIVIDER"
	case KindMenu:
		return "MENU"
	case KindImage:
		return "IMAGE"
	case KindComposite:
		return "IMAGE_STACK"
	default:
		return fmt.Sprintf("EntryKind(%d)", uint8(k))
	}
}

// Fragment is one colored, optionally clickable span inside a text entry.
// An empty Click means the fragment is not clickable.
type Fragment struct {
	Text  string
	Color RGB
	Click string
}

// Clickable reports whether activating the fragment yields a click value.
func (f Fragment) Clickable() bool {
	return f.Click != ""
}

// Entry is one item of the append-only history.
//
// Entries are immutable once appended. The only state that changes after
// creation is the lazily populated render cache of image and composite
// entries.
type Entry struct {
	Kind      EntryKind
	Height    int
	Color     RGB
	Fragments []Fragment
	Text      string // payload for dividers and menu rows
	Image     *ImageMeta
	Composite *CompositeMeta
	Created   time.Time
}

// ImageMeta is the payload of a KindImage entry.
type ImageMeta struct {
	Request ImageRequest
	Asset   Asset
	Size    Size  // drawn size, fixed at creation
	Err     error // resolve or render failure; drawn as a placeholder

	cached   *image.RGBA
	rendered bool
}

// CompositeMeta is the payload of a KindComposite entry.
type CompositeMeta struct {
	Layers   []ResolvedLayer
	Template Size
	Click    string
	Err      error

	cached   *image.RGBA
	rendered bool
}

// ResolvedLayer pairs a composite layer request with the asset it resolved to.
type ResolvedLayer struct {
	CompositeLayer
	Asset Asset
}

// ClickValue returns the click value bound to an image or composite entry.
// Text entries carry their click values per fragment.
func (e *Entry) ClickValue() string {
	switch e.Kind {
	case KindImage:
		if e.Image != nil {
			return e.Image.Request.Click
		}
	case KindComposite:
		if e.Composite != nil {
			return e.Composite.Click
		}
	case KindText, KindDivider, KindMenu:
	}
	return ""
}

// PlainText returns the transcript representation of the entry.
func (e *Entry) PlainText() string {
	switch e.Kind {
	case KindText:
		var b strings.Builder
		for _, f := range e.Fragments {
			b.WriteString(f.Text)
		}
		return b.String()
	case KindDivider, KindMenu:
		return e.Text
	case KindImage:
		if e.Image == nil {
			return "[IMAGE]"
		}
		return "[IMAGE] " + e.Image.Request.Key
	case KindComposite:
		if e.Composite == nil {
			return "[IMAGE_STACK]"
		}
		return fmt.Sprintf("[IMAGE_STACK] %d images", len(e.Composite.Layers))
	default:
		return ""
	}
}

// --- FragmentBuilder ---

// FragmentBuilder chains colored and clickable parts into one line:
//
//	line := eraconsole.Frag("[0] start").Click("0").
//		Then("   ").
//		Then("about").Color(eraconsole.RGB{200, 200, 255}).Click("about")
//	console.AppendFragments(line.Fragments())
//
// Color and Click apply to the most recently added part.
type FragmentBuilder struct {
	base  RGB
	parts []Fragment
}

// Frag starts a builder with one white part.
func Frag(text string) *FragmentBuilder {
	b := &FragmentBuilder{base: ColorWhite}
	return b.Then(text)
}

// Then appends a part in the builder's base color.
func (b *FragmentBuilder) Then(text string) *FragmentBuilder {
	b.parts = append(b.parts, Fragment{Text: text, Color: b.base})
	return b
}

// Color sets the color of the last part.
func (b *FragmentBuilder) Color(c RGB) *FragmentBuilder {
	if n := len(b.parts); n > 0 {
		b.parts[n-1].Color = c
	}
	return b
}

// Click sets the click value of the last part.
func (b *FragmentBuilder) Click(value string) *FragmentBuilder {
	if n := len(b.parts); n > 0 {
		b.parts[n-1].Click = value
	}
	return b
}

// Append adds every part of other after the parts of b.
func (b *FragmentBuilder) Append(other *FragmentBuilder) *FragmentBuilder {
	if other != nil {
		b.parts = append(b.parts, other.parts...)
	}
	return b
}

// Fragments returns a copy of the accumulated parts.
func (b *FragmentBuilder) Fragments() []Fragment {
	out := make([]Fragment, len(b.parts))
	copy(out, b.parts)
	return out
}

// String returns the concatenated text of all parts.
func (b *FragmentBuilder) String() string {
	var sb strings.Builder
	for _, p := range b.parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
