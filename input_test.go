package eraconsole

import (
	"errors"
	"testing"
)

// --- InputLine tests ---

func TestInputLineInsert(t *testing.T) {
	l := NewInputLine()
	l.Insert("go\tnorth\n")
	l.Insert("漢")
	if got := l.Text(); got != "gonorth漢" {
		t.Errorf("Text() = %q, want %q", got, "gonorth漢")
	}
	l.Backspace()
	if got := l.Text(); got != "gonorth" {
		t.Errorf("after Backspace Text() = %q, want %q", got, "gonorth")
	}
}

func TestInputLineCompositionBlocksBackspace(t *testing.T) {
	l := NewInputLine()
	l.Insert("ab")
	l.SetComposition("か")
	l.Backspace()
	if l.Text() != "ab" {
		t.Errorf("Backspace during composition changed text to %q", l.Text())
	}
	l.Insert("漢")
	if l.Composition() != "" {
		t.Errorf("Insert should clear composition, got %q", l.Composition())
	}
	if l.Text() != "ab漢" {
		t.Errorf("Text() = %q, want %q", l.Text(), "ab漢")
	}
}

func TestInputLineHistory(t *testing.T) {
	l := NewInputLine()
	for _, s := range []string{"one", "", "two", "three"} {
		l.Set(s)
		l.Submit()
	}
	if got := l.History(); len(got) != 3 {
		t.Fatalf("History() = %v, empty lines should not be recorded", got)
	}

	steps := []struct {
		op   func()
		want string
	}{
		{l.Prev, "three"},
		{l.Prev, "two"},
		{l.Prev, "one"},
		{l.Prev, "one"}, // stays at the oldest
		{l.Next, "two"},
		{l.Next, "three"},
		{l.Next, ""}, // past the newest
		{l.Next, ""},
	}
	for i, st := range steps {
		st.op()
		if got := l.Text(); got != st.want {
			t.Errorf("step %d: Text() = %q, want %q", i, got, st.want)
		}
	}
}

func TestInputLineSubmitClears(t *testing.T) {
	l := NewInputLine()
	l.Insert("look")
	l.SetComposition("x")
	if got := l.Submit(); got != "look" {
		t.Errorf("Submit() = %q, want %q", got, "look")
	}
	if l.Text() != "" || l.Composition() != "" {
		t.Errorf("line not cleared: %q / %q", l.Text(), l.Composition())
	}
}

// --- Input tests ---

func scrollConsole(t *testing.T, n int) *Console {
	t.Helper()
	c := newTestConsole(t, 400, 400)
	for i := 0; i < n; i++ {
		c.AppendText("x", ColorWhite)
	}
	return c
}

func TestHandleKeyScroll(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		mods KeyModifiers
		want int
	}{
		{"shift up", KeyUp, ModShift, 21},
		{"shift down", KeyDown, ModShift, 19},
		{"page up", KeyPageUp, 0, 20 + PageStep},
		{"page down", KeyPageDown, 0, 20 - PageStep},
		{"home", KeyHome, 0, 49},
		{"end", KeyEnd, 0, 0},
		{"plain up recalls history", KeyUp, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := scrollConsole(t, 50)
			c.ScrollUp(20)
			in := NewInput(c)
			in.HandleKey(tt.key, tt.mods)
			if got := c.History().Offset(); got != tt.want {
				t.Errorf("offset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleKeyEnterSubmits(t *testing.T) {
	c := newTestConsole(t, 400, 400)
	in := NewInput(c)
	var got []SubmitEvent
	c.OnSubmit(func(ev SubmitEvent) { got = append(got, ev) })

	in.HandleText("look")
	in.HandleKey(KeyEnter, 0)

	if len(got) != 1 || got[0].Text != "look" || got[0].Source != SourceKeyboard {
		t.Fatalf("submitted = %+v", got)
	}
	if in.Line().Text() != "" {
		t.Errorf("prompt not cleared: %q", in.Line().Text())
	}
	in.HandleKey(KeyUp, 0)
	if in.Line().Text() != "look" {
		t.Errorf("Up recalled %q, want %q", in.Line().Text(), "look")
	}
	in.HandleKey(KeyEscape, 0)
	if in.Line().Text() != "" {
		t.Errorf("Escape left %q", in.Line().Text())
	}
}

func TestHandleKeyPaste(t *testing.T) {
	c := newTestConsole(t, 400, 400)
	in := NewInput(c)
	in.Paste = func() (string, error) { return "multi\nline", nil }
	in.HandleKey(KeyPaste, ModCtrl)
	if got := in.Line().Text(); got != "multi line" {
		t.Errorf("pasted %q, want %q", got, "multi line")
	}

	in.Paste = func() (string, error) { return "", errors.New("no clipboard") }
	in.HandleKey(KeyPaste, ModCtrl)
	if got := in.Line().Text(); got != "multi line" {
		t.Errorf("failed paste changed the line to %q", got)
	}

	in.Paste = nil
	in.HandleKey(KeyPaste, ModCtrl)
}

func TestHandleWheel(t *testing.T) {
	c := scrollConsole(t, 50)
	in := NewInput(c)

	in.HandleWheel(1)
	if got := c.History().Offset(); got != WheelStep {
		t.Errorf("wheel up offset = %d, want %d", got, WheelStep)
	}
	in.HandleWheel(-0.5)
	if got := c.History().Offset(); got != 0 {
		t.Errorf("wheel down offset = %d, want 0", got)
	}
	in.HandleWheel(0)
	if got := c.History().Offset(); got != 0 {
		t.Errorf("zero wheel moved the view to %d", got)
	}
}

func TestHandleClick(t *testing.T) {
	c := newTestConsole(t, 400, 400)
	in := NewInput(c)
	c.AppendFragments(Frag("[0] start").Click("start").Fragments())
	c.Layout()

	var got []string
	c.OnSubmit(func(ev SubmitEvent) { got = append(got, ev.Text) })

	in.HandleText("half typed")
	if in.HandleClick(300, 300) {
		t.Error("click on empty space should miss")
	}
	if in.Line().Text() != "half typed" {
		t.Error("a miss should keep the prompt")
	}
	if !in.HandleClick(20, 20) {
		t.Fatal("click on the menu fragment should hit")
	}
	if len(got) != 1 || got[0] != "start" {
		t.Errorf("submitted %v, want [start]", got)
	}
	if in.Line().Text() != "" {
		t.Error("a hit should clear the prompt")
	}
}
