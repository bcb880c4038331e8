package eraconsole

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyModifiers is a bitmask of keyboard modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt key
	ModMeta                           // Meta/Command key
)

// Key is a console command key, independent of the windowing backend.
type Key uint8

const (
	KeyNone Key = iota
	KeyEnter
	KeyBackspace
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyPaste
	KeyEscape
)

// --- InputLine ---

// InputLine is the editable prompt text with submit history recall. The
// composition text is the uncommitted IME preedit shown after the cursor.
type InputLine struct {
	text        []rune
	composition string
	history     []string
	index       int // -1 when not browsing history
}

// NewInputLine creates an empty input line.
func NewInputLine() *InputLine {
	return &InputLine{index: -1}
}

// Text returns the committed text.
func (l *InputLine) Text() string { return string(l.text) }

// Composition returns the uncommitted IME text.
func (l *InputLine) Composition() string { return l.composition }

// SetComposition replaces the uncommitted IME text.
func (l *InputLine) SetComposition(s string) { l.composition = s }

// History returns the submitted lines, oldest first.
func (l *InputLine) History() []string { return l.history }

// Insert appends committed text and clears the composition. Newlines and
// other control characters are dropped.
func (l *InputLine) Insert(s string) {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		l.text = append(l.text, r)
	}
	l.composition = ""
}

// Backspace removes the last rune unless a composition is in progress.
func (l *InputLine) Backspace() {
	if l.composition != "" || len(l.text) == 0 {
		return
	}
	l.text = l.text[:len(l.text)-1]
}

// Set replaces the committed text.
func (l *InputLine) Set(s string) {
	l.text = []rune(s)
}

// Clear empties the line and leaves history browsing.
func (l *InputLine) Clear() {
	l.text = l.text[:0]
	l.composition = ""
	l.index = -1
}

// Submit returns the committed text and resets the line. Non-empty lines
// are recorded in the history.
func (l *InputLine) Submit() string {
	s := string(l.text)
	if s != "" {
		l.history = append(l.history, s)
	}
	l.Clear()
	return s
}

// Prev recalls the previous (older) history line.
func (l *InputLine) Prev() {
	if l.index < len(l.history)-1 {
		l.index++
		l.Set(l.history[len(l.history)-1-l.index])
	}
}

// Next recalls the next (newer) history line; past the newest the line is
// emptied.
func (l *InputLine) Next() {
	switch {
	case l.index > 0:
		l.index--
		l.Set(l.history[len(l.history)-1-l.index])
	case l.index == 0:
		l.index = -1
		l.text = l.text[:0]
	}
}

// --- Input ---

// Input turns keys, text, wheel and pointer events into console actions. It
// is driven either by Poll from an Ebitengine Update, by another frontend
// calling the Handle methods, or by the inject queue.
type Input struct {
	console *Console
	line    *InputLine
	queue   []injectedEvent

	// Paste reads the clipboard for KeyPaste. Defaults to clipboard.ReadAll.
	Paste func() (string, error)
}

// NewInput creates the input handler for c.
func NewInput(c *Console) *Input {
	return &Input{console: c, line: NewInputLine(), Paste: clipboard.ReadAll}
}

// Line returns the prompt line.
func (in *Input) Line() *InputLine {
	return in.line
}

// HandleText inserts committed text into the prompt.
func (in *Input) HandleText(s string) {
	in.line.Insert(s)
}

// HandleKey applies one command key. Up and Down recall input history; with
// Shift held they scroll the console by one entry instead.
func (in *Input) HandleKey(k Key, mods KeyModifiers) {
	c := in.console
	cfg := c.Config()
	switch k {
	case KeyEnter:
		c.Submit(in.line.Submit(), SourceKeyboard)
	case KeyBackspace:
		in.line.Backspace()
	case KeyUp:
		if mods&ModShift != 0 {
			c.ScrollUp(1)
		} else {
			in.line.Prev()
		}
	case KeyDown:
		if mods&ModShift != 0 {
			c.ScrollDown(1)
		} else {
			in.line.Next()
		}
	case KeyPageUp:
		c.ScrollUp(cfg.PageStep)
	case KeyPageDown:
		c.ScrollDown(cfg.PageStep)
	case KeyHome:
		c.ScrollToTop()
	case KeyEnd:
		c.ScrollToBottom()
	case KeyPaste:
		if in.Paste == nil {
			return
		}
		s, err := in.Paste()
		if err != nil {
			c.log.WithError(err).Debug("clipboard unavailable")
			return
		}
		in.line.Insert(strings.ReplaceAll(s, "\n", " "))
	case KeyEscape:
		in.line.Clear()
	case KeyNone:
	}
}

// HandleWheel scrolls by the configured wheel step. Positive dy scrolls
// towards older content.
func (in *Input) HandleWheel(dy float64) {
	step := in.console.Config().WheelStep
	switch {
	case dy > 0:
		in.console.ScrollUp(step)
	case dy < 0:
		in.console.ScrollDown(step)
	}
}

// HandleClick resolves a pointer press against the last layout. A hit is
// submitted as if typed and the prompt is cleared.
func (in *Input) HandleClick(x, y float64) bool {
	if !in.console.Click(x, y) {
		return false
	}
	in.line.Clear()
	return true
}

// --- Ebitengine polling ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// translateKey maps an Ebitengine key to a console key.
func translateKey(k ebiten.Key, mods KeyModifiers) Key {
	switch k {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return KeyEnter
	case ebiten.KeyBackspace:
		return KeyBackspace
	case ebiten.KeyArrowUp:
		return KeyUp
	case ebiten.KeyArrowDown:
		return KeyDown
	case ebiten.KeyPageUp:
		return KeyPageUp
	case ebiten.KeyPageDown:
		return KeyPageDown
	case ebiten.KeyHome:
		return KeyHome
	case ebiten.KeyEnd:
		return KeyEnd
	case ebiten.KeyEscape:
		return KeyEscape
	case ebiten.KeyV:
		if mods&(ModCtrl|ModMeta) != 0 {
			return KeyPaste
		}
	}
	return KeyNone
}

// Poll reads one tick of Ebitengine input. An injected event, when queued,
// replaces real pointer input for the tick.
func (in *Input) Poll() {
	if in.processInjected() {
		return
	}
	mods := readModifiers()

	var chars []rune
	chars = ebiten.AppendInputChars(chars)
	if len(chars) > 0 && mods&(ModCtrl|ModMeta) == 0 {
		in.HandleText(string(chars))
	}

	var keys []ebiten.Key
	for _, k := range inpututil.AppendJustPressedKeys(keys) {
		if ck := translateKey(k, mods); ck != KeyNone {
			in.HandleKey(ck, mods)
		}
	}
	// Held backspace repeats.
	if d := inpututil.KeyPressDuration(ebiten.KeyBackspace); d > 30 && d%3 == 0 {
		in.HandleKey(KeyBackspace, mods)
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		in.HandleWheel(dy)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		in.HandleClick(float64(mx), float64(my))
	}
	var touches []ebiten.TouchID
	for _, id := range inpututil.AppendJustPressedTouchIDs(touches) {
		tx, ty := ebiten.TouchPosition(id)
		in.HandleClick(float64(tx), float64(ty))
	}
}
