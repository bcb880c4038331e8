package eraconsole

import (
	"encoding/json"
	"fmt"
	"strings"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Text    string  `json:"text,omitempty"`
	Key     string  `json:"key,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Notches int     `json:"notches,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// keyNames maps script key names to console keys.
var keyNames = map[string]Key{
	"enter":     KeyEnter,
	"backspace": KeyBackspace,
	"up":        KeyUp,
	"down":      KeyDown,
	"pageup":    KeyPageUp,
	"pagedown":  KeyPageDown,
	"home":      KeyHome,
	"end":       KeyEnd,
	"escape":    KeyEscape,
}

// TestRunner sequences injected input events and screenshots across frames
// for automated visual testing. Attach to a Game via SetTestRunner.
//
// Actions:
//
//	type       text is typed and submitted with Enter
//	submit     text is delivered to the input stream directly
//	key        key is one of enter, backspace, up, down, pageup, pagedown,
//	           home, end, escape
//	click      left click at x, y
//	scroll     notches of the wheel; positive scrolls towards older content
//	wait       frames to idle
//	screenshot label of the captured PNG
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Game via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("eraconsole: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("eraconsole: parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "type", "submit", "click", "scroll", "wait", "screenshot":
		case "key":
			if _, ok := keyNames[strings.ToLower(st.Key)]; !ok {
				return nil, fmt.Errorf("eraconsole: parse test script: step %d: unknown key %q", i, st.Key)
			}
		default:
			return nil, fmt.Errorf("eraconsole: parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the game. The runner's step method
// is called from Game.Update before input is polled each frame.
func (g *Game) SetTestRunner(runner *TestRunner) {
	g.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one frame. Called from Game.Update.
func (r *TestRunner) step(g *Game) {
	if r.done {
		return
	}
	in := g.Input
	// Wait for pending injections to drain before advancing.
	if in.Pending() > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "type":
		in.InjectLine(st.Text)
	case "submit":
		in.InjectSubmit(st.Text)
	case "key":
		in.InjectKey(keyNames[strings.ToLower(st.Key)], 0)
	case "click":
		in.InjectClick(st.X, st.Y)
	case "scroll":
		n, dy := st.Notches, 1.0
		if n < 0 {
			n, dy = -n, -1
		}
		for range n {
			in.InjectWheel(dy)
		}
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && in.Pending() == 0 {
		r.done = true
	}
}
