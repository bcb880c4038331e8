package eraconsole

type injectKind uint8

const (
	injectClick injectKind = iota
	injectText
	injectKey
	injectWheel
	injectSubmit
)

// injectedEvent is one synthetic input event. Screen coordinates are used,
// matching what a screenshot shows.
type injectedEvent struct {
	kind injectKind
	x, y float64
	text string
	key  Key
	mods KeyModifiers
}

// InjectClick queues a left click at the given screen coordinates. The event
// is consumed on the next Poll.
func (in *Input) InjectClick(x, y float64) {
	in.queue = append(in.queue, injectedEvent{kind: injectClick, x: x, y: y})
}

// InjectText queues committed text for the prompt.
func (in *Input) InjectText(s string) {
	in.queue = append(in.queue, injectedEvent{kind: injectText, text: s})
}

// InjectKey queues a command key.
func (in *Input) InjectKey(k Key, mods KeyModifiers) {
	in.queue = append(in.queue, injectedEvent{kind: injectKey, key: k, mods: mods})
}

// InjectWheel queues a wheel movement; positive dy scrolls up.
func (in *Input) InjectWheel(dy float64) {
	in.queue = append(in.queue, injectedEvent{kind: injectWheel, y: dy})
}

// InjectLine queues text followed by Enter. Consumes two ticks.
func (in *Input) InjectLine(s string) {
	in.InjectText(s)
	in.InjectKey(KeyEnter, 0)
}

// InjectSubmit queues a line delivered straight to the input stream,
// bypassing the prompt. It is echoed like typed text.
func (in *Input) InjectSubmit(s string) {
	in.queue = append(in.queue, injectedEvent{kind: injectSubmit, text: s})
}

// Pending returns the number of queued injected events.
func (in *Input) Pending() int {
	return len(in.queue)
}

// processInjected pops one event from the inject queue and applies it.
// Returns true if an event was consumed (real input should be skipped).
func (in *Input) processInjected() bool {
	if len(in.queue) == 0 {
		return false
	}
	evt := in.queue[0]
	copy(in.queue, in.queue[1:])
	in.queue = in.queue[:len(in.queue)-1]

	switch evt.kind {
	case injectClick:
		in.HandleClick(evt.x, evt.y)
	case injectText:
		in.HandleText(evt.text)
	case injectKey:
		in.HandleKey(evt.key, evt.mods)
	case injectWheel:
		in.HandleWheel(evt.y)
	case injectSubmit:
		in.console.Submit(evt.text, SourceInjected)
	}
	return true
}
