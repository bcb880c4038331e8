package eraconsole

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Pulse oscillates a value between 0 and 1 with an easing curve. The prompt
// caret uses it to fade in and out; call Update(dt) once per tick.
type Pulse struct {
	tween  *gween.Tween
	period float32
	fn     ease.TweenFunc
	rising bool
	Value  float32
}

// NewPulse creates a pulse that takes period seconds per half cycle. It
// starts fully visible and fades out first.
func NewPulse(period float32, fn ease.TweenFunc) *Pulse {
	if fn == nil {
		fn = ease.InOutSine
	}
	p := &Pulse{period: period, fn: fn, Value: 1}
	p.tween = gween.New(1, 0, period, fn)
	return p
}

// Update advances the pulse by dt seconds and returns the current value.
func (p *Pulse) Update(dt float32) float32 {
	val, finished := p.tween.Update(dt)
	p.Value = val
	if finished {
		p.rising = !p.rising
		if p.rising {
			p.tween = gween.New(0, 1, p.period, p.fn)
		} else {
			p.tween = gween.New(1, 0, p.period, p.fn)
		}
	}
	return p.Value
}

// Reset makes the value fully visible and restarts the fade. Typing resets
// the caret so it never disappears while the player is entering text.
func (p *Pulse) Reset() {
	p.rising = false
	p.Value = 1
	p.tween = gween.New(1, 0, p.period, p.fn)
}
