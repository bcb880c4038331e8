package eraconsole

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Frontend colors.
var (
	ColorBackground = RGB{0, 0, 0}
	ColorInputBar   = RGB{30, 30, 40}
	ColorInputText  = RGB{255, 255, 255}
	ColorCaret      = RGB{200, 200, 200}
)

const (
	defaultPrompt = "> "
	caretPeriod   = 0.5 // seconds per fade
	caretWidth    = 2
)

// RunConfig holds the window settings for Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	ShowFPS   bool
	Resizable bool
}

// Game drives a Console with Ebitengine. It implements ebiten.Game: Update
// polls input once per tick and Draw paints the content area, the input bar
// and the status overlay. Everything runs on the Ebitengine update
// goroutine, which owns the console.
type Game struct {
	Console *Console
	Input   *Input

	// Prompt is drawn before the input text. Defaults to "> ".
	Prompt string

	// ScreenshotDir is where Screenshot writes PNGs. Defaults to "screenshots".
	ScreenshotDir string

	// ClearColor fills the screen before drawing.
	ClearColor RGB

	surface         *ebitenSurface
	caret           *Pulse
	lastInput       string
	screenshotQueue []string
	testRunner      *TestRunner
	fps             *fpsOverlay
	stats           frameStats
	debug           bool
	updateFunc      func() error
}

// NewGame wraps c with an input handler and the default frontend settings.
func NewGame(c *Console) *Game {
	return &Game{
		Console:       c,
		Input:         NewInput(c),
		Prompt:        defaultPrompt,
		ScreenshotDir: "screenshots",
		ClearColor:    ColorBackground,
		surface:       newEbitenSurface(),
		caret:         NewPulse(caretPeriod, ease.InOutSine),
		debug:         c.Config().Debug,
	}
}

// SetUpdateFunc installs a callback run at the end of every Update. A
// non-nil error stops the game.
func (g *Game) SetUpdateFunc(fn func() error) {
	g.updateFunc = fn
}

// OnSubmit registers fn on the console's input stream.
func (g *Game) OnSubmit(fn func(SubmitEvent)) {
	g.Console.OnSubmit(fn)
}

// SetDebug enables per-frame timing logs.
func (g *Game) SetDebug(enabled bool) {
	g.debug = enabled
}

// SetShowFPS toggles the FPS overlay in the top-left corner.
func (g *Game) SetShowFPS(show bool) {
	if show && g.fps == nil {
		g.fps = newFPSOverlay()
	} else if !show {
		g.fps = nil
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))

	if g.testRunner != nil {
		g.testRunner.step(g)
	}
	g.Input.Poll()

	if s := g.Input.Line().Text(); s != g.lastInput {
		g.lastInput = s
		g.caret.Reset()
	} else {
		g.caret.Update(dt)
	}
	if g.fps != nil {
		g.fps.update(float64(dt))
	}
	if g.updateFunc != nil {
		return g.updateFunc()
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	screen.Fill(g.ClearColor.RGBA())

	g.surface.begin(screen, g.Console.Font())
	g.Console.Draw(g.surface)
	layoutDone := time.Now()

	g.Console.DrawStatus(g.surface)
	g.drawInputBar(g.surface)
	g.surface.end()

	if g.fps != nil {
		g.fps.draw(screen)
	}

	if g.debug {
		g.stats = frameStats{
			drawTime:    layoutDone.Sub(start),
			overlayTime: time.Since(layoutDone),
			entries:     len(g.Console.VisibleSlice()),
			regions:     len(g.Console.ClickRegions()),
			textures:    g.surface.TextureCount(),
		}
		g.debugLog(g.stats)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. A window resize becomes a console viewport
// change.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if w, h := g.Console.Viewport(); w != outsideWidth || h != outsideHeight {
		g.Console.SetViewport(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// inputBarRect is the strip below the content area holding the prompt.
func (g *Game) inputBarRect() Rect {
	w, h := g.Console.Viewport()
	ih := float64(g.Console.Config().InputAreaHeight)
	return Rect{X: 0, Y: float64(h) - ih, Width: float64(w), Height: ih}
}

func (g *Game) drawInputBar(s Surface) {
	bar := g.inputBarRect()
	s.FillRect(bar, ColorInputBar)

	font := g.Console.Font()
	line := g.Input.Line()
	str := g.Prompt + line.Text()
	_, th := font.MeasureString("M")
	y := bar.Y + (bar.Height-th)/2
	s.DrawText(str, MarginLeft, y, ColorInputText)

	cw, _ := font.MeasureString(str)
	x := MarginLeft + cw
	if comp := line.Composition(); comp != "" {
		s.DrawText(comp, x, y, ColorStatus)
		compW, _ := font.MeasureString(comp)
		s.FillRect(Rect{X: x, Y: y + th, Width: compW, Height: 1}, ColorStatus)
		x += compW
	}
	if g.caret.Value >= 0.5 {
		s.FillRect(Rect{X: x + 1, Y: y, Width: caretWidth, Height: th}, ColorCaret)
	}
}

// Run opens a window and runs g until the window is closed or the update
// callback returns an error. Zero Width or Height use the console's
// configured screen size.
func Run(g *Game, cfg RunConfig) error {
	c := g.Console.Config()
	if cfg.Title == "" {
		cfg.Title = c.WindowTitle
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = c.ScreenWidth, c.ScreenHeight
	}
	g.Console.SetViewport(cfg.Width, cfg.Height)
	g.SetShowFPS(cfg.ShowFPS)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	Named("game").WithField("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)).Info("starting")
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("eraconsole: run: %w", err)
	}
	return nil
}
