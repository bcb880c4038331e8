package eraconsole

import (
	"fmt"
	"strings"
	"time"
)

// SubmitSource tells where a submitted line came from.
type SubmitSource uint8

const (
	SourceKeyboard SubmitSource = iota // typed and confirmed with Enter
	SourcePointer                      // click value of a clicked region
	SourceInjected                     // automation (TestRunner, InjectText)
)

// String returns a human readable name for s.
func (s SubmitSource) String() string {
	switch s {
	case SourceKeyboard:
		return "keyboard"
	case SourcePointer:
		return "pointer"
	case SourceInjected:
		return "injected"
	default:
		return fmt.Sprintf("SubmitSource(%d)", uint8(s))
	}
}

// SubmitEvent is one line delivered to the input stream, either typed text
// or the click value of an activated region.
type SubmitEvent struct {
	Text   string
	Source SubmitSource
	At     time.Time
}

// EntityStore is the interface for optional ECS integration. When set on a
// Console, every submission is forwarded to it.
type EntityStore interface {
	EmitSubmit(event SubmitEvent)
}

// Option configures a Console at construction.
type Option func(*Console)

// WithLoader replaces the image decoder used by the resolver.
func WithLoader(load LoadFunc) Option {
	return func(c *Console) { c.resolver = NewResolver(load) }
}

// WithSessionLog uses l as transcript instead of opening Config.LogFile.
func WithSessionLog(l *SessionLog) Option {
	return func(c *Console) { c.transcript = l }
}

// WithAssets shares an existing asset registry.
func WithAssets(r *AssetRegistry) Option {
	return func(c *Console) { c.assets = r }
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// WithWrapAccounting overrides Config.WrapAccounting.
func WithWrapAccounting(w WrapAccounting) Option {
	return func(c *Console) { c.wrap = w; c.wrapSet = true }
}

// Console is the scrolling content engine: it owns the history and its
// viewport, the asset registry and resolver, the click regions of the last
// layout pass and the session transcript. A Console is not safe for
// concurrent use; it belongs to the UI goroutine.
type Console struct {
	cfg        Config
	font       Font
	screenW    int
	screenH    int
	history    *History
	assets     *AssetRegistry
	resolver   *Resolver
	layout     Layout
	transcript *SessionLog
	wrap       WrapAccounting
	wrapSet    bool
	log        *LogEntry
	now        func() time.Time

	store    EntityStore
	onSubmit []func(SubmitEvent)
}

// NewConsole creates a console for cfg. A nil font selects DebugCellFont.
// Problems opening the transcript are reported as a console warning.
func NewConsole(cfg Config, font Font, opts ...Option) *Console {
	warnings := cfg.Validate()
	if font == nil {
		font = DebugCellFont
	}
	c := &Console{
		cfg:     cfg,
		font:    font,
		screenW: cfg.ScreenWidth,
		screenH: cfg.ScreenHeight,
		log:     Named("console"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.assets == nil {
		c.assets = NewAssetRegistry()
	}
	if c.resolver == nil {
		c.resolver = NewResolver(nil)
	}
	if !c.wrapSet {
		c.wrap, _ = ParseWrapAccounting(cfg.WrapAccounting)
	}
	c.history = NewHistory(cfg.MaxHistory, cfg.ContentHeight())

	for _, w := range warnings {
		c.log.Warn(w)
	}
	if c.transcript == nil && cfg.LogFile != "" {
		l, err := OpenSessionLog(cfg.LogFile)
		if err != nil {
			c.Warn(fmt.Sprintf("session log unavailable: %v", err))
		} else {
			c.transcript = l
		}
	}
	return c
}

// Close closes the transcript.
func (c *Console) Close() error {
	return c.transcript.Close()
}

// Config returns the validated configuration.
func (c *Console) Config() Config {
	return c.cfg
}

// Font returns the measurement font.
func (c *Console) Font() Font {
	return c.font
}

// SetFont changes the font used for wrapping, layout and drawing. Entries
// already in history keep their wrap; only later appends use the new font.
func (c *Console) SetFont(f Font) {
	if f == nil {
		f = DebugCellFont
	}
	c.font = f
}

// SetViewport resizes the screen. The content height is recomputed and the
// visible slice refreshed.
func (c *Console) SetViewport(width, height int) {
	c.screenW, c.screenH = width, height
	c.history.SetViewHeight(height - c.cfg.InputAreaHeight - 2*MarginTop)
}

// Viewport returns the screen size.
func (c *Console) Viewport() (width, height int) {
	return c.screenW, c.screenH
}

// History returns the underlying history.
func (c *Console) History() *History {
	return c.history
}

// Assets returns the asset registry.
func (c *Console) Assets() *AssetRegistry {
	return c.assets
}

// RegisterAsset adds or replaces an asset.
func (c *Console) RegisterAsset(a Asset) {
	c.assets.Register(a)
}

// LoadAssets indexes an asset directory into the registry.
func (c *Console) LoadAssets(dir string) (int, error) {
	n, err := LoadAssetIndex(c.assets, dir)
	if err != nil {
		c.log.WithError(err).Warn("asset index incomplete")
	}
	return n, err
}

// Resolver returns the image resolver.
func (c *Console) Resolver() *Resolver {
	return c.resolver
}

// SetEntityStore sets the ECS sink for submissions. nil disables it.
func (c *Console) SetEntityStore(s EntityStore) {
	c.store = s
}

// OnSubmit registers fn to receive every submitted line.
func (c *Console) OnSubmit(fn func(SubmitEvent)) {
	c.onSubmit = append(c.onSubmit, fn)
}

// wrapWidth is the width text is wrapped against.
func (c *Console) wrapWidth() float64 {
	w := float64(c.screenW - WrapGutter)
	if c.history.ScrollbarVisible() {
		w -= ScrollbarWidth
	}
	return w
}

func (c *Console) newEntry(kind EntryKind, height int, color RGB) *Entry {
	return &Entry{Kind: kind, Height: height, Color: color, Created: c.now()}
}

// push appends entries to history and writes each to the transcript.
func (c *Console) push(entries ...*Entry) {
	c.history.push(entries...)
	for _, e := range entries {
		c.record(e.PlainText())
	}
}

// record writes one transcript line. The first failure is surfaced once as a
// warning entry; the log disables itself afterwards.
func (c *Console) record(line string) {
	if c.transcript == nil {
		return
	}
	if err := c.transcript.Write(line); err != nil {
		c.log.WithError(err).Error("session log disabled")
		c.history.push(c.textEntries(fmt.Sprintf("session log disabled: %v", err), ColorWarning)...)
	}
}

func (c *Console) textEntries(text string, color RGB) []*Entry {
	lines := wrapLines(c.font, text, c.wrapWidth())
	out := make([]*Entry, 0, len(lines))
	for _, line := range lines {
		e := c.newEntry(KindText, c.cfg.LineHeight, color)
		if line != "" {
			e.Fragments = []Fragment{{Text: line, Color: color}}
		}
		out = append(out, e)
	}
	return out
}

// AppendText wraps text to the viewport and appends one entry per visual
// line, every line in color. Empty text appends one blank line.
func (c *Console) AppendText(text string, color RGB) []*Entry {
	entries := c.textEntries(text, color)
	c.push(entries...)
	return entries
}

// AppendFragments appends one text entry made of frags. Fragments are not
// wrapped here; wrapping onto visual rows happens during layout. It returns
// nil for empty input.
func (c *Console) AppendFragments(frags []Fragment) *Entry {
	if len(frags) == 0 {
		return nil
	}
	e := c.newEntry(KindText, c.cfg.LineHeight, frags[0].Color)
	e.Fragments = append([]Fragment(nil), frags...)
	c.push(e)
	return e
}

// AppendDivider appends a centred line of char repeated length times.
func (c *Console) AppendDivider(char string, length int, color RGB) *Entry {
	if char == "" {
		char = "─"
	}
	if length <= 0 {
		length = 40
	}
	e := c.newEntry(KindDivider, c.cfg.LineHeight, color)
	e.Text = strings.Repeat(char, length)
	c.push(e)
	return e
}

// AppendMenu appends one indented, non-clickable row per item.
func (c *Console) AppendMenu(items []string, color RGB) []*Entry {
	entries := make([]*Entry, 0, len(items))
	for _, item := range items {
		e := c.newEntry(KindMenu, c.cfg.LineHeight, color)
		e.Text = item
		entries = append(entries, e)
	}
	c.push(entries...)
	return entries
}

// AppendImage resolves req and appends an image entry. A failure to resolve
// or measure the asset still appends an entry that draws as a placeholder;
// the failure is logged and the call returns normally.
func (c *Console) AppendImage(req ImageRequest) *Entry {
	meta := &ImageMeta{Request: req}
	asset, err := c.assets.Resolve(req.Key, req.Chara, req.Variant)
	if err == nil {
		meta.Asset = asset
		meta.Size, err = c.resolver.MeasureAsset(asset, req.Crop, req.Size)
	}
	height := meta.Size.H + ImagePadding
	if err != nil {
		meta.Err = err
		height = PlaceholderSize + ImagePadding
		if req.Size != nil && req.Size.H > 0 {
			height = req.Size.H + ImagePadding
		}
		c.log.WithError(err).WithField("key", req.Key).Warn("image unavailable")
	}
	e := c.newEntry(KindImage, height, ColorWhite)
	e.Image = meta
	c.push(e)
	return e
}

// AppendComposite resolves every layer and appends one composite entry.
// Layers that cannot be resolved are skipped with a warning. The template
// width defaults to the screen width less the right margin and the height
// to the tallest layer.
func (c *Console) AppendComposite(req CompositeRequest) *Entry {
	meta := &CompositeMeta{Click: req.Click}
	tallest := 0
	var failed []string
	for _, l := range req.Layers {
		asset, err := c.assets.Resolve(l.Key, l.Chara, l.Variant)
		var size Size
		if err == nil {
			size, err = c.resolver.MeasureAsset(asset, l.Crop, l.Size)
		}
		if err != nil {
			c.log.WithError(err).WithField("key", l.Key).Warn("composite layer unavailable")
			failed = append(failed, l.Key)
			continue
		}
		tallest = max(tallest, size.H)
		meta.Layers = append(meta.Layers, ResolvedLayer{CompositeLayer: l, Asset: asset})
	}
	if meta.Click == "" {
		for _, l := range req.Layers {
			if l.Click != "" {
				meta.Click = l.Click
				break
			}
		}
	}

	meta.Template = req.Template
	if meta.Template.W <= 0 {
		meta.Template.W = c.screenW - MarginRight
	}
	if meta.Template.H <= 0 {
		meta.Template.H = tallest
	}
	if len(meta.Layers) == 0 {
		meta.Err = fmt.Errorf("%w: no composite layer resolved", ErrMissingAsset)
		if meta.Template.H <= 0 {
			meta.Template.H = PlaceholderSize
		}
	}

	e := c.newEntry(KindComposite, meta.Template.H+ImagePadding, ColorWhite)
	e.Composite = meta
	c.push(e)
	if len(failed) > 0 {
		c.Warn(fmt.Sprintf("missing image: %s", strings.Join(failed, ", ")))
	}
	return e
}

// AppendMark parses an [IMG:...] or [IMG_STACK:...] mark and appends the
// requested image or composite. A malformed mark appends an error line.
func (c *Console) AppendMark(mark string) *Entry {
	m, err := ParseMark(mark)
	if err != nil {
		c.log.WithError(err).Warn("malformed image mark")
		short := mark
		if r := []rune(short); len(r) > 50 {
			short = string(r[:50]) + "..."
		}
		entries := c.AppendText(fmt.Sprintf("[bad image mark: %s]", short), ColorError)
		return entries[len(entries)-1]
	}
	if m.Composite != nil {
		return c.AppendComposite(*m.Composite)
	}
	return c.AppendImage(*m.Image)
}

// Warn logs msg and appends it as a warning line.
func (c *Console) Warn(msg string) {
	c.log.Warn(msg)
	c.AppendText(msg, ColorWarning)
}

// Submit delivers a line to the input stream. Typed lines are echoed in
// ColorEcho; every submission is followed by a blank line.
func (c *Console) Submit(text string, src SubmitSource) {
	if src != SourcePointer {
		c.AppendText(text, ColorEcho)
	}
	c.AppendText("", ColorWhite)

	ev := SubmitEvent{Text: text, Source: src, At: c.now()}
	c.log.WithField("source", src).Debugf("submit %q", text)
	if c.store != nil {
		c.store.EmitSubmit(ev)
	}
	for _, fn := range c.onSubmit {
		fn(ev)
	}
}

// --- Scrolling ---

// ScrollUp moves the view n entries towards older content.
func (c *Console) ScrollUp(n int) { c.history.ScrollUp(n) }

// ScrollDown moves the view n entries towards the live tail.
func (c *Console) ScrollDown(n int) { c.history.ScrollDown(n) }

// ScrollToTop shows the oldest entry.
func (c *Console) ScrollToTop() { c.history.ScrollToTop() }

// ScrollToBottom pins the view to the live tail.
func (c *Console) ScrollToBottom() { c.history.ScrollToBottom() }

// ScrollInfo reports counts and edge flags of the current position.
func (c *Console) ScrollInfo() ScrollInfo { return c.history.ScrollInfo() }

// VisibleSlice returns the entries that fit the viewport, oldest first.
func (c *Console) VisibleSlice() []*Entry { return c.history.VisibleSlice() }

// ClearHistory drops every entry, cached render and click region.
func (c *Console) ClearHistory() {
	c.history.Clear()
	c.resolver.Reset()
	c.layout = Layout{}
	c.record("[system] history cleared")
}

// --- Layout & clicks ---

func (c *Console) buildLayout() Layout {
	return layoutEntries(layoutParams{
		font:       c.font,
		width:      float64(c.screenW),
		viewHeight: float64(c.history.ViewHeight()),
		wrap:       c.wrap,
	}, c.history.VisibleSlice())
}

// Layout rebuilds the layout and click regions without drawing and returns
// them. Draw does the same before painting.
func (c *Console) Layout() *Layout {
	c.layout = c.buildLayout()
	return &c.layout
}

// ClickRegions returns the regions of the last layout pass.
func (c *Console) ClickRegions() []ClickRegion {
	return c.layout.Regions
}

// ResolveClick maps a pointer position to the click value of the first
// region of the last layout pass that contains it.
func (c *Console) ResolveClick(x, y float64) (string, bool) {
	return c.layout.ResolveClick(x, y)
}

// Click resolves (x, y) and submits the click value when one is found.
func (c *Console) Click(x, y float64) bool {
	v, ok := c.ResolveClick(x, y)
	if !ok {
		return false
	}
	c.Submit(v, SourcePointer)
	return true
}
