package eraconsole

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sahilm/fuzzy"
)

// EventContext is passed to a handler when its event runs.
type EventContext struct {
	Console  *Console
	Registry *EventRegistry
	Name     string
	State    any // caller supplied game state
}

// Handler runs one event. The result is returned to whoever triggered it.
type Handler interface {
	Execute(ctx *EventContext) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *EventContext) (any, error)

// Execute calls f(ctx).
func (f HandlerFunc) Execute(ctx *EventContext) (any, error) {
	return f(ctx)
}

// Registration describes one registered event. Main events are the ones a
// save file records from the call stack.
type Registration struct {
	Name    string
	Trigger string // alternate id; defaults to Name
	Title   string
	Main    bool
	Handler Handler
}

// Manifest is the TOML description of a data-driven event.
type Manifest struct {
	Name    string     `toml:"name"`
	Trigger string     `toml:"trigger"`
	Title   string     `toml:"title"`
	Main    bool       `toml:"main"`
	Kind    string     `toml:"kind"`
	Color   []int      `toml:"color"`
	Lines   []string   `toml:"lines"`
	Menu    []MenuItem `toml:"menu"`
	Next    string     `toml:"next"`

	Path string `toml:"-"`
}

// MenuItem is one clickable option of a print event.
type MenuItem struct {
	Label string `toml:"label"`
	Click string `toml:"click"`
}

// Factory builds the handler for a manifest of one kind.
type Factory func(m Manifest) (Handler, error)

// KindPrint is the built-in manifest kind that prints lines and a menu.
const KindPrint = "print"

// EventRegistry maps event names to handlers. It keeps the call stack of
// running events so the main ones can be saved.
type EventRegistry struct {
	console   *Console
	events    map[string]Registration
	triggers  map[string]string
	factories map[string]Factory
	stack     []string
	log       *LogEntry
}

// NewEventRegistry creates a registry that reports to c. c may be nil in
// which case failures are only logged.
func NewEventRegistry(c *Console) *EventRegistry {
	r := &EventRegistry{
		console:   c,
		events:    make(map[string]Registration),
		triggers:  make(map[string]string),
		factories: make(map[string]Factory),
		log:       Named("events"),
	}
	r.RegisterKind(KindPrint, newPrintHandler)
	return r
}

// RegisterKind installs the factory used for manifests of kind.
func (r *EventRegistry) RegisterKind(kind string, f Factory) {
	r.factories[kind] = f
}

// Register adds or replaces an event.
func (r *EventRegistry) Register(reg Registration) error {
	if reg.Name == "" {
		return errors.New("eraconsole: event registration without name")
	}
	if reg.Handler == nil {
		return fmt.Errorf("eraconsole: event %q has no handler", reg.Name)
	}
	if reg.Trigger == "" {
		reg.Trigger = reg.Name
	}
	if old, ok := r.events[reg.Name]; ok && old.Trigger != reg.Trigger {
		delete(r.triggers, old.Trigger)
	}
	r.events[reg.Name] = reg
	r.triggers[reg.Trigger] = reg.Name
	return nil
}

// Lookup returns the registration named name.
func (r *EventRegistry) Lookup(name string) (Registration, bool) {
	reg, ok := r.events[name]
	return reg, ok
}

// ByTrigger returns the registration whose trigger id is trigger.
func (r *EventRegistry) ByTrigger(trigger string) (Registration, bool) {
	name, ok := r.triggers[trigger]
	if !ok {
		return Registration{}, false
	}
	return r.Lookup(name)
}

// Names returns every registered event name, sorted.
func (r *EventRegistry) Names() []string {
	names := make([]string, 0, len(r.events))
	for n := range r.events {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered events.
func (r *EventRegistry) Len() int {
	return len(r.events)
}

// Suggest returns up to three registered names that fuzzily match name.
func (r *EventRegistry) Suggest(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	names := r.Names()
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = strings.ToLower(n)
	}
	var out []string
	for _, m := range fuzzy.Find(name, keys) {
		out = append(out, names[m.Index])
		if len(out) == 3 {
			break
		}
	}
	return out
}

// Trigger runs the event named name. An unknown name reports
// ErrEventNotFound, with suggestions, to the console. Handler errors and
// panics are reported to the console and returned; they never propagate
// as panics.
func (r *EventRegistry) Trigger(name string, state any) (any, error) {
	return r.trigger(name, state, false)
}

// TriggerQuiet is Trigger without the console message for unknown events.
func (r *EventRegistry) TriggerQuiet(name string, state any) (any, error) {
	return r.trigger(name, state, true)
}

func (r *EventRegistry) trigger(name string, state any, quiet bool) (result any, err error) {
	reg, ok := r.events[name]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrEventNotFound, name)
		if s := r.Suggest(name); len(s) > 0 {
			err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
		}
		if !quiet {
			r.report(err.Error(), ColorError)
		}
		return nil, err
	}

	r.stack = append(r.stack, name)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		if p := recover(); p != nil {
			err = fmt.Errorf("eraconsole: event %s panicked: %v", name, p)
		}
		if err != nil {
			r.log.WithError(err).WithField("event", name).Error("event failed")
			r.report(fmt.Sprintf("event %s failed: %v", name, err), ColorError)
		}
	}()
	return reg.Handler.Execute(&EventContext{Console: r.console, Registry: r, Name: name, State: state})
}

func (r *EventRegistry) report(msg string, color RGB) {
	if r.console != nil {
		r.console.AppendText(msg, color)
	} else {
		r.log.Warn(msg)
	}
}

// CallStack returns the names of the running events, outermost first.
func (r *EventRegistry) CallStack() []string {
	return append([]string(nil), r.stack...)
}

// SaveStack returns the running events flagged Main, outermost first.
func (r *EventRegistry) SaveStack() []string {
	var out []string
	for _, name := range r.stack {
		if r.events[name].Main {
			out = append(out, name)
		}
	}
	return out
}

// Discover walks dir for *.toml manifests and registers an event for each.
// A manifest without a kind uses KindPrint and one without a name uses its
// file name. Failing manifests are skipped and their errors joined.
func (r *EventRegistry) Discover(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		r.report(fmt.Sprintf("events directory not found: %s", dir), ColorError)
		return 0, fmt.Errorf("eraconsole: events dir: %w", err)
	}
	var count int
	var errs []error
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".toml" {
			return nil
		}
		reg, err := r.loadManifest(path)
		if err != nil {
			errs = append(errs, err)
			r.report(fmt.Sprintf("failed to load %s: %v", path, err), ColorWarning)
			return nil
		}
		if err := r.Register(reg); err != nil {
			errs = append(errs, err)
			return nil
		}
		count++
		r.log.WithField("main", reg.Main).Debugf("loaded event %s", reg.Name)
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return count, errors.Join(errs...)
}

// Reload drops every registered event and discovers dir again.
func (r *EventRegistry) Reload(dir string) (int, error) {
	clear(r.events)
	clear(r.triggers)
	n, err := r.Discover(dir)
	r.report(fmt.Sprintf("reload complete, %d events", r.Len()), RGB{100, 255, 100})
	return n, err
}

func (r *EventRegistry) loadManifest(path string) (Registration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Registration{}, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Registration{}, err
	}
	m.Path = path
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), ".toml")
	}
	if m.Kind == "" {
		m.Kind = KindPrint
	}
	f, ok := r.factories[m.Kind]
	if !ok {
		return Registration{}, fmt.Errorf("unknown event kind %q", m.Kind)
	}
	h, err := f(m)
	if err != nil {
		return Registration{}, err
	}
	return Registration{Name: m.Name, Trigger: m.Trigger, Title: m.Title, Main: m.Main, Handler: h}, nil
}

// printHandler prints the manifest lines, then the menu as clickable rows,
// and returns the manifest's next event name.
type printHandler struct {
	m     Manifest
	color RGB
}

func newPrintHandler(m Manifest) (Handler, error) {
	color := ColorWhite
	if len(m.Color) > 0 {
		if len(m.Color) != 3 {
			return nil, fmt.Errorf("color wants 3 components, got %d", len(m.Color))
		}
		for _, v := range m.Color {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("color component %d out of range", v)
			}
		}
		color = RGB{uint8(m.Color[0]), uint8(m.Color[1]), uint8(m.Color[2])}
	}
	return &printHandler{m: m, color: color}, nil
}

func (h *printHandler) Execute(ctx *EventContext) (any, error) {
	c := ctx.Console
	if c == nil {
		return nil, errors.New("eraconsole: print event without console")
	}
	if h.m.Title != "" {
		c.AppendDivider("─", 40, ColorDivider)
		c.AppendText(h.m.Title, h.color)
	}
	for _, line := range h.m.Lines {
		if IsMark(line) {
			c.AppendMark(line)
			continue
		}
		c.AppendText(line, h.color)
	}
	for i, item := range h.m.Menu {
		click := item.Click
		if click == "" {
			click = strconv.Itoa(i)
		}
		c.AppendFragments(Frag(fmt.Sprintf("[%d] %s", i, item.Label)).Color(ColorMenu).Click(click).Fragments())
	}
	if h.m.Next == "" {
		return nil, nil
	}
	return h.m.Next, nil
}
