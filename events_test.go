package eraconsole

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastText(c *Console) string {
	entries := c.History().Entries()
	if len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].PlainText()
}

func TestEventRegistry_RegisterAndTrigger(t *testing.T) {
	c := newTestConsole(t, 1000, 600)
	r := NewEventRegistry(c)

	var gotState any
	err := r.Register(Registration{
		Name:    "start",
		Trigger: "0",
		Handler: HandlerFunc(func(ctx *EventContext) (any, error) {
			gotState = ctx.State
			assert.Equal(t, "start", ctx.Name)
			assert.Same(t, c, ctx.Console)
			return "next", nil
		}),
	})
	require.NoError(t, err)

	res, err := r.Trigger("start", 42)
	require.NoError(t, err)
	assert.Equal(t, "next", res)
	assert.Equal(t, 42, gotState)

	reg, ok := r.ByTrigger("0")
	require.True(t, ok)
	assert.Equal(t, "start", reg.Name)
	assert.Empty(t, r.CallStack())
}

func TestEventRegistry_RegisterValidation(t *testing.T) {
	r := NewEventRegistry(nil)
	assert.Error(t, r.Register(Registration{Handler: HandlerFunc(nil)}))
	assert.Error(t, r.Register(Registration{Name: "x"}))
}

func TestEventRegistry_ReRegisterDropsOldTrigger(t *testing.T) {
	r := NewEventRegistry(nil)
	h := HandlerFunc(func(*EventContext) (any, error) { return nil, nil })
	require.NoError(t, r.Register(Registration{Name: "shop", Trigger: "s", Handler: h}))
	require.NoError(t, r.Register(Registration{Name: "shop", Trigger: "buy", Handler: h}))

	_, ok := r.ByTrigger("s")
	assert.False(t, ok)
	_, ok = r.ByTrigger("buy")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestEventRegistry_UnknownEvent(t *testing.T) {
	c := newTestConsole(t, 1000, 600)
	r := NewEventRegistry(c)
	h := HandlerFunc(func(*EventContext) (any, error) { return nil, nil })
	require.NoError(t, r.Register(Registration{Name: "shop_open", Handler: h}))
	require.NoError(t, r.Register(Registration{Name: "train", Handler: h}))

	_, err := r.Trigger("shopopen", nil)
	require.ErrorIs(t, err, ErrEventNotFound)
	assert.Contains(t, err.Error(), "did you mean shop_open?")
	assert.Contains(t, lastText(c), "event not found: shopopen")

	n := c.History().Len()
	_, err = r.TriggerQuiet("zzz", nil)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, n, c.History().Len(), "quiet triggers do not print")
}

func TestEventRegistry_HandlerFailures(t *testing.T) {
	c := newTestConsole(t, 1000, 600)
	r := NewEventRegistry(c)
	require.NoError(t, r.Register(Registration{Name: "boom", Handler: HandlerFunc(func(*EventContext) (any, error) {
		panic("kaboom")
	})}))
	require.NoError(t, r.Register(Registration{Name: "fail", Handler: HandlerFunc(func(*EventContext) (any, error) {
		return nil, errors.New("no gold")
	})}))

	require.NotPanics(t, func() {
		_, err := r.Trigger("boom", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kaboom")
	})
	assert.Contains(t, lastText(c), "event boom failed")
	assert.Empty(t, r.CallStack())

	_, err := r.Trigger("fail", nil)
	assert.EqualError(t, err, "no gold")
	assert.Equal(t, "event fail failed: no gold", lastText(c))
}

func TestEventRegistry_SaveStack(t *testing.T) {
	r := NewEventRegistry(nil)
	var stack, saved []string
	require.NoError(t, r.Register(Registration{Name: "day", Main: true, Handler: HandlerFunc(func(ctx *EventContext) (any, error) {
		return ctx.Registry.Trigger("shop", nil)
	})}))
	require.NoError(t, r.Register(Registration{Name: "shop", Handler: HandlerFunc(func(ctx *EventContext) (any, error) {
		return ctx.Registry.Trigger("talk", nil)
	})}))
	require.NoError(t, r.Register(Registration{Name: "talk", Main: true, Handler: HandlerFunc(func(ctx *EventContext) (any, error) {
		stack = ctx.Registry.CallStack()
		saved = ctx.Registry.SaveStack()
		return nil, nil
	})}))

	_, err := r.Trigger("day", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"day", "shop", "talk"}, stack)
	assert.Equal(t, []string{"day", "talk"}, saved)
	assert.Empty(t, r.SaveStack())
}

func TestEventRegistry_Suggest(t *testing.T) {
	r := NewEventRegistry(nil)
	h := HandlerFunc(func(*EventContext) (any, error) { return nil, nil })
	for _, n := range []string{"Shop", "shop_menu", "train", "sleep"} {
		require.NoError(t, r.Register(Registration{Name: n, Handler: h}))
	}
	got := r.Suggest("shp")
	assert.Subset(t, []string{"Shop", "shop_menu"}, got)
	assert.NotEmpty(t, got)
	assert.Nil(t, r.Suggest("  "))
	assert.Equal(t, []string{"Shop", "shop_menu", "sleep", "train"}, r.Names())
}

func writeEvents(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "start.toml"), `
title = "Morning"
main = true
color = [200, 255, 200]
lines = ["You wake up.", "[IMG:ghost]"]
next = "day"

[[menu]]
label = "Go outside"
click = "outside"

[[menu]]
label = "Sleep"
`)
	writeFile(t, filepath.Join(dir, "sub", "leave.toml"), `
name = "leave"
trigger = "exit"
lines = ["Bye."]
`)
	writeFile(t, filepath.Join(dir, "broken.toml"), "lines = [\n")
	writeFile(t, filepath.Join(dir, "odd.toml"), "kind = \"script\"\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an event")
	return dir
}

func TestEventRegistry_Discover(t *testing.T) {
	c := newTestConsole(t, 1000, 800)
	r := NewEventRegistry(c)
	dir := writeEvents(t)

	n, err := r.Discover(dir)
	assert.Equal(t, 2, n)
	require.Error(t, err, "broken manifests are reported")
	assert.Contains(t, err.Error(), "unknown event kind")

	start, ok := r.Lookup("start")
	require.True(t, ok)
	assert.True(t, start.Main)
	assert.Equal(t, "Morning", start.Title)

	leave, ok := r.ByTrigger("exit")
	require.True(t, ok)
	assert.Equal(t, "leave", leave.Name)

	var warnings int
	for _, e := range c.History().Entries() {
		if strings.HasPrefix(e.PlainText(), "failed to load") {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)
}

func TestEventRegistry_PrintHandler(t *testing.T) {
	c := newTestConsole(t, 1000, 800)
	r := NewEventRegistry(c)
	_, _ = r.Discover(writeEvents(t))
	c.ClearHistory()

	res, err := r.Trigger("start", nil)
	require.NoError(t, err)
	assert.Equal(t, "day", res)

	var texts []string
	for _, e := range c.History().Entries() {
		texts = append(texts, e.PlainText())
	}
	assert.Equal(t, []string{
		strings.Repeat("─", 40),
		"Morning",
		"You wake up.",
		"[IMAGE] ghost",
		"[0] Go outside",
		"[1] Sleep",
	}, texts)
	assert.Equal(t, RGB{200, 255, 200}, c.History().Entries()[2].Color)

	c.Layout()
	regions := c.ClickRegions()
	require.Len(t, regions, 2)
	assert.Equal(t, "outside", regions[0].Value)
	assert.Equal(t, "1", regions[1].Value)
}

func TestEventRegistry_Reload(t *testing.T) {
	c := newTestConsole(t, 1000, 800)
	r := NewEventRegistry(c)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.toml"), "lines = [\"a\"]\n")
	n, err := r.Discover(dir)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	writeFile(t, filepath.Join(dir, "b.toml"), "lines = [\"b\"]\n")
	n, err = r.Reload(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, "reload complete, 2 events", lastText(c))
}

func TestEventRegistry_DiscoverMissingDir(t *testing.T) {
	c := newTestConsole(t, 1000, 800)
	r := NewEventRegistry(c)
	_, err := r.Discover(filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(lastText(c), "events directory not found"))
}

func TestPrintHandler_BadColor(t *testing.T) {
	_, err := newPrintHandler(Manifest{Color: []int{1, 2}})
	assert.Error(t, err)
	_, err = newPrintHandler(Manifest{Color: []int{1, 2, 300}})
	assert.Error(t, err)
}

func TestPrintHandler_NoConsole(t *testing.T) {
	r := NewEventRegistry(nil)
	h, err := newPrintHandler(Manifest{Lines: []string{"x"}})
	require.NoError(t, err)
	require.NoError(t, r.Register(Registration{Name: "p", Handler: h}))
	_, err = r.Trigger("p", nil)
	assert.Error(t, err)
}
