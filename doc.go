// Package eraconsole is a scrolling text-and-image console for
// choice-driven text games, rendered with [Ebitengine].
//
// A [Console] owns an append-only history of entries (colored text lines,
// dividers, menu rows, single images and layered image composites), the
// scroll window over that history, and the click regions that turn visible
// fragments and images back into input. Producers append; the frontend
// draws and feeds clicks and typed lines back as [SubmitEvent]s.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cfg, _ := eraconsole.LoadConfig("config.toml")
//	c := eraconsole.NewConsole(cfg, nil)
//	c.AppendText("Welcome.", eraconsole.ColorWhite)
//	c.AppendFragments(eraconsole.Frag("[0] start").Click("start").Fragments())
//
//	game := eraconsole.NewGame(c)
//	game.OnSubmit(func(ev eraconsole.SubmitEvent) {
//		c.AppendText("you chose "+ev.Text, eraconsole.ColorMenu)
//	})
//	eraconsole.Run(game, eraconsole.RunConfig{})
//
// For a terminal frontend use the tui sub-package, which draws the same
// console into a bubbletea program.
//
// # Images
//
// Assets are registered in an [AssetRegistry], either directly, from
// per-character CSV index files, or from TexturePacker atlases (see
// [LoadAssetIndex]). Images are requested in code with [ImageRequest] and
// [CompositeRequest] or from text with marks:
//
//	[IMG:smile|chara=alice|size=128,128|click=talk]
//	[IMG_STACK:bg|face{offset:(40,20);click:talk}]
//
// Missing assets never abort: the entry is drawn as a placeholder box and
// the failure is logged.
//
// # Events
//
// An [EventRegistry] maps names to handlers. Handlers are registered in
// code or discovered from TOML manifests, and a failing handler is reported
// on the console instead of crashing the game.
//
// [Ebitengine]: https://ebitengine.org
package eraconsole
