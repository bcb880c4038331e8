package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/eraconsole"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitSubmit(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []eraconsole.SubmitEvent
	SubmitEventType.Subscribe(world, func(w donburi.World, e eraconsole.SubmitEvent) {
		received = append(received, e)
	})

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.EmitSubmit(eraconsole.SubmitEvent{Text: "look", Source: eraconsole.SourceKeyboard, At: at})
	store.EmitSubmit(eraconsole.SubmitEvent{Text: "1", Source: eraconsole.SourcePointer, At: at})

	// Events are queued — process them.
	SubmitEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if received[0].Text != "look" || received[0].Source != eraconsole.SourceKeyboard {
		t.Errorf("event 0: %+v", received[0])
	}
	if received[1].Text != "1" || received[1].Source != eraconsole.SourcePointer {
		t.Errorf("event 1: %+v", received[1])
	}
	if !received[0].At.Equal(at) {
		t.Errorf("event 0 time = %v", received[0].At)
	}
}

func TestDonburiStore_ConsoleSubmit(t *testing.T) {
	eraconsole.SetLogOutput(nil)
	world := donburi.NewWorld()

	cfg := eraconsole.DefaultConfig()
	cfg.LogFile = ""
	c := eraconsole.NewConsole(cfg, eraconsole.CellFont{CellWidth: 10, CellHeight: 20})
	c.SetEntityStore(NewDonburiStore(world))

	var got []string
	SubmitEventType.Subscribe(world, func(w donburi.World, e eraconsole.SubmitEvent) {
		got = append(got, e.Source.String()+":"+e.Text)
	})

	c.Submit("north", eraconsole.SourceKeyboard)
	c.Submit("2", eraconsole.SourcePointer)
	events.ProcessAllEvents(world)

	if len(got) != 2 || got[0] != "keyboard:north" || got[1] != "pointer:2" {
		t.Errorf("got %v", got)
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store eraconsole.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	SubmitEventType.Subscribe(world, func(w donburi.World, e eraconsole.SubmitEvent) {
		count1++
	})
	SubmitEventType.Subscribe(world, func(w donburi.World, e eraconsole.SubmitEvent) {
		count2++
	})

	store.EmitSubmit(eraconsole.SubmitEvent{Text: "x"})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
