package ecs

import (
	"github.com/phanxgames/eraconsole"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SubmitEventType is the Donburi event type for console submissions.
var SubmitEventType = events.NewEventType[eraconsole.SubmitEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Submissions are published to SubmitEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) eraconsole.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitSubmit(event eraconsole.SubmitEvent) {
	SubmitEventType.Publish(s.world, event)
}
