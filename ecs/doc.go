// Package ecs provides ECS adapters for the eraconsole input stream.
//
// The primary adapter is [NewDonburiStore], which publishes every console
// submission (typed lines, click values, injected lines) into a [Donburi]
// world as a typed event. Subscribe to [SubmitEventType] in your ECS systems
// to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	console.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
