package ecs_test

import "github.com/plus3/danmaku/ecs"

// Common test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current int
	Max     int
}

type Bullet struct {
	Damage int
}

type Anchor struct {
	Ref *ecs.EntityRef
}

type Score int32

type LevelClock struct {
	Elapsed float64
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Bullet](registry)
	ecs.RegisterComponent[Anchor](registry)
	ecs.RegisterComponent[Score](registry)
	return registry
}
