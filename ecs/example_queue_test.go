package ecs_test

import (
	"fmt"

	"github.com/plus3/danmaku/ecs"
)

type Emitter struct {
	Shots int
}

type Shot struct {
	Owner *ecs.EntityRef
}

// A system pushes creation commands instead of spawning while it iterates.
// The queue reserves room for each command before running it, so the
// command can hold a pointer to its parent while spawning children.
func ExampleQueue() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Emitter](registry)
	ecs.RegisterComponent[Shot](registry)
	storage := ecs.NewStorage(registry)

	emitter := storage.Spawn(Emitter{})
	queue := ecs.NewQueue(storage)

	queue.PushBack(ecs.CommandFunc{N: 3, Fn: func(q *ecs.Queue) {
		e := ecs.ReadComponent[Emitter](q.Storage(), emitter)
		owner := q.Storage().CreateEntityRef(emitter)
		for i := 0; i < 3; i++ {
			q.Storage().Spawn(Shot{Owner: owner})
			e.Shots++
		}
	}})
	queue.ExecuteAll()

	fmt.Println("shots:", ecs.ReadComponent[Emitter](storage, emitter).Shots)
	fmt.Println("entities:", storage.Len())
	// Output:
	// shots: 3
	// entities: 4
}
