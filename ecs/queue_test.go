package ecs_test

import (
	"testing"

	"github.com/plus3/danmaku/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnCmd(log *[]string, name string) ecs.Command {
	return ecs.CommandFunc{N: 1, Fn: func(q *ecs.Queue) {
		*log = append(*log, name)
		q.Storage().Spawn(Position{})
	}}
}

func TestQueueOrder(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.NewQueue(storage)

	var log []string
	queue.PushBack(spawnCmd(&log, "a"))
	queue.PushBack(spawnCmd(&log, "b"))
	queue.PushFront(spawnCmd(&log, "front"))
	assert.Equal(t, 3, queue.Len())

	queue.ExecuteAll()
	assert.Equal(t, []string{"front", "a", "b"}, log)
	assert.Equal(t, 0, queue.Len())
	assert.Equal(t, 3, queue.Executed())
	assert.Equal(t, 3, storage.Len())
}

func TestQueueCommandsPushedWhileDraining(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.NewQueue(storage)

	var log []string
	queue.PushBack(ecs.CommandFunc{N: 1, Fn: func(q *ecs.Queue) {
		log = append(log, "parent")
		q.Storage().Spawn(Position{})
		q.PushBack(spawnCmd(&log, "back"))
		q.PushFront(spawnCmd(&log, "anchor"))
	}})
	queue.PushBack(spawnCmd(&log, "sibling"))

	queue.ExecuteAll()
	assert.Equal(t, []string{"parent", "anchor", "sibling", "back"}, log)
	assert.Equal(t, 0, queue.Len())
}

func TestQueueEmptyDrain(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	queue := ecs.NewQueue(storage)

	queue.ExecuteAll()
	assert.Equal(t, 0, queue.Executed())
	assert.Equal(t, 0, storage.Capacity())
}

func TestQueueReservesBeforeEachCommand(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	holder := storage.Spawn(Position{X: 1}, Health{Current: 7})
	queue := ecs.NewQueue(storage)

	const spawned = 50
	var before int
	queue.PushBack(ecs.CommandFunc{N: spawned, Fn: func(q *ecs.Queue) {
		before = q.Storage().Len()
		held := ecs.ReadComponent[Health](q.Storage(), holder)
		require.NotNil(t, held)

		for i := 0; i < spawned; i++ {
			q.Storage().Spawn(Position{X: float64(i)}, Health{Current: i})
		}

		assert.Same(t, held, ecs.ReadComponent[Health](q.Storage(), holder))
		assert.Equal(t, 7, held.Current)
	}})

	queue.ExecuteAll()
	assert.GreaterOrEqual(t, storage.Capacity(), before+spawned)
	assert.Equal(t, 1+spawned, storage.Len())
}
