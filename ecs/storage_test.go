package ecs_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/plus3/danmaku/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	tests := []struct {
		archetypeId uint32
		index       uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("archetype=%d,index=%d", tt.archetypeId, tt.index), func(t *testing.T) {
			entityId := ecs.NewEntityId(tt.archetypeId, tt.index)
			assert.Equal(t, tt.archetypeId, entityId.ArchetypeId())
			assert.Equal(t, tt.index, entityId.Index())
		})
	}
}

func TestSpawnAndGetComponent(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	id := storage.Spawn(&Position{X: 3, Y: 4}, Score(7))
	assert.True(t, storage.Alive(id))

	pos := ecs.ReadComponent[Position](storage, id)
	require.NotNil(t, pos)
	assert.Equal(t, Position{X: 3, Y: 4}, *pos)

	score := ecs.ReadComponent[Score](storage, id)
	require.NotNil(t, score)
	assert.Equal(t, Score(7), *score)

	assert.Nil(t, ecs.ReadComponent[Velocity](storage, id))
	assert.True(t, storage.HasComponent(id, reflect.TypeFor[Position]()))
	assert.False(t, storage.HasComponent(id, reflect.TypeFor[Velocity]()))
}

func TestSpawnWithoutComponentsPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	assert.Panics(t, func() { storage.Spawn() })
}

func TestSpawnUnregisteredPanics(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	type unregistered struct{}
	assert.Panics(t, func() { storage.Spawn(unregistered{}) })
}

func TestDeleteEntity(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	a := storage.Spawn(Position{X: 1})
	b := storage.Spawn(Position{X: 2})
	assert.Equal(t, 2, storage.Len())

	storage.Delete(a)
	assert.False(t, storage.Alive(a))
	assert.True(t, storage.Alive(b))
	assert.Equal(t, 1, storage.Len())
	assert.Nil(t, ecs.ReadComponent[Position](storage, a))

	// freed slots are reused
	c := storage.Spawn(Position{X: 3})
	assert.Equal(t, a.Index(), c.Index())
	assert.Equal(t, 3.0, ecs.ReadComponent[Position](storage, c).X)
}

func TestReserveRoundsUpAndCoversArchetypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.SetReserveIncrement(32)

	for i := 0; i < 10; i++ {
		storage.Spawn(Position{X: float64(i)})
	}

	storage.Reserve(50)
	assert.Equal(t, 64, storage.Capacity())
	assert.GreaterOrEqual(t, storage.Capacity(), 10+50)

	for _, a := range storage.Archetypes() {
		assert.GreaterOrEqual(t, a.Cap(), 64)
	}

	// archetypes created after the reservation inherit it
	storage.Spawn(Velocity{DX: 1})
	arch := storage.GetArchetype(Velocity{})
	require.NotNil(t, arch)
	assert.GreaterOrEqual(t, arch.Cap(), 64)

	// a smaller request never shrinks
	storage.Reserve(1)
	assert.Equal(t, 64, storage.Capacity())
}

func TestPointersSurviveSpawnsWithinReservation(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	first := storage.Spawn(Position{X: 1}, Health{Current: 5, Max: 5})

	storage.Reserve(500)
	held := ecs.ReadComponent[Health](storage, first)

	for i := 0; i < 500; i++ {
		storage.Spawn(Position{X: float64(i)}, Health{Current: i, Max: i})
	}

	held.Current = 42
	assert.Same(t, held, ecs.ReadComponent[Health](storage, first))
	assert.Equal(t, 42, ecs.ReadComponent[Health](storage, first).Current)
}

func TestSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	clock := ecs.NewSingleton(storage, LevelClock{Elapsed: 1.5})
	assert.True(t, clock.Exists())
	assert.Equal(t, 1.5, clock.Get().Elapsed)

	clock.Get().Elapsed = 3
	again := ecs.NewSingleton[LevelClock](storage)
	assert.Equal(t, 3.0, again.Get().Elapsed)

	var missing ecs.Singleton[Score]
	missing.Init(storage)
	assert.False(t, missing.Exists())

	stats := storage.CollectStats()
	assert.Equal(t, 1, stats.SingletonCount)
}

func TestCollectStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{}, Velocity{})
	storage.Spawn(Position{}, Velocity{})
	storage.Spawn(Position{})

	stats := storage.CollectStats()
	assert.Equal(t, 3, stats.EntityCount)
	assert.Equal(t, 2, stats.ArchetypeCount)
}
