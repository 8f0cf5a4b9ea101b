package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/danmaku/ecs"
	"github.com/stretchr/testify/assert"
)

type spawnerSystem struct {
	Spawned int
}

func (s *spawnerSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Queue.PushBack(ecs.CommandFunc{N: 1, Fn: func(q *ecs.Queue) {
		q.Storage().Spawn(Position{X: 1}, Velocity{DX: 1})
		s.Spawned++
	}})
}

type moveSystem struct {
	Movers ecs.Query[struct {
		*Position
		*Velocity
	}]
	Seen []int
}

func (s *moveSystem) Execute(frame *ecs.UpdateFrame) {
	s.Seen = append(s.Seen, s.Movers.Len())
	for _, m := range s.Movers.Iter() {
		m.Position.X += m.Velocity.DX * frame.DeltaTime
	}
}

type clockSystem struct {
	Clock ecs.Singleton[LevelClock]
}

func (s *clockSystem) Execute(frame *ecs.UpdateFrame) {
	s.Clock.Get().Elapsed += frame.DeltaTime
}

func TestSchedulerDrainsQueueBetweenSystems(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)

	spawner := &spawnerSystem{}
	mover := &moveSystem{}
	scheduler.Register(spawner)
	scheduler.Register(mover)

	scheduler.Once(0.5)
	scheduler.Once(0.5)

	// the mover sees the entity spawned by the system before it in the same tick
	assert.Equal(t, []int{1, 2}, mover.Seen)
	assert.Equal(t, 2, spawner.Spawned)
	assert.Equal(t, 2, storage.Len())
}

func TestSchedulerDrainsExternalCommandsFirst(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	mover := &moveSystem{}
	scheduler.Register(mover)

	scheduler.Queue().PushBack(ecs.CommandFunc{N: 1, Fn: func(q *ecs.Queue) {
		q.Storage().Spawn(Position{}, Velocity{DX: 2})
	}})
	scheduler.Once(1)
	assert.Equal(t, []int{1}, mover.Seen)
}

func TestSchedulerInitializesSingletons(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton(storage, LevelClock{})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&clockSystem{})
	for i := 0; i < 4; i++ {
		scheduler.Once(0.25)
	}

	assert.InDelta(t, 1.0, ecs.NewSingleton[LevelClock](storage).Get().Elapsed, 1e-9)
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&spawnerSystem{})
	scheduler.Register(&moveSystem{})

	for i := 0; i < 3; i++ {
		scheduler.Once(1.0 / 60)
	}

	stats := scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, uint64(3), stats.Ticks)
	assert.Equal(t, int64(6), stats.TotalExecutions)
	assert.Equal(t, "spawnerSystem", stats.Systems[0].Name)
	assert.Equal(t, "moveSystem", stats.Systems[1].Name)
	for _, s := range stats.Systems {
		assert.Equal(t, int64(3), s.ExecutionCount)
		assert.LessOrEqual(t, s.MinDuration, s.MaxDuration)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&spawnerSystem{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Positive(t, scheduler.GetStats().Ticks)
}
