package ecs_test

import (
	"testing"

	"github.com/plus3/danmaku/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQueryCachesUntilInvalidated(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1})

	query := ecs.NewQuery[struct{ *Position }](storage)
	assert.Equal(t, 1, query.Len())

	storage.Spawn(Position{X: 2})
	assert.Equal(t, 1, query.Len())

	query.Invalidate()
	assert.Equal(t, 2, query.Len())
}

func TestQueryPicksUpNewArchetypes(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	storage.Spawn(Position{X: 1})

	query := ecs.NewQuery[struct{ *Position }](storage)
	query.Execute()
	assert.Equal(t, 1, query.Len())

	storage.Spawn(Position{X: 2}, Velocity{})
	storage.Spawn(Velocity{})
	query.Execute()
	assert.Equal(t, 2, query.Len())

	var total float64
	for item := range query.Values() {
		total += item.Position.X
	}
	assert.Equal(t, 3.0, total)
}

func TestQueryGet(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 4}, Health{Current: 1})

	query := ecs.NewQuery[struct {
		*Position
		*Health
	}](storage)

	item := query.Get(id)
	if assert.NotNil(t, item) {
		assert.Equal(t, 4.0, item.Position.X)
	}
	assert.Nil(t, query.Get(storage.Spawn(Position{})))
}

func TestQueryIterStopsEarly(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := 0; i < 5; i++ {
		storage.Spawn(Position{X: float64(i)})
	}

	query := ecs.NewQuery[struct{ *Position }](storage)
	n := 0
	for range query.Iter() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}
