package ecs

import (
	"iter"
)

// Query wraps a View with caching for repeated iteration within one system run.
// The Scheduler invalidates every registered Query before each system executes,
// so a system sees entities created by the queue drains that ran before it.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	lastArchetypeCount int

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a new Query with archetype-level caching.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.lastArchetypeCount = -1
	q.cachedArchetypes = nil
	q.cacheValid = false
}

// Invalidate drops the per-run entity cache.
func (q *Query[T]) Invalidate() {
	q.cacheValid = false
}

func (q *Query[T]) invalidate() {
	q.Invalidate()
}

// Execute builds the entity and component caches.
func (q *Query[T]) Execute() {
	if currentCount := len(q.storage.order); currentCount != q.lastArchetypeCount {
		q.cachedArchetypes = q.cachedArchetypes[:0]
		for _, archetype := range q.storage.order {
			if q.view.matchesArchetype(archetype) {
				q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			}
		}
		q.lastArchetypeCount = currentCount
	}

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for _, archetype := range q.cachedArchetypes {
		for id, item := range q.view.iterArchetype(archetype) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.cacheValid = true
}

// Len returns the number of matching entities.
func (q *Query[T]) Len() int {
	if !q.cacheValid {
		q.Execute()
	}
	return len(q.cachedEntities)
}

// Iter returns an iterator over entity IDs and component data, building the
// cache first if it was invalidated.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		q.Execute()
	}

	entities, components := q.cachedEntities, q.cachedComponents
	return func(yield func(EntityId, T) bool) {
		for i := range entities {
			if !yield(entities[i], components[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Get fills the view for a single entity, bypassing the cache.
func (q *Query[T]) Get(id EntityId) *T {
	return q.view.Get(id)
}
