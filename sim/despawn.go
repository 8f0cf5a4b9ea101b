package sim

import (
	"github.com/kamstrup/intmap"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/movement"
	"go.uber.org/zap"
)

type despawnEntity struct {
	ecs.EntityId
	*component.Despawn
	Path     *movement.Path      `ecs:"optional"`
	Position *component.Position `ecs:"optional"`
	Anchor   *component.Anchor   `ecs:"optional"`
	Enemy    *Enemy              `ecs:"optional"`
}

// DespawnSystem removes expired, marked and out-of-bounds entities. An entity
// that others still move relative to is replaced by an anchor instead of
// leaving their paths with a dangling reference; attached entities marked
// to go with their parent are removed with it.
type DespawnSystem struct {
	w   *shared
	log *zap.Logger

	Entities ecs.Query[despawnEntity]

	// attached maps a reference entity to the entities whose current
	// segment is relative to it; dependants also counts past segments.
	attached   *intmap.Map[ecs.EntityId, []ecs.EntityId]
	dependants *intmap.Map[ecs.EntityId, []ecs.EntityId]
	pending    []ecs.EntityId
}

func newDespawnSystem(w *shared) *DespawnSystem {
	return &DespawnSystem{
		w:          w,
		log:        w.log.Named("despawn"),
		attached:   intmap.New[ecs.EntityId, []ecs.EntityId](64),
		dependants: intmap.New[ecs.EntityId, []ecs.EntityId](64),
	}
}

func (s *DespawnSystem) Execute(frame *ecs.UpdateFrame) {
	storage := frame.Storage
	bounds := s.w.bounds()

	s.attached.Clear()
	s.dependants.Clear()
	for e := range s.Entities.Values() {
		e.Despawn.Age += frame.DeltaTime
		if e.Despawn.Lifetime > 0 && e.Despawn.Age >= e.Despawn.Lifetime {
			e.Despawn.Mark(false)
		}
		if e.Despawn.Bounded && e.Position != nil && !bounds.ContainsVect(e.Position.Vector) {
			e.Despawn.Mark(false)
		}

		if e.Path == nil {
			continue
		}
		if parent, ok := storage.ResolveEntityRef(e.Path.Reference()); ok {
			s.link(s.attached, parent, e.EntityId)
		}
		for ref := range e.Path.References() {
			if parent, ok := storage.ResolveEntityRef(ref); ok {
				s.link(s.dependants, parent, e.EntityId)
			}
		}
	}

	// anchors nothing refers to anymore
	for e := range s.Entities.Values() {
		if e.Anchor == nil {
			continue
		}
		if _, used := s.dependants.Get(e.EntityId); !used {
			e.Despawn.Mark(false)
		}
	}

	s.cascade()

	var deleted []ecs.EntityId
	for e := range s.Entities.Values() {
		if !e.Despawn.Marked {
			continue
		}
		if e.Enemy != nil {
			s.w.hooks.Listener.EnemyDespawned(e.EntityId, e.Enemy.Killed)
		}

		var keep []ecs.EntityId
		deps, _ := s.dependants.Get(e.EntityId)
		for _, dep := range deps {
			if d := s.Entities.Get(dep); d != nil && !d.Despawn.Marked {
				keep = append(keep, dep)
			}
		}
		if len(keep) == 0 {
			deleted = append(deleted, e.EntityId)
			continue
		}
		frame.Queue.PushBack(ReanchorCommand{
			w:          s.w,
			Parent:     e.EntityId,
			At:         s.w.position(e.EntityId),
			Dependants: keep,
		})
	}

	for _, id := range deleted {
		storage.Delete(id)
	}
	if len(deleted) > 0 {
		s.log.Debug("despawned", zap.Int("count", len(deleted)))
	}
}

func (s *DespawnSystem) link(m *intmap.Map[ecs.EntityId, []ecs.EntityId], parent, child ecs.EntityId) {
	children, _ := m.Get(parent)
	if n := len(children); n > 0 && children[n-1] == child {
		return
	}
	m.Put(parent, append(children, child))
}

// cascade marks attached entities of marked parents when the parent cascades
// or the child was authored to leave with its parent.
func (s *DespawnSystem) cascade() {
	s.pending = s.pending[:0]
	for e := range s.Entities.Values() {
		if e.Despawn.Marked {
			s.pending = append(s.pending, e.EntityId)
		}
	}

	for len(s.pending) > 0 {
		id := s.pending[len(s.pending)-1]
		s.pending = s.pending[:len(s.pending)-1]

		parent := s.Entities.Get(id)
		if parent == nil {
			continue
		}
		children, _ := s.attached.Get(id)
		for _, child := range children {
			c := s.Entities.Get(child)
			if c == nil || c.Despawn.Marked {
				continue
			}
			if parent.Despawn.Cascade || c.Despawn.WithParent {
				c.Despawn.Mark(parent.Despawn.Cascade)
				s.pending = append(s.pending, child)
			}
		}
	}
}
