package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/movement"
)

type movingEntity struct {
	ecs.EntityId
	*movement.Path
	*component.Position
	Bullet  *component.Bullet  `ecs:"optional"`
	Player  *Player            `ecs:"optional"`
	Spawner *Spawner           `ecs:"optional"`
	Despawn *component.Despawn `ecs:"optional"`
}

// MovementSystem advances every path and writes the resulting positions.
// Positions are written in a second pass so every path sees its reference
// after the reference moved this tick.
type MovementSystem struct {
	w *shared

	Entities ecs.Query[movingEntity]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities.Values() {
		side := component.SideEnemy
		switch {
		case e.Bullet != nil:
			side = e.Bullet.Side
		case e.Player != nil:
			side = component.SidePlayer
		}
		e.Path.Update(frame.DeltaTime, s.w.env(side))
	}

	for e := range s.Entities.Values() {
		e.Position.Vector = e.Path.Position(s.w)
		if e.Spawner != nil {
			s.release(frame.Queue, e)
		}
	}
}

// release spawns the delayed children whose delay has passed.
func (s *MovementSystem) release(q *ecs.Queue, e movingEntity) {
	age := e.Path.Age()
	kept := e.Spawner.Pending[:0]
	var ref *ecs.EntityRef
	for _, child := range e.Spawner.Pending {
		if age < child.Delay {
			kept = append(kept, child)
			continue
		}
		if e.Despawn != nil && e.Despawn.Marked {
			continue
		}
		if ref == nil {
			ref = s.w.storage.CreateEntityRef(e.EntityId)
		}
		q.PushBack(SpawnEMPCommand{
			w:           s.w,
			Source:      ref,
			Root:        child.EMP,
			Side:        e.Spawner.Side,
			Attribution: e.Spawner.Attribution,
			TimeLag:     age - child.Delay,
		})
	}
	e.Spawner.Pending = kept
}
