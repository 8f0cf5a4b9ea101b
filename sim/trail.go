package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/movement"
)

type trailEntity struct {
	*movement.Path
	*component.ShadowTrail
}

// ShadowTrailSystem samples afterimage positions from each path's history.
type ShadowTrailSystem struct {
	w *shared

	Entities ecs.Query[trailEntity]
}

func (s *ShadowTrailSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities.Values() {
		t := e.ShadowTrail
		t.Points = t.Points[:0]
		if t.Interval <= 0 {
			continue
		}
		for i := 1; i <= t.Count; i++ {
			t.Points = append(t.Points, e.Path.PreviousPosition(float64(i)*t.Interval, s.w))
		}
	}
}
