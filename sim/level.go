package sim

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
	"go.uber.org/zap"
)

// LevelManagerSystem runs the level clock and spawns scheduled enemies.
type LevelManagerSystem struct {
	w   *shared
	log *zap.Logger

	State ecs.Singleton[LevelState]
}

func (s *LevelManagerSystem) Execute(frame *ecs.UpdateFrame) {
	state := s.State.Get()
	state.Clock += frame.DeltaTime

	level := s.w.pack.Level(state.Level)
	if level == nil || state.Completed {
		return
	}

	for state.NextEvent < len(level.Events) {
		ev := &level.Events[state.NextEvent]
		if ev.Time.Value() > state.LevelTime() {
			break
		}
		state.NextEvent++

		def := s.w.pack.Enemy(ev.Enemy)
		if def == nil {
			s.log.Warn("level event names an unknown enemy", zap.String("enemy", ev.Enemy))
			continue
		}
		at := ev.Spawn.Resolve(nil, cp.Vector{}).Position
		frame.Queue.PushBack(SpawnEnemyCommand{w: s.w, Def: def, At: at})
	}

	alive := 0
	for e := range s.w.enemies.Values() {
		if !e.Despawn.Marked {
			alive++
		}
	}
	state.EnemiesAlive = alive

	if alive == 0 && state.NextEvent >= len(level.Events) && frame.Queue.Len() == 0 {
		state.Completed = true
		s.w.hooks.Listener.LevelCompleted(level.ID)
		s.log.Info("level completed",
			zap.String("level", level.ID),
			zap.Float64("time", state.LevelTime()),
			zap.Int("killed", state.Killed),
			zap.Float64("points", state.Points),
		)
	}
}
