package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
	"go.uber.org/zap"
)

// PlayerSystem applies input to the player and drives its attack patterns.
type PlayerSystem struct {
	w   *shared
	log *zap.Logger

	Input   ecs.Singleton[PlayerInput]
	Players ecs.Query[playerEntity]
}

func (s *PlayerSystem) Execute(frame *ecs.UpdateFrame) {
	in := s.Input.Get()
	limit := s.w.cfg.Simulation.MaxTransitionsPerTick

	for p := range s.Players.Values() {
		if p.Health.Dead() || p.Despawn.Marked {
			continue
		}
		pl := p.Player
		pl.SetFocused(in.Focus)
		pl.Firing = in.Fire

		if in.Bomb && pl.ActivateBomb() {
			s.w.hooks.Audio.Play(pl.Def.BombSound)
			s.log.Debug("bomb", zap.Int("left", pl.Bombs), zap.Float64("clock", s.w.level.Get().Clock))
		}
		if in.Velocity != pl.velocity {
			pl.velocity = in.Velocity
			s.steer(p)
		}

		var ref *ecs.EntityRef
		fire := func(a *content.Attack, lag float64) {
			if ref == nil {
				ref = s.w.storage.CreateEntityRef(p.EntityId)
			}
			attr := component.Attribution{Attack: a.ID}
			if pat := pl.ActivePattern(s.w.pack); pat != nil {
				attr.Pattern = pat.ID
			}
			frame.Queue.PushBack(SpawnEMPCommand{
				w:           s.w,
				Source:      ref,
				Root:        &a.Root,
				Side:        component.SidePlayer,
				Attribution: attr,
				TimeLag:     lag,
			})
			s.w.hooks.Audio.Play(a.Sound)
		}
		if !pl.Update(frame.DeltaTime, s.w.pack, limit, fire) {
			s.log.Warn("player pattern transitions exceeded the per-tick limit", zap.Int("limit", limit))
		}

		if pl.Invulnerable <= 0 && p.Hitbox.Disabled {
			p.Hitbox.Disabled = false
		}
	}
	in.Bomb = false
}

// steer replaces the player's path with straight movement at the input
// velocity.
func (s *PlayerSystem) steer(p playerEntity) {
	v := p.Player.velocity
	p.Path.SetPath([]movement.Action{{
		Kind:     movement.MoveLinear,
		Speed:    expr.Lit(v.Length()),
		Angle:    expr.Lit(v.ToAngle()),
		Duration: expr.Lit(-1),
	}}, 0, s.w.env(component.SidePlayer))
}
