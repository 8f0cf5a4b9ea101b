package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/spatial"
	"go.uber.org/zap"
)

// CollisionSystem rebuilds two spatial hash tables every tick and resolves
// bullet hits on players and enemies. Objects no larger than the reference
// radius go into the normal table; everything else into the oversized one,
// whose cells fit the largest hitbox in the content pack. Players and
// enemies are always in the oversized table so large bullets find them.
type CollisionSystem struct {
	w   *shared
	log *zap.Logger

	normal    *spatial.HashTable
	oversized *spatial.HashTable
	reference float64

	found []spatial.Entry
}

func newCollisionSystem(w *shared) *CollisionSystem {
	ref := w.cfg.Collision.ReferenceRadius
	scale := w.cfg.Collision.CellScale
	largest := max(w.pack.LargestHitbox(), ref)
	return &CollisionSystem{
		w:         w,
		log:       w.log.Named("collision"),
		normal:    spatial.NewHashTable(ref * scale),
		oversized: spatial.NewHashTable(largest * scale),
		reference: ref,
	}
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	s.rebuild()
	now := s.w.level.Get().Clock

	for p := range s.w.players.Values() {
		if p.Health.Dead() || p.Hitbox.Disabled || p.Player.Invincible > 0 {
			continue
		}
		s.hitPlayer(p, now)
	}
	for e := range s.w.enemies.Values() {
		if e.Health.Dead() || e.Hitbox.Disabled || e.Despawn.Marked {
			continue
		}
		s.hitEnemy(frame.Queue, e, now)
	}
}

func (s *CollisionSystem) rebuild() {
	s.normal.Clear()
	s.oversized.Clear()

	for b := range s.w.bullets.Values() {
		if b.Hitbox.Disabled || b.Hitbox.Radius <= 0 || b.Bullet.Residual {
			continue
		}
		s.table(b.Hitbox.Radius).Insert(b.EntityId, b.Hitbox.Circle(b.Position.Vector))
	}
	for p := range s.w.players.Values() {
		s.insertTarget(p.EntityId, p.Hitbox, p.Position)
	}
	for e := range s.w.enemies.Values() {
		s.insertTarget(e.EntityId, e.Hitbox, e.Position)
	}
}

func (s *CollisionSystem) table(radius float64) *spatial.HashTable {
	if radius <= s.reference {
		return s.normal
	}
	return s.oversized
}

func (s *CollisionSystem) insertTarget(id ecs.EntityId, hb *component.Hitbox, pos *component.Position) {
	c := hb.Circle(pos.Vector)
	s.oversized.Insert(id, c)
	if hb.Radius <= s.reference {
		s.normal.Insert(id, c)
	}
}

// candidates returns the live bullets of side overlapping target's hitbox
// in both tables.
func (s *CollisionSystem) candidates(id ecs.EntityId, hb *component.Hitbox, pos *component.Position, side component.Side, now float64) []*bulletEntity {
	c := hb.Circle(pos.Vector)
	s.found = s.normal.Overlapping(c, s.found[:0])
	s.found = s.oversized.Overlapping(c, s.found)

	var out []*bulletEntity
	for _, entry := range s.found {
		b := s.w.bullets.Get(entry.Id)
		if b == nil || b.Bullet.Side != side {
			continue
		}
		if b.Hitbox.Disabled || b.Bullet.Residual || b.Despawn.Marked {
			continue
		}
		if b.Bullet.ImmuneTo(id, now) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *CollisionSystem) hitPlayer(p playerEntity, now float64) {
	for _, b := range s.candidates(p.EntityId, p.Hitbox, p.Position, component.SideEnemy, now) {
		p.Health.Current = max(p.Health.Current-b.Bullet.Damage, 0)
		s.w.hooks.Visuals.Flash(p.EntityId, hurtFlash)
		s.applyPolicy(b, p.EntityId, now)

		p.Player.Invulnerable = p.Player.Def.Invulnerability.Value()
		p.Hitbox.Disabled = true

		if p.Health.Dead() {
			s.w.hooks.Audio.Play(p.Player.Def.DeathSound)
			s.w.hooks.Listener.PlayerDied(p.EntityId)
			p.Despawn.Mark(false)
			s.log.Info("player died", zap.String("player", p.Player.Def.ID), zap.Float64("clock", now))
		} else {
			s.w.hooks.Audio.Play(p.Player.Def.HurtSound)
		}
		s.log.Debug("player hit",
			zap.String("attack", b.Bullet.Attribution.Attack),
			zap.String("enemy", b.Bullet.Attribution.Enemy),
			zap.Float64("health", p.Health.Current),
		)
		// the hitbox is disabled now, so nothing else may land this tick
		return
	}
}

func (s *CollisionSystem) hitEnemy(q *ecs.Queue, e enemyEntity, now float64) {
	for _, b := range s.candidates(e.EntityId, e.Hitbox, e.Position, component.SidePlayer, now) {
		e.Health.Current = max(e.Health.Current-b.Bullet.Damage, 0)
		s.applyPolicy(b, e.EntityId, now)

		if !e.Health.Dead() {
			s.w.hooks.Visuals.Flash(e.EntityId, hitFlash)
			s.w.hooks.Audio.Play(e.Enemy.Def.HurtSound)
			continue
		}
		s.kill(q, e)
		return
	}
}

func (s *CollisionSystem) kill(q *ecs.Queue, e enemyEntity) {
	def := e.Enemy.Def
	attr := component.Attribution{Enemy: def.ID}
	if ph := e.Enemy.CurrentPhase(); ph != nil {
		attr.Phase = ph.ID
	}

	s.w.runEffects(q, e.EntityId, e.Position.Vector, def.Death, attr, true)
	if len(def.Drops) > 0 {
		q.PushBack(SpawnItemsCommand{w: s.w, Drops: def.Drops, At: e.Position.Vector})
	}
	s.w.addPoints(def.Points.Value())
	s.w.hooks.Audio.Play(def.DeathSound)

	e.Enemy.Killed = true
	e.Hitbox.Disabled = true
	e.Despawn.Mark(false)
	s.w.level.Get().Killed++
	s.log.Debug("enemy killed", zap.String("enemy", def.ID), zap.Stringer("id", e.EntityId))
}

func (s *CollisionSystem) applyPolicy(b *bulletEntity, target ecs.EntityId, now float64) {
	switch b.Bullet.Policy {
	case component.DestroyWithChildren:
		b.Despawn.Mark(true)
		b.Hitbox.Disabled = true
	case component.DestroySelfOnly:
		b.Bullet.Residual = true
		b.Hitbox.Disabled = true
		if b.Sprite != nil {
			b.Sprite.Hidden = true
		}
		s.w.hooks.Visuals.Hide(b.EntityId)
	case component.Pierce:
		b.Bullet.Immunize(s.w.storage.CreateEntityRef(target), now)
		s.w.hooks.Visuals.Flash(b.EntityId, pierceFlash)
	}
}
