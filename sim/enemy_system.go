package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"go.uber.org/zap"
)

// EnemySystem drives every enemy's phase, pattern and attack state machine.
type EnemySystem struct {
	w   *shared
	log *zap.Logger

	Enemies ecs.Query[enemyEntity]
}

func (s *EnemySystem) Execute(frame *ecs.UpdateFrame) {
	alive := 0
	for e := range s.Enemies.Values() {
		if !e.Despawn.Marked {
			alive++
		}
	}

	limit := s.w.cfg.Simulation.MaxTransitionsPerTick
	for e := range s.Enemies.Values() {
		if e.Despawn.Marked || e.Health.Dead() {
			continue
		}
		d := &enemyDriver{w: s.w, log: s.log, q: frame.Queue, e: e, alive: alive}
		if !e.Enemy.Update(frame.DeltaTime, limit, d) {
			s.log.Warn("enemy transitions exceeded the per-tick limit",
				zap.String("enemy", e.Enemy.Def.ID),
				zap.Int("limit", limit),
			)
		}
	}
}

// enemyDriver connects one enemy's state machine to the world for a tick.
type enemyDriver struct {
	w     *shared
	log   *zap.Logger
	q     *ecs.Queue
	e     enemyEntity
	alive int
	ref   *ecs.EntityRef
}

func (d *enemyDriver) pack() *content.Pack {
	return d.w.pack
}

func (d *enemyDriver) healthRatio() float64 {
	return d.e.Health.Ratio()
}

func (d *enemyDriver) enemiesAlive() int {
	return d.alive
}

func (d *enemyDriver) attribution() component.Attribution {
	attr := component.Attribution{Enemy: d.e.Enemy.Def.ID}
	if ph := d.e.Enemy.CurrentPhase(); ph != nil {
		attr.Phase = ph.ID
	}
	if pat := d.e.Enemy.CurrentPattern(); pat != nil {
		attr.Pattern = pat.ID
	}
	return attr
}

func (d *enemyDriver) beginPhase(ph *content.Phase) {
	id := d.e.EntityId
	d.w.runEffects(d.q, id, d.e.Position.Vector, ph.Begin, d.attribution(), false)
	d.w.hooks.Visuals.SetAnimatables(id, ph.Animatables)
	if d.e.Sprite != nil {
		d.e.Sprite.Animatables = ph.Animatables
	}
	d.w.changeMusic(ph.Music)
	d.log.Debug("phase begins",
		zap.String("enemy", d.e.Enemy.Def.ID),
		zap.Int("phase", d.e.Enemy.Phase),
		zap.String("id", ph.ID),
		zap.Stringer("condition", ph.Start.Kind),
	)
}

func (d *enemyDriver) endPhase(ph *content.Phase) {
	d.w.runEffects(d.q, d.e.EntityId, d.e.Position.Vector, ph.End, d.attribution(), false)
}

func (d *enemyDriver) startPattern(p *content.Pattern, lag float64) {
	d.e.Path.SetPath(p.Actions, lag, d.w.env(component.SideEnemy))
	d.e.Position.Vector = d.e.Path.Position(d.w)

	if t := d.e.Trail; t != nil {
		trail := d.e.Enemy.Def.Trail
		if p.Trail.Count > 0 {
			trail = p.Trail
		}
		t.Count, t.Interval = trail.Count, trail.Interval.Value()
	}
	d.log.Debug("pattern starts",
		zap.String("enemy", d.e.Enemy.Def.ID),
		zap.String("pattern", p.ID),
		zap.Float64("lag", lag),
	)
}

func (d *enemyDriver) fire(a *content.Attack, lag float64) {
	if d.ref == nil {
		d.ref = d.w.storage.CreateEntityRef(d.e.EntityId)
	}
	attr := d.attribution()
	attr.Attack = a.ID
	d.q.PushBack(SpawnEMPCommand{
		w:           d.w,
		Source:      d.ref,
		Root:        &a.Root,
		Side:        component.SideEnemy,
		Attribution: attr,
		TimeLag:     lag,
	})
	d.w.hooks.Audio.Play(a.Sound)
}
