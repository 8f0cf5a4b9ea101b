package sim

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"go.uber.org/zap"
)

// runEffects applies phase or death effects of the enemy id standing at pos.
// Anchored attacks fire from a fresh stationary entity so they survive the
// enemy; otherwise they move with it.
func (w *shared) runEffects(q *ecs.Queue, id ecs.EntityId, pos cp.Vector, effects []content.Effect, attr component.Attribution, anchored bool) {
	for _, eff := range effects {
		switch eff.Kind {
		case content.PlayAnimation:
			w.hooks.Visuals.PlayAnimation(id, eff.Animation)

		case content.DespawnEnemyBullets:
			n := 0
			for b := range w.bullets.Values() {
				if b.Bullet.Side == component.SideEnemy && !b.Despawn.Marked {
					b.Despawn.Mark(true)
					n++
				}
			}
			w.log.Debug("enemy bullets cleared", zap.Int("count", n))

		case content.ExecuteAttacks:
			attacks := make([]*content.Attack, 0, len(eff.Attacks))
			for _, aid := range eff.Attacks {
				if a := w.pack.Attack(aid); a != nil {
					attacks = append(attacks, a)
					w.hooks.Audio.Play(a.Sound)
				}
			}
			if len(attacks) == 0 {
				continue
			}
			if anchored {
				q.PushFront(AnchorCommand{w: w, At: pos, Attacks: attacks, Side: component.SideEnemy, Attribution: attr})
				continue
			}
			ref := w.storage.CreateEntityRef(id)
			for _, a := range attacks {
				at := attr
				at.Attack = a.ID
				q.PushBack(SpawnEMPCommand{w: w, Source: ref, Root: &a.Root, Side: component.SideEnemy, Attribution: at})
			}
		}
	}
}
