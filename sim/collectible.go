package sim

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
	"go.uber.org/zap"
)

// attractStep is how long an attracted item flies before re-aiming.
const attractStep = 0.1

// CollectibleSystem pulls items toward the player once within their
// activation radius and applies them on pickup.
type CollectibleSystem struct {
	w   *shared
	log *zap.Logger

	Items ecs.Query[struct {
		ecs.EntityId
		*component.Position
		*component.Hitbox
		*component.Collectible
		*movement.Path
		*component.Despawn
	}]
}

func (s *CollectibleSystem) Execute(frame *ecs.UpdateFrame) {
	var player *playerEntity
	for p := range s.w.players.Values() {
		if !p.Health.Dead() && !p.Despawn.Marked {
			player = &p
			break
		}
	}
	if player == nil {
		return
	}
	reach := player.Hitbox.Circle(player.Position.Vector)

	for item := range s.Items.Values() {
		if item.Despawn.Marked {
			continue
		}
		if item.Hitbox.Circle(item.Position.Vector).Overlaps(reach) {
			s.collect(player, item.Collectible)
			item.Despawn.Mark(false)
			continue
		}

		dist := item.Position.Vector.Distance(player.Position.Vector)
		if !item.Collectible.Attracted && dist > item.Collectible.ActivationRadius {
			continue
		}
		if item.Collectible.Attracted && !item.Path.Done() {
			continue
		}
		item.Collectible.Attracted = true

		speed := defaultItem.AttractedSpeed
		if def := s.w.pack.Item(item.Collectible.Kind); def != nil {
			speed = def.AttractedSpeed
		}
		item.Path.SetPath([]movement.Action{{
			Kind:     movement.MoveLinear,
			Speed:    speed,
			Aimed:    true,
			Duration: expr.Lit(attractStep),
		}}, 0, s.w.env(component.SideEnemy))
	}
}

func (s *CollectibleSystem) collect(p *playerEntity, c *component.Collectible) {
	switch c.Kind {
	case component.ItemPower:
		tierChanged, points := p.Player.AddPower(c.Value)
		s.w.addPoints(points)
		if tierChanged {
			animatables := p.Player.Animatables()
			s.w.hooks.Visuals.SetAnimatables(p.EntityId, animatables)
			if sprite := ecs.ReadComponent[component.Sprite](s.w.storage, p.EntityId); sprite != nil {
				sprite.Animatables = animatables
			}
			s.log.Debug("power tier changed", zap.Int("tier", p.Player.Tier), zap.Float64("power", p.Player.Power))
		}
	case component.ItemPoints:
		p.Player.Points += c.Value
		s.w.addPoints(c.Value)
	case component.ItemBomb:
		p.Player.Bombs += max(int(c.Value), 1)
	case component.ItemHealth:
		p.Health.Current = min(p.Health.Current+c.Value, p.Health.Max)
	}
}
