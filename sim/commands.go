package sim

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/geom"
	"github.com/plus3/danmaku/movement"
)

// immediateCount is the number of points spawnEMP creates for e: e itself and
// every descendant reachable without a delay.
func immediateCount(e *content.EMP) int {
	n := 1
	for i := range e.Children {
		if e.Children[i].Delay.Value() <= 0 {
			n += immediateCount(&e.Children[i])
		}
	}
	return n
}

// SpawnEMPCommand fires one attack's point tree from Source.
type SpawnEMPCommand struct {
	w           *shared
	Source      *ecs.EntityRef
	Root        *content.EMP
	Side        component.Side
	Attribution component.Attribution
	// TimeLag is how long ago the attack was due; the tree starts that far
	// along its paths.
	TimeLag float64
}

func (c SpawnEMPCommand) EntitiesQueued() int {
	return immediateCount(c.Root)
}

func (c SpawnEMPCommand) Execute(q *ecs.Queue) {
	id, ok := q.Storage().ResolveEntityRef(c.Source)
	if !ok {
		panic("sim: attack source despawned before its attack spawned")
	}
	c.w.spawnEMP(c.Root, c.Source, c.w.positionAgo(id, c.TimeLag), c.Side, c.Attribution, c.TimeLag)
}

func (w *shared) spawnEMP(e *content.EMP, source *ecs.EntityRef, sourcePos cp.Vector, side component.Side, attr component.Attribution, lag float64) {
	path := movement.NewPath(e.Spawn.Resolve(source, sourcePos), e.Actions)
	path.Update(lag, w.env(side))
	pos := path.Position(w)

	radius := e.Hitbox.Value()
	comps := []any{
		component.Position{Vector: pos},
		path,
		component.Hitbox{Radius: radius, Disabled: radius <= 0},
		component.Bullet{
			Side:        side,
			Damage:      e.Damage.Value(),
			Policy:      e.Policy,
			PierceReset: e.PierceReset.Value(),
			Attribution: attr,
		},
		component.Despawn{
			Lifetime:   e.Lifetime.Value(),
			Age:        lag,
			Bounded:    true,
			WithParent: e.DespawnWithParent,
		},
		component.Sprite{Name: e.Sprite},
	}
	if e.Trail.Count > 0 {
		comps = append(comps, component.ShadowTrail{Count: e.Trail.Count, Interval: e.Trail.Interval.Value()})
	}

	var pending []pendingChild
	for i := range e.Children {
		if d := e.Children[i].Delay.Value(); d > 0 {
			pending = append(pending, pendingChild{EMP: &e.Children[i], Delay: d})
		}
	}
	if len(pending) > 0 {
		comps = append(comps, Spawner{Side: side, Attribution: attr, Pending: pending})
	}

	id := w.storage.Spawn(comps...)
	if len(pending) == len(e.Children) {
		return
	}

	// children spawn where this point was when the tree fired
	spawnedAt := path.PreviousPosition(lag, w)
	ref := w.storage.CreateEntityRef(id)
	for i := range e.Children {
		if e.Children[i].Delay.Value() <= 0 {
			w.spawnEMP(&e.Children[i], ref, spawnedAt, side, attr, lag)
		}
	}
}

// SpawnEnemyCommand places an enemy at an absolute position.
type SpawnEnemyCommand struct {
	w   *shared
	Def *content.Enemy
	At  cp.Vector
}

func (c SpawnEnemyCommand) EntitiesQueued() int { return 1 }

func (c SpawnEnemyCommand) Execute(q *ecs.Queue) {
	path := movement.NewPath(movement.SpawnInfo{Position: c.At}, nil)
	path.Update(0, c.w.env(component.SideEnemy))

	hp := c.Def.Health.Value()
	q.Storage().Spawn(
		component.Position{Vector: c.At},
		path,
		component.Hitbox{Radius: c.Def.Hitbox.Value()},
		component.Health{Current: hp, Max: hp},
		NewEnemy(c.Def),
		component.Despawn{Bounded: true},
		component.ShadowTrail{Count: c.Def.Trail.Count, Interval: c.Def.Trail.Interval.Value()},
		component.Sprite{Name: c.Def.Sprite},
	)
	c.w.level.Get().Spawned++
}

// SpawnPlayerCommand places the player.
type SpawnPlayerCommand struct {
	w   *shared
	Def *content.Player
	At  cp.Vector
}

func (c SpawnPlayerCommand) EntitiesQueued() int { return 1 }

func (c SpawnPlayerCommand) Execute(q *ecs.Queue) {
	path := movement.NewPath(movement.SpawnInfo{Position: c.At}, nil)
	path.Update(0, c.w.env(component.SidePlayer))

	hp := c.Def.Health.Value()
	q.Storage().Spawn(
		component.Position{Vector: c.At},
		path,
		component.Hitbox{Radius: c.Def.Hitbox.Value()},
		component.Health{Current: hp, Max: hp},
		NewPlayer(c.Def, c.w.pack),
		component.Despawn{},
		component.Sprite{Name: c.Def.Sprite, Animatables: c.Def.Tiers[0].Animatables},
	)
}

// item defaults for drops without an item definition.
var defaultItem = content.Item{
	Hitbox:           expr.Lit(6),
	ActivationRadius: expr.Lit(64),
	FallSpeed:        expr.Lit(60),
	AttractedSpeed:   expr.Lit(300),
}

// dropSpread is the radius drops are fanned out over.
const dropSpread = 12

// SpawnItemsCommand drops an enemy's collectibles around At.
type SpawnItemsCommand struct {
	w     *shared
	Drops []content.Drop
	At    cp.Vector
}

func (c SpawnItemsCommand) EntitiesQueued() int {
	n := 0
	for _, d := range c.Drops {
		n += max(d.Count.Int(), 0)
	}
	return n
}

func (c SpawnItemsCommand) Execute(q *ecs.Queue) {
	total := c.EntitiesQueued()
	i := 0
	for _, d := range c.Drops {
		item := c.w.pack.Item(d.Kind)
		if item == nil {
			item = &defaultItem
		}
		fall := []movement.Action{{
			Kind:     movement.MoveLinear,
			Speed:    item.FallSpeed,
			Angle:    expr.Lit(math.Pi / 2),
			Duration: expr.Lit(-1),
		}}

		for range max(d.Count.Int(), 0) {
			at := c.At
			if total > 1 {
				at = at.Add(geom.Polar(2*math.Pi*float64(i)/float64(total), dropSpread))
			}
			i++

			path := movement.NewPath(movement.SpawnInfo{Position: at}, fall)
			path.Update(0, c.w.env(component.SideEnemy))
			q.Storage().Spawn(
				component.Position{Vector: at},
				path,
				component.Hitbox{Radius: item.Hitbox.Value()},
				component.Collectible{Kind: d.Kind, Value: d.Value.Value(), ActivationRadius: item.ActivationRadius.Value()},
				component.Despawn{Lifetime: item.Lifetime.Value(), Bounded: true},
				component.Sprite{Name: d.Kind.String()},
			)
		}
	}
}

// AnchorCommand creates a stationary reference entity at At and fires
// Attacks from it. It is pushed to the front of the queue so the anchor
// exists before anything that depends on it.
type AnchorCommand struct {
	w           *shared
	At          cp.Vector
	Attacks     []*content.Attack
	Side        component.Side
	Attribution component.Attribution
}

func (c AnchorCommand) EntitiesQueued() int { return 1 }

func (c AnchorCommand) Execute(q *ecs.Queue) {
	id := q.Storage().Spawn(component.Position{Vector: c.At}, component.Anchor{}, component.Despawn{})
	ref := q.Storage().CreateEntityRef(id)

	for i := len(c.Attacks) - 1; i >= 0; i-- {
		a := c.Attacks[i]
		attr := c.Attribution
		attr.Attack = a.ID
		q.PushFront(SpawnEMPCommand{w: c.w, Source: ref, Root: &a.Root, Side: c.Side, Attribution: attr})
	}
}

// ReanchorCommand replaces a despawning entity that others still move
// relative to with a stationary anchor where it stood, then deletes it.
type ReanchorCommand struct {
	w          *shared
	Parent     ecs.EntityId
	At         cp.Vector
	Dependants []ecs.EntityId
}

func (c ReanchorCommand) EntitiesQueued() int { return 1 }

func (c ReanchorCommand) Execute(q *ecs.Queue) {
	storage := q.Storage()
	from := storage.CreateEntityRef(c.Parent)
	if from == nil {
		panic("sim: re-anchoring an entity that is already gone")
	}

	id := storage.Spawn(component.Position{Vector: c.At}, component.Anchor{}, component.Despawn{})
	to := storage.CreateEntityRef(id)
	for _, dep := range c.Dependants {
		if path := ecs.ReadComponent[movement.Path](storage, dep); path != nil {
			path.Reanchor(from, to)
		}
	}
	storage.Delete(c.Parent)
}
