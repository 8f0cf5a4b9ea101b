package sim

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/config"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/movement"
	"go.uber.org/zap"
)

type playerEntity struct {
	ecs.EntityId
	*component.Position
	*component.Hitbox
	*component.Health
	*Player
	*movement.Path
	*component.Despawn
}

type enemyEntity struct {
	ecs.EntityId
	*component.Position
	*component.Hitbox
	*component.Health
	*Enemy
	*movement.Path
	*component.Despawn
	Trail  *component.ShadowTrail `ecs:"optional"`
	Sprite *component.Sprite      `ecs:"optional"`
}

type bulletEntity struct {
	ecs.EntityId
	*component.Position
	*component.Hitbox
	*component.Bullet
	*component.Despawn
	Sprite *component.Sprite `ecs:"optional"`
}

// shared is what systems and commands of one world have in common.
type shared struct {
	storage *ecs.Storage
	pack    *content.Pack
	cfg     *config.Config
	hooks   Hooks
	log     *zap.Logger
	level   *ecs.Singleton[LevelState]

	players *ecs.View[playerEntity]
	enemies *ecs.View[enemyEntity]
	bullets *ecs.View[bulletEntity]
}

func newShared(storage *ecs.Storage, pack *content.Pack, cfg *config.Config, hooks Hooks, log *zap.Logger) *shared {
	return &shared{
		storage: storage,
		pack:    pack,
		cfg:     cfg,
		hooks:   hooks.withDefaults(),
		log:     log,
		level:   ecs.NewSingleton[LevelState](storage),
		players: ecs.NewView[playerEntity](storage),
		enemies: ecs.NewView[enemyEntity](storage),
		bullets: ecs.NewView[bulletEntity](storage),
	}
}

// Frame resolves a path reference. A stale reference means an entity was
// deleted while something still moved relative to it, which the despawn
// system's re-anchoring rules out.
func (w *shared) Frame(ref *ecs.EntityRef) (cp.Vector, *movement.Path) {
	id, ok := w.storage.ResolveEntityRef(ref)
	if !ok {
		panic("sim: path references a despawned entity")
	}
	if path := ecs.ReadComponent[movement.Path](w.storage, id); path != nil {
		return path.Position(w), path
	}
	if pos := ecs.ReadComponent[component.Position](w.storage, id); pos != nil {
		return pos.Vector, nil
	}
	panic("sim: reference entity " + id.String() + " has no position")
}

// position returns an entity's current absolute position.
func (w *shared) position(id ecs.EntityId) cp.Vector {
	if path := ecs.ReadComponent[movement.Path](w.storage, id); path != nil {
		return path.Position(w)
	}
	if pos := ecs.ReadComponent[component.Position](w.storage, id); pos != nil {
		return pos.Vector
	}
	panic("sim: entity " + id.String() + " has no position")
}

// positionAgo returns where an entity was secondsAgo seconds before now.
// Entities without a path are taken to have been where they are.
func (w *shared) positionAgo(id ecs.EntityId, secondsAgo float64) cp.Vector {
	if path := ecs.ReadComponent[movement.Path](w.storage, id); path != nil {
		return path.PreviousPosition(secondsAgo, w)
	}
	return w.position(id)
}

// env is the movement environment for something on side: enemy-side paths
// aim at the player, player-side paths at the nearest enemy.
type env struct {
	*shared
	side component.Side
}

func (w *shared) env(side component.Side) env {
	return env{shared: w, side: side}
}

func (e env) Target(from cp.Vector) (cp.Vector, bool) {
	best, found := cp.Vector{}, false
	bestDist := math.Inf(1)
	consider := func(pos cp.Vector) {
		if d := pos.DistanceSq(from); d < bestDist {
			best, bestDist, found = pos, d, true
		}
	}

	if e.side == component.SideEnemy {
		for p := range e.players.Values() {
			if !p.Health.Dead() && !p.Despawn.Marked {
				consider(p.Position.Vector)
			}
		}
		return best, found
	}
	for en := range e.enemies.Values() {
		if !en.Despawn.Marked {
			consider(en.Position.Vector)
		}
	}
	return best, found
}

// bounds returns the area outside of which bounded entities despawn.
func (w *shared) bounds() cp.BB {
	a := w.cfg.PlayArea
	return cp.NewBBForExtents(cp.Vector{X: a.Width / 2, Y: a.Height / 2}, a.Width/2+a.Margin, a.Height/2+a.Margin)
}

func (w *shared) changeMusic(track string) {
	state := w.level.Get()
	if track == "" || track == state.Music {
		return
	}
	state.Music = track
	w.hooks.Audio.PlayMusic(track)
	w.hooks.Listener.MusicChanged(track)
	w.log.Debug("music changed", zap.String("track", track))
}

func (w *shared) addPoints(points float64) {
	if points == 0 {
		return
	}
	state := w.level.Get()
	state.Points += points
	w.hooks.Listener.PointsAdded(points, state.Points)
}

// budget bounds the state machine loops of one entity in one tick.
type budget struct {
	left     int
	exceeded bool
}

func (b *budget) spend() bool {
	if b.left <= 0 {
		b.exceeded = true
		return false
	}
	b.left--
	return true
}
