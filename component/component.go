// Package component holds the plain-data components shared by the simulation
// systems. Behaviour lives in the systems; these types only carry state.
package component

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/geom"
)

// Position is an entity's absolute position this tick.
type Position struct {
	cp.Vector
}

// Hitbox is a collision circle centered on Position.
type Hitbox struct {
	Radius   float64
	Disabled bool
}

// Circle returns the hitbox placed at pos.
func (h Hitbox) Circle(pos cp.Vector) geom.Circle {
	return geom.Circle{Center: pos, Radius: h.Radius}
}

type Health struct {
	Current float64
	Max     float64
}

// Ratio returns Current/Max, or 0 for a zero Max.
func (h Health) Ratio() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

func (h Health) Dead() bool {
	return h.Current <= 0
}

// Side says who a bullet hurts.
type Side uint8

const (
	SideEnemy Side = iota
	SidePlayer
)

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "enemy"
}

// CollisionPolicy is what happens to a bullet when it hits.
type CollisionPolicy uint8

const (
	// DestroyWithChildren despawns the bullet and everything attached to it.
	DestroyWithChildren CollisionPolicy = iota
	// DestroySelfOnly hides the bullet and disables its hitbox but keeps it
	// alive as the reference frame of its children.
	DestroySelfOnly
	// Pierce keeps the bullet active; it can not hit the same target again
	// until its pierce reset time has passed.
	Pierce
)

var policyNames = [...]string{"destroy_with_children", "destroy_self_only", "pierce"}

func (p CollisionPolicy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return "unknown"
}

// Attribution identifies where a bullet came from.
type Attribution struct {
	Attack  string
	Pattern string
	Enemy   string
	Phase   string
}

// PierceImmunity records that a bullet may not hit Target before Until.
// Target is a weak reference, so an entity that later reuses the slot of a
// despawned target is not covered.
type PierceImmunity struct {
	Target *ecs.EntityRef
	Until  float64
}

type Bullet struct {
	Side        Side
	Damage      float64
	Policy      CollisionPolicy
	PierceReset float64
	Residual    bool
	Attribution Attribution
	Immunities  []PierceImmunity
}

// ImmuneTo reports whether the bullet may not hit target at time now.
func (b *Bullet) ImmuneTo(target ecs.EntityId, now float64) bool {
	for _, im := range b.Immunities {
		if im.Target.Valid() && im.Target.Id == target && now < im.Until {
			return true
		}
	}
	return false
}

// Immunize records a pierce hit on target at time now, replacing any older
// record for the same target. Expired records and records of despawned
// targets are dropped.
func (b *Bullet) Immunize(target *ecs.EntityRef, now float64) {
	kept := b.Immunities[:0]
	for _, im := range b.Immunities {
		if im.Target != target && im.Target.Valid() && now < im.Until {
			kept = append(kept, im)
		}
	}
	b.Immunities = append(kept, PierceImmunity{Target: target, Until: now + b.PierceReset})
}

// Despawn tracks when an entity should be removed.
type Despawn struct {
	// Lifetime in seconds; zero lives until marked or out of bounds.
	Lifetime float64
	Age      float64
	Marked   bool
	// Cascade also removes entities whose path is attached to this one.
	Cascade bool
	// Bounded entities are removed once fully outside the play area.
	Bounded bool
	// WithParent entities are removed together with the entity their path
	// is attached to instead of being re-anchored.
	WithParent bool
}

// Mark schedules removal. Cascade is sticky.
func (d *Despawn) Mark(cascade bool) {
	d.Marked = true
	d.Cascade = d.Cascade || cascade
}

// ShadowTrail holds afterimage positions sampled from the entity's path.
type ShadowTrail struct {
	Count    int
	Interval float64
	Points   []cp.Vector
}

// ItemKind is the effect of a collectible.
type ItemKind uint8

const (
	ItemPower ItemKind = iota
	ItemPoints
	ItemBomb
	ItemHealth
)

var itemNames = [...]string{"power", "points", "bomb", "health"}

func (k ItemKind) String() string {
	if int(k) < len(itemNames) {
		return itemNames[k]
	}
	return "unknown"
}

type Collectible struct {
	Kind  ItemKind
	Value float64
	// ActivationRadius is the distance at which the item starts homing on
	// the player.
	ActivationRadius float64
	Attracted        bool
}

// Anchor tags a stationary reference entity that exists only so attached
// paths keep a frame after their parent is gone.
type Anchor struct{}

type Sprite struct {
	Name        string
	Animatables []string
	Hidden      bool
}
