// Package content defines the authored, read-only data the simulation runs:
// enemies with their phases, attack patterns, attacks, the movable point
// trees attacks spawn, player power tiers and level schedules.
//
// Every scalar is an expr.Number. A Pack must be compiled once before it is
// handed to the simulation, which only reads compiled values.
package content

import (
	"math"

	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
)

// ShadowTrail configures afterimages for a moving entity.
type ShadowTrail struct {
	Count    int
	Interval expr.Number
}

// EMP describes one movable point and the children it spawns.
type EMP struct {
	ID      string
	Spawn   movement.SpawnType
	Actions []movement.Action

	// Hitbox radius; zero means the point never collides.
	Hitbox      expr.Number
	Damage      expr.Number
	Policy      component.CollisionPolicy
	PierceReset expr.Number
	// Lifetime in seconds; zero lives until it leaves the play area.
	Lifetime expr.Number
	// DespawnWithParent removes the point together with its parent.
	DespawnWithParent bool

	Sprite string
	Trail  ShadowTrail

	// Delay after the parent spawned before this point is created.
	Delay    expr.Number
	Children []EMP
}

// Count returns the number of points in the tree rooted at e.
func (e *EMP) Count() int {
	n := 1
	for i := range e.Children {
		n += e.Children[i].Count()
	}
	return n
}

// Attack is a single trigger within a pattern that spawns one EMP tree.
type Attack struct {
	ID string
	// Time is the offset of the attack within its pattern.
	Time  expr.Number
	Sound string
	Root  EMP
}

// Pattern is an ordered list of attacks plus the movement of the entity
// executing it.
type Pattern struct {
	ID      string
	Attacks []string
	Actions []movement.Action
	Trail   ShadowTrail
}

// PatternEntry schedules a pattern within a phase.
type PatternEntry struct {
	Pattern string
	Time    expr.Number
}

// ConditionKind selects what starts a phase.
type ConditionKind uint8

const (
	// TimeCondition holds once the current phase has run for Value seconds.
	TimeCondition ConditionKind = iota
	// HealthRatioCondition holds once health/max health is at most Value.
	HealthRatioCondition
	// EnemyCountCondition holds once at most Value enemies are alive.
	EnemyCountCondition
)

var conditionNames = [...]string{"time", "health_ratio", "enemy_count"}

func (k ConditionKind) String() string {
	if int(k) < len(conditionNames) {
		return conditionNames[k]
	}
	return "unknown"
}

type Condition struct {
	Kind  ConditionKind
	Value expr.Number
}

// EffectKind selects a phase or death effect.
type EffectKind uint8

const (
	PlayAnimation EffectKind = iota
	// DespawnEnemyBullets clears every enemy bullet in play.
	DespawnEnemyBullets
	// ExecuteAttacks fires Attacks anchored at the enemy's position.
	ExecuteAttacks
)

var effectNames = [...]string{"play_animation", "despawn_enemy_bullets", "execute_attacks"}

func (k EffectKind) String() string {
	if int(k) < len(effectNames) {
		return effectNames[k]
	}
	return "unknown"
}

type Effect struct {
	Kind      EffectKind
	Animation string
	Attacks   []string
}

type Phase struct {
	ID        string
	Start     Condition
	Patterns  []PatternEntry
	LoopDelay expr.Number
	Begin     []Effect
	End       []Effect

	Animatables []string
	// Music switches the level track when the phase begins.
	Music string
}

type Drop struct {
	Kind  component.ItemKind
	Count expr.Number
	Value expr.Number
}

type Enemy struct {
	ID      string
	Symbols expr.Scope

	Health expr.Number
	Hitbox expr.Number
	Points expr.Number
	Sprite string
	Trail  ShadowTrail

	Phases []Phase
	Death  []Effect
	Drops  []Drop

	HurtSound  string
	DeathSound string
}

type PowerTier struct {
	// Threshold is the power needed to leave this tier.
	Threshold      expr.Number
	Pattern        string
	FocusedPattern string
	BombPattern    string
	LoopDelay      expr.Number
	BombCooldown   expr.Number
	// BombInvincibility is how long a bomb protects the player.
	BombInvincibility expr.Number
	Animatables       []string
}

type Player struct {
	ID      string
	Symbols expr.Scope

	Health expr.Number
	Hitbox expr.Number
	Bombs  expr.Number
	// Invulnerability is the window after a hit with the hitbox disabled.
	Invulnerability     expr.Number
	PointsPerExtraPower expr.Number
	Tiers               []PowerTier

	Sprite     string
	HurtSound  string
	DeathSound string
	BombSound  string
}

// LevelEvent spawns an enemy at a point in the level.
type LevelEvent struct {
	Time  expr.Number
	Enemy string
	Spawn movement.SpawnType
}

type Level struct {
	ID     string
	Music  string
	Events []LevelEvent
}

// Item describes a collectible dropped by enemies.
type Item struct {
	Kind             component.ItemKind
	Hitbox           expr.Number
	ActivationRadius expr.Number
	// FallSpeed is how fast items drift down before being attracted.
	FallSpeed      expr.Number
	AttractedSpeed expr.Number
	Lifetime       expr.Number
}

// Duration is the time the pattern takes before it may loop: the sum of its
// movement actions, or the time of its last attack if that is later.
// Unbounded movement does not count.
func (p *Pattern) Duration(pack *Pack) float64 {
	total := 0.0
	for _, a := range p.Actions {
		if l := a.Lifespan(); !math.IsInf(l, 1) {
			total += l
		}
	}
	for _, id := range p.Attacks {
		if a := pack.Attack(id); a != nil {
			total = max(total, a.Time.Value())
		}
	}
	return total
}
