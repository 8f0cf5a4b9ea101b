package content

import (
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
)

func linear(speed, angle, duration string) movement.Action {
	return movement.Action{Kind: movement.MoveLinear, Speed: expr.F(speed), Angle: expr.F(angle), Duration: expr.F(duration)}
}

func aimed(speed string) movement.Action {
	return movement.Action{Kind: movement.MoveLinear, Speed: expr.F(speed), Aimed: true, Duration: expr.Lit(-1)}
}

func stay(duration string) movement.Action {
	return movement.Action{Kind: movement.Stay, Duration: expr.F(duration)}
}

func ring(n int, radius float64, bullet EMP) []EMP {
	out := make([]EMP, n)
	for i := range out {
		b := bullet
		b.Spawn = movement.SpawnType{
			Kind:   movement.EntityAttached,
			Offset: movement.Vec{X: expr.F(polarX(i, n, radius)), Y: expr.F(polarY(i, n, radius))},
		}
		out[i] = b
	}
	return out
}

func polarX(i, n int, r float64) string {
	return expr.Lit(r).Src + " * math.cos(2 * math.pi * " + expr.Lit(float64(i)).Src + " / " + expr.Lit(float64(n)).Src + ")"
}

func polarY(i, n int, r float64) string {
	return expr.Lit(r).Src + " * math.sin(2 * math.pi * " + expr.Lit(float64(i)).Src + " / " + expr.Lit(float64(n)).Src + ")"
}

// Demo returns a small uncompiled pack exercising every feature: aimed,
// orbiting, piercing and homing bullets, a two-phase enemy with death
// attacks and drops, a three-tier player with a bomb, and a level.
func Demo() *Pack {
	orbiter := EMP{
		Hitbox:            expr.F("bullet_radius"),
		Damage:            expr.Lit(1),
		Policy:            component.DestroyWithChildren,
		DespawnWithParent: true,
		Actions: []movement.Action{
			{Kind: movement.MovePolar, AngularVelocity: expr.F("spin"), RadialSpeed: expr.Lit(40), Duration: expr.Lit(-1)},
		},
		Sprite: "orb",
	}
	burst := EMP{
		Hitbox: expr.F("bullet_radius"),
		Damage: expr.Lit(1),
		Policy: component.DestroySelfOnly,
		Actions: []movement.Action{
			{Kind: movement.MovePolar, RadialSpeed: expr.Lit(90), Duration: expr.Lit(-1)},
		},
		Sprite: "shard",
	}

	return &Pack{
		Symbols: expr.Scope{"bullet_radius": 4, "spin": 1.5},
		Attacks: []Attack{
			{
				ID:    "aimed_shot",
				Time:  expr.Lit(0),
				Sound: "shot",
				Root: EMP{
					Spawn:   movement.SpawnType{Kind: movement.EntityRelative},
					Hitbox:  expr.F("bullet_radius"),
					Damage:  expr.Lit(1),
					Actions: []movement.Action{aimed("150")},
					Sprite:  "pellet",
					Trail:   ShadowTrail{Count: 3, Interval: expr.Lit(0.05)},
				},
			},
			{
				ID:   "orbit_ring",
				Time: expr.Lit(0.5),
				Root: EMP{
					ID:       "hub",
					Spawn:    movement.SpawnType{Kind: movement.EntityRelative},
					Actions:  []movement.Action{linear("60", "math.pi / 2", "-1")},
					Lifetime: expr.Lit(4),
					Children: ring(6, 10, orbiter),
				},
			},
			{
				ID:   "laser",
				Time: expr.Lit(1),
				Root: EMP{
					Spawn:       movement.SpawnType{Kind: movement.EntityRelative, Offset: movement.V(0, 12)},
					Hitbox:      expr.Lit(10),
					Damage:      expr.Lit(1),
					Policy:      component.Pierce,
					PierceReset: expr.Lit(2),
					Actions:     []movement.Action{linear("80", "math.pi / 2", "-1")},
					Sprite:      "beam",
				},
			},
			{
				ID:   "death_burst",
				Time: expr.Lit(0),
				Root: EMP{
					ID:       "burst_hub",
					Spawn:    movement.SpawnType{Kind: movement.EntityAttached},
					Actions:  []movement.Action{stay("-1")},
					Lifetime: expr.Lit(6),
					Children: ring(8, 4, burst),
				},
			},
			{
				ID:   "seeker",
				Time: expr.Lit(0.25),
				Root: EMP{
					Spawn:  movement.SpawnType{Kind: movement.EntityRelative},
					Hitbox: expr.Lit(3),
					Damage: expr.Lit(1),
					Actions: []movement.Action{
						{Kind: movement.Homing, Speed: expr.Lit(110), Angle: expr.F("math.pi / 2"), TurnRate: expr.Lit(2), Duration: expr.Lit(2)},
						linear("110", "math.pi / 2", "-1"),
					},
					Delay: expr.Lit(0),
				},
			},
			{
				ID:   "player_shot",
				Time: expr.Lit(0),
				Root: EMP{
					Spawn:   movement.SpawnType{Kind: movement.EntityRelative, Offset: movement.V(0, -10)},
					Hitbox:  expr.Lit(3),
					Damage:  expr.Lit(1),
					Actions: []movement.Action{linear("480", "-math.pi / 2", "-1")},
				},
			},
			{
				ID:   "player_spread",
				Time: expr.Lit(0),
				Root: EMP{
					ID:      "spread_hub",
					Spawn:   movement.SpawnType{Kind: movement.EntityRelative},
					Actions: []movement.Action{stay("0")},
					Children: []EMP{
						{Spawn: movement.SpawnType{Kind: movement.EntityRelative}, Hitbox: expr.Lit(3), Damage: expr.Lit(1), Actions: []movement.Action{linear("480", "-math.pi / 2 - 0.2", "-1")}},
						{Spawn: movement.SpawnType{Kind: movement.EntityRelative}, Hitbox: expr.Lit(3), Damage: expr.Lit(1), Actions: []movement.Action{linear("480", "-math.pi / 2", "-1")}},
						{Spawn: movement.SpawnType{Kind: movement.EntityRelative}, Hitbox: expr.Lit(3), Damage: expr.Lit(1), Actions: []movement.Action{linear("480", "-math.pi / 2 + 0.2", "-1")}},
					},
					Lifetime: expr.Lit(0.1),
				},
			},
			{
				ID:    "bomb_wave",
				Time:  expr.Lit(0),
				Sound: "bomb",
				Root: EMP{
					Spawn:       movement.SpawnType{Kind: movement.EntityAttached},
					Hitbox:      expr.Lit(60),
					Damage:      expr.Lit(5),
					Policy:      component.Pierce,
					PierceReset: expr.Lit(0.5),
					Actions:     []movement.Action{stay("2")},
					Lifetime:    expr.Lit(2),
				},
			},
		},
		Patterns: []Pattern{
			{ID: "aim", Attacks: []string{"aimed_shot"}, Actions: []movement.Action{stay("1")}},
			{ID: "spiral", Attacks: []string{"orbit_ring", "seeker"}, Actions: []movement.Action{
				linear("30", "0", "1"),
				linear("30", "math.pi", "1"),
			}, Trail: ShadowTrail{Count: 4, Interval: expr.Lit(0.1)}},
			{ID: "sweep", Attacks: []string{"laser"}, Actions: []movement.Action{stay("2")}},
			{ID: "player_normal", Attacks: []string{"player_shot"}, Actions: []movement.Action{stay("0.1")}},
			{ID: "player_focused", Attacks: []string{"player_shot"}, Actions: []movement.Action{stay("0.05")}},
			{ID: "player_wide", Attacks: []string{"player_spread"}, Actions: []movement.Action{stay("0.1")}},
			{ID: "player_bomb", Attacks: []string{"bomb_wave"}, Actions: []movement.Action{stay("2")}},
		},
		Enemies: []Enemy{
			{
				ID:      "drone",
				Symbols: expr.Scope{"hp": 3},
				Health:  expr.F("hp"),
				Hitbox:  expr.Lit(8),
				Points:  expr.Lit(100),
				Sprite:  "drone",
				Phases: []Phase{
					{Start: Condition{Kind: TimeCondition, Value: expr.Lit(0)}, Patterns: []PatternEntry{{Pattern: "aim", Time: expr.Lit(0.5)}}, LoopDelay: expr.Lit(1)},
				},
				Drops:      []Drop{{Kind: component.ItemPoints, Count: expr.Lit(1), Value: expr.Lit(50)}},
				DeathSound: "pop",
			},
			{
				ID:      "fairy",
				Symbols: expr.Scope{"hp": 40},
				Health:  expr.F("hp"),
				Hitbox:  expr.Lit(14),
				Points:  expr.Lit(1000),
				Sprite:  "fairy",
				Trail:   ShadowTrail{Count: 2, Interval: expr.Lit(0.1)},
				Phases: []Phase{
					{
						ID:        "opening",
						Start:     Condition{Kind: TimeCondition, Value: expr.Lit(0)},
						Patterns:  []PatternEntry{{Pattern: "aim", Time: expr.Lit(0)}, {Pattern: "sweep", Time: expr.Lit(1)}},
						LoopDelay: expr.Lit(0.5),
					},
					{
						ID:          "enraged",
						Start:       Condition{Kind: HealthRatioCondition, Value: expr.Lit(0.5)},
						Patterns:    []PatternEntry{{Pattern: "spiral", Time: expr.Lit(0)}},
						LoopDelay:   expr.Lit(1),
						Begin:       []Effect{{Kind: PlayAnimation, Animation: "angry"}, {Kind: DespawnEnemyBullets}},
						Animatables: []string{"fairy_angry"},
						Music:       "boss",
					},
					{
						ID:       "last_stand",
						Start:    Condition{Kind: TimeCondition, Value: expr.Lit(20)},
						Patterns: []PatternEntry{{Pattern: "aim", Time: expr.Lit(0)}},
					},
				},
				Death: []Effect{
					{Kind: PlayAnimation, Animation: "explode"},
					{Kind: DespawnEnemyBullets},
					{Kind: ExecuteAttacks, Attacks: []string{"death_burst"}},
				},
				Drops: []Drop{
					{Kind: component.ItemPower, Count: expr.Lit(3), Value: expr.Lit(2)},
					{Kind: component.ItemBomb, Count: expr.Lit(1), Value: expr.Lit(1)},
				},
				HurtSound:  "hit",
				DeathSound: "boom",
			},
		},
		Players: []Player{
			{
				ID:                  "pilot",
				Health:              expr.Lit(3),
				Hitbox:              expr.Lit(2),
				Bombs:               expr.Lit(2),
				Invulnerability:     expr.Lit(2),
				PointsPerExtraPower: expr.Lit(10),
				Tiers: []PowerTier{
					{Threshold: expr.Lit(4), Pattern: "player_normal", FocusedPattern: "player_focused", BombPattern: "player_bomb", BombCooldown: expr.Lit(3), BombInvincibility: expr.Lit(2.5)},
					{Threshold: expr.Lit(8), Pattern: "player_wide", FocusedPattern: "player_focused", BombPattern: "player_bomb", BombCooldown: expr.Lit(3), BombInvincibility: expr.Lit(2.5), Animatables: []string{"pilot_glow"}},
					{Threshold: expr.Lit(8), Pattern: "player_wide", FocusedPattern: "player_normal", BombPattern: "player_bomb", BombCooldown: expr.Lit(2), BombInvincibility: expr.Lit(2.5), Animatables: []string{"pilot_glow", "pilot_wings"}},
				},
				Sprite:     "pilot",
				HurtSound:  "hurt",
				DeathSound: "dead",
				BombSound:  "bomb",
			},
		},
		Levels: []Level{
			{
				ID:    "stage1",
				Music: "stage",
				Events: []LevelEvent{
					{Time: expr.Lit(0.5), Enemy: "drone", Spawn: movement.SpawnType{Offset: movement.V(120, 80)}},
					{Time: expr.Lit(1), Enemy: "drone", Spawn: movement.SpawnType{Offset: movement.V(360, 80)}},
					{Time: expr.Lit(1.5), Enemy: "drone", Spawn: movement.SpawnType{Offset: movement.V(240, 60)}},
					{Time: expr.Lit(3), Enemy: "fairy", Spawn: movement.SpawnType{Offset: movement.V(240, 120)}},
				},
			},
		},
		Items: []Item{
			{Kind: component.ItemPower, Hitbox: expr.Lit(6), ActivationRadius: expr.Lit(80), FallSpeed: expr.Lit(60), AttractedSpeed: expr.Lit(300), Lifetime: expr.Lit(10)},
			{Kind: component.ItemPoints, Hitbox: expr.Lit(6), ActivationRadius: expr.Lit(80), FallSpeed: expr.Lit(60), AttractedSpeed: expr.Lit(300), Lifetime: expr.Lit(10)},
			{Kind: component.ItemBomb, Hitbox: expr.Lit(8), ActivationRadius: expr.Lit(60), FallSpeed: expr.Lit(40), AttractedSpeed: expr.Lit(300), Lifetime: expr.Lit(10)},
			{Kind: component.ItemHealth, Hitbox: expr.Lit(8), ActivationRadius: expr.Lit(60), FallSpeed: expr.Lit(40), AttractedSpeed: expr.Lit(300), Lifetime: expr.Lit(10)},
		},
	}
}
