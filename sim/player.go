package sim

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/content"
)

const (
	normalPattern = iota
	focusedPattern
	bombPattern
)

// Player is the player tag: power tier, bombs, timers and the looping attack
// pattern of the active variant.
type Player struct {
	Def *content.Player

	Tier   int
	Power  float64
	Bombs  int
	Points float64

	Focused bool
	Firing  bool
	Bombing bool

	Attack       int
	SincePattern float64

	// Cooldown is the time until the next bomb may be used.
	Cooldown float64
	// Invulnerable is the remaining hit window with the hitbox disabled.
	Invulnerable float64
	// Invincible is the remaining bomb protection.
	Invincible float64

	// durations[tier] holds the loop period of the normal, focused and bomb
	// pattern of each tier.
	durations [][3]float64
	running   bool
	velocity  cp.Vector
}

func NewPlayer(def *content.Player, pack *content.Pack) Player {
	p := Player{
		Def:    def,
		Bombs:  def.Bombs.Int(),
		Attack: -1,
	}
	p.durations = make([][3]float64, len(def.Tiers))
	for i := range def.Tiers {
		tier := &def.Tiers[i]
		for v, id := range [3]string{tier.Pattern, tier.FocusedPattern, tier.BombPattern} {
			pat := pack.Pattern(id)
			if pat == nil {
				continue
			}
			d := pat.Duration(pack)
			if v != bombPattern {
				d += tier.LoopDelay.Value()
			}
			p.durations[i][v] = d
		}
	}
	return p
}

func (p *Player) tier() *content.PowerTier {
	return &p.Def.Tiers[p.Tier]
}

func (p *Player) variant() int {
	switch {
	case p.Bombing:
		return bombPattern
	case p.Focused && p.tier().FocusedPattern != "":
		return focusedPattern
	default:
		return normalPattern
	}
}

// ActivePattern returns the pattern the player fires right now, or nil.
func (p *Player) ActivePattern(pack *content.Pack) *content.Pattern {
	tier := p.tier()
	switch p.variant() {
	case bombPattern:
		return pack.Pattern(tier.BombPattern)
	case focusedPattern:
		return pack.Pattern(tier.FocusedPattern)
	default:
		return pack.Pattern(tier.Pattern)
	}
}

// Animatables returns what the current tier animates.
func (p *Player) Animatables() []string {
	return p.tier().Animatables
}

func (p *Player) resetPattern() {
	p.Attack = -1
	p.SincePattern = 0
}

// restart makes the active pattern begin again on the next Update, with
// attacks at offset zero firing without lag.
func (p *Player) restart() {
	p.resetPattern()
	p.running = false
}

// SetFocused switches between the normal and focused pattern. Attacks of the
// abandoned pattern that were not fired yet are dropped. While bombing only
// the flag changes.
func (p *Player) SetFocused(focused bool) {
	if p.Focused == focused {
		return
	}
	p.Focused = focused
	if !p.Bombing {
		p.restart()
	}
}

// ActivateBomb starts the tier's bomb pattern. It reports false and leaves
// the player untouched when no bomb is available.
func (p *Player) ActivateBomb() bool {
	tier := p.tier()
	if p.Bombs <= 0 || p.Cooldown > 0 || p.Bombing || tier.BombPattern == "" {
		return false
	}
	p.Bombs--
	p.Bombing = true
	p.restart()
	p.Cooldown = tier.BombCooldown.Value()
	p.Invincible = max(p.Invincible, tier.BombInvincibility.Value())
	return true
}

// AddPower adds collected power, advancing tiers while the remainder covers
// their threshold. Power beyond the last tier's threshold is converted to
// points, which are returned.
func (p *Player) AddPower(amount float64) (tierChanged bool, points float64) {
	p.Power += amount
	tiers := p.Def.Tiers
	for p.Tier+1 < len(tiers) {
		threshold := tiers[p.Tier].Threshold.Value()
		if threshold <= 0 || p.Power < threshold {
			break
		}
		p.Power -= threshold
		p.Tier++
		tierChanged = true
	}

	if p.Tier == len(tiers)-1 {
		if limit := tiers[p.Tier].Threshold.Value(); limit >= 0 && p.Power > limit {
			points = (p.Power - limit) * p.Def.PointsPerExtraPower.Value()
			p.Power = limit
			p.Points += points
		}
	}

	if tierChanged {
		if !p.Bombing {
			p.restart()
		}
		p.Cooldown = min(p.Cooldown, p.tier().BombCooldown.Value())
	}
	return tierChanged, points
}

// Update advances the timers and fires every attack of the active pattern
// due this tick. It reports false when limit transitions were not enough.
func (p *Player) Update(dt float64, pack *content.Pack, limit int, fire func(a *content.Attack, lag float64)) bool {
	p.Cooldown = max(p.Cooldown-dt, 0)
	p.Invulnerable = max(p.Invulnerable-dt, 0)
	p.Invincible = max(p.Invincible-dt, 0)

	if !p.Bombing && !p.Firing {
		p.restart()
		return true
	}
	if p.running {
		p.SincePattern += dt
	}
	p.running = true

	b := budget{left: limit}
	for {
		pat := p.ActivePattern(pack)
		if pat == nil {
			if !p.Bombing {
				return true
			}
			p.Bombing = false
			p.resetPattern()
			continue
		}

		for p.Attack+1 < len(pat.Attacks) {
			a := pack.Attack(pat.Attacks[p.Attack+1])
			if a == nil {
				p.Attack++
				continue
			}
			t := a.Time.Value()
			if t > p.SincePattern {
				return true
			}
			if !b.spend() {
				return false
			}
			p.Attack++
			fire(a, p.SincePattern-t)
		}

		period := p.durations[p.Tier][p.variant()]
		if p.SincePattern < period {
			return true
		}
		if !b.spend() {
			return false
		}

		leftover := p.SincePattern - period
		wasBombing := p.Bombing
		p.Bombing = false
		p.resetPattern()
		if period <= 0 {
			// one pass per tick for patterns that take no time
			return true
		}
		p.SincePattern = leftover
		if wasBombing && !p.Firing {
			p.restart()
			return true
		}
	}
}
