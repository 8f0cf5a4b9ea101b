package sim

import (
	"github.com/plus3/danmaku/content"
)

// Enemy is the enemy component: a phase, attack pattern and attack state
// machine driven entirely by its own timers and conditions.
//
// Pattern counts pattern starts within the current phase; the running entry
// is Pattern modulo the phase's entry count. Indices are -1 before the first
// phase, pattern and attack of their parent level.
type Enemy struct {
	Def *content.Enemy

	Phase   int
	Pattern int
	Attack  int

	SinceSpawn   float64
	SincePhase   float64
	SincePattern float64

	// Killed is set when the enemy died to damage rather than leaving.
	Killed bool

	scan    bool
	period  float64
	current *content.Pattern
}

func NewEnemy(def *content.Enemy) Enemy {
	return Enemy{Def: def, Phase: -1, Pattern: -1, Attack: -1}
}

// enemyControl is what the state machine needs from the world.
type enemyControl interface {
	pack() *content.Pack
	healthRatio() float64
	enemiesAlive() int
	beginPhase(ph *content.Phase)
	endPhase(ph *content.Phase)
	startPattern(p *content.Pattern, lag float64)
	fire(a *content.Attack, lag float64)
}

// CurrentPhase returns the running phase, or nil before the first one.
func (e *Enemy) CurrentPhase() *content.Phase {
	if e.Phase < 0 || e.Phase >= len(e.Def.Phases) {
		return nil
	}
	return &e.Def.Phases[e.Phase]
}

// CurrentPattern returns the running attack pattern, or nil.
func (e *Enemy) CurrentPattern() *content.Pattern {
	return e.current
}

// Update advances the enemy by dt. It reports false when limit transitions
// were not enough to catch up, in which case scanning resumes next tick.
func (e *Enemy) Update(dt float64, limit int, c enemyControl) bool {
	e.SinceSpawn += dt
	e.SincePhase += dt
	e.SincePattern += dt

	b := budget{left: limit}
	if e.advancePhases(c, &b) && e.advancePatterns(c, &b) && e.current != nil {
		e.fireAttacks(c, e.SincePattern, &b)
	}
	return !b.exceeded
}

func (e *Enemy) holds(cond content.Condition, c enemyControl) bool {
	v := cond.Value.Value()
	switch cond.Kind {
	case content.TimeCondition:
		return e.SincePhase >= v
	case content.HealthRatioCondition:
		return c.healthRatio() <= v
	case content.EnemyCountCondition:
		return float64(c.enemiesAlive()) <= v
	default:
		return false
	}
}

func (e *Enemy) advancePhases(c enemyControl, b *budget) bool {
	for e.Phase+1 < len(e.Def.Phases) {
		next := &e.Def.Phases[e.Phase+1]
		if !e.holds(next.Start, c) {
			break
		}
		if !b.spend() {
			return false
		}

		if prev := e.CurrentPhase(); prev != nil {
			c.endPhase(prev)
		}
		e.Phase++
		e.SincePhase, e.SincePattern = 0, 0
		e.Pattern, e.Attack = -1, -1
		e.current = nil
		e.period = loopPeriod(next, c.pack())
		e.scan = len(next.Patterns) > 0
		c.beginPhase(next)
	}
	return true
}

// loopPeriod is the time after which a phase's pattern list starts over.
func loopPeriod(ph *content.Phase, pack *content.Pack) float64 {
	n := len(ph.Patterns)
	if n == 0 {
		return 0
	}
	last := ph.Patterns[n-1]
	d := 0.0
	if p := pack.Pattern(last.Pattern); p != nil {
		d = p.Duration(pack)
	}
	return last.Time.Value() + d + ph.LoopDelay.Value()
}

// patternStart is the phase time at which pattern start i happens.
func (e *Enemy) patternStart(ph *content.Phase, i int) float64 {
	n := len(ph.Patterns)
	return ph.Patterns[i%n].Time.Value() + float64(i/n)*e.period
}

func (e *Enemy) advancePatterns(c enemyControl, b *budget) bool {
	ph := e.CurrentPhase()
	if ph == nil {
		return true
	}
	n := len(ph.Patterns)
	pack := c.pack()

	for e.scan {
		next := e.Pattern + 1
		if next >= n && e.period <= 0 {
			e.scan = false
			break
		}
		start := e.patternStart(ph, next)
		if start > e.SincePhase {
			break
		}
		if !b.spend() {
			return false
		}

		// attacks the outgoing pattern had due before it was replaced
		if e.current != nil {
			began := e.SincePhase - e.SincePattern
			if !e.fireAttacks(c, start-began, b) {
				return false
			}
		}

		e.Pattern = next
		e.Attack = -1
		e.SincePattern = e.SincePhase - start
		e.current = pack.Pattern(ph.Patterns[next%n].Pattern)
		if e.current == nil {
			continue
		}
		c.startPattern(e.current, e.SincePattern)
		if !e.fireAttacks(c, e.SincePattern, b) {
			return false
		}
	}
	return true
}

// fireAttacks fires every attack of the current pattern due at or before
// pattern time limit.
func (e *Enemy) fireAttacks(c enemyControl, limit float64, b *budget) bool {
	pack := c.pack()
	attacks := e.current.Attacks
	for e.Attack+1 < len(attacks) {
		a := pack.Attack(attacks[e.Attack+1])
		if a == nil {
			e.Attack++
			continue
		}
		t := a.Time.Value()
		if t > limit {
			break
		}
		if !b.spend() {
			return false
		}
		e.Attack++
		c.fire(a, e.SincePattern-t)
	}
	return true
}
