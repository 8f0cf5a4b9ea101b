package sim

import (
	"testing"

	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fired struct {
	ID  string
	Lag float64
}

type fakeControl struct {
	p     *content.Pack
	ratio float64
	alive int

	begun    []string
	ended    []string
	patterns []string
	fired    []fired
}

func (c *fakeControl) pack() *content.Pack  { return c.p }
func (c *fakeControl) healthRatio() float64 { return c.ratio }
func (c *fakeControl) enemiesAlive() int    { return c.alive }

func (c *fakeControl) beginPhase(ph *content.Phase) { c.begun = append(c.begun, ph.ID) }
func (c *fakeControl) endPhase(ph *content.Phase)   { c.ended = append(c.ended, ph.ID) }

func (c *fakeControl) startPattern(p *content.Pattern, lag float64) {
	c.patterns = append(c.patterns, p.ID)
}

func (c *fakeControl) fire(a *content.Attack, lag float64) {
	c.fired = append(c.fired, fired{ID: a.ID, Lag: lag})
}

func (c *fakeControl) firedIDs() []string {
	ids := make([]string, len(c.fired))
	for i, f := range c.fired {
		ids[i] = f.ID
	}
	return ids
}

func timeAt(v float64) content.Condition {
	return content.Condition{Kind: content.TimeCondition, Value: expr.Lit(v)}
}

func stayFor(d float64) movement.Action {
	return movement.Action{Kind: movement.Stay, Duration: expr.Lit(d)}
}

// statePack has one pattern that takes a second and fires at 0 and 0.5.
func statePack(t *testing.T, phases ...content.Phase) *content.Pack {
	t.Helper()
	pack := &content.Pack{
		Attacks: []content.Attack{
			{ID: "a0", Time: expr.Lit(0)},
			{ID: "a1", Time: expr.Lit(0.5)},
		},
		Patterns: []content.Pattern{
			{ID: "p", Attacks: []string{"a1", "a0"}, Actions: []movement.Action{stayFor(1)}},
			{ID: "instant", Attacks: []string{"a0"}},
		},
		Enemies: []content.Enemy{
			{ID: "boss", Health: expr.Lit(10), Hitbox: expr.Lit(8), Phases: phases},
		},
	}
	require.NoError(t, pack.Compile())
	return pack
}

func TestEnemyTwoPhaseScenario(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "first", Start: timeAt(0)},
		content.Phase{ID: "second", Start: timeAt(5)},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	var phases []int
	for range 6 {
		require.True(t, e.Update(1, 1024, c))
		phases = append(phases, e.Phase)
	}

	assert.Equal(t, []int{0, 0, 0, 0, 0, 1}, phases)
	assert.Equal(t, []string{"first", "second"}, c.begun)
	assert.Equal(t, []string{"first"}, c.ended)
	assert.Equal(t, 6.0, e.SinceSpawn)
	assert.Equal(t, 0.0, e.SincePhase)
}

func TestEnemyPhaseAdvanceResetsIndices(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "first", Start: timeAt(0), Patterns: []content.PatternEntry{{Pattern: "p"}}},
		content.Phase{ID: "second", Start: timeAt(2.25)},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	last := e.Phase
	for range 12 {
		e.Update(0.25, 1024, c)
		assert.GreaterOrEqual(t, e.Phase, last)
		// phase 1 has no patterns, so the reset indices stay visible
		if e.Phase != last && last >= 0 {
			assert.Equal(t, -1, e.Pattern)
			assert.Equal(t, -1, e.Attack)
			assert.Nil(t, e.CurrentPattern())
			assert.Equal(t, 0.0, e.SincePattern)
		}
		last = e.Phase
	}
	assert.Equal(t, 1, e.Phase)
}

func TestEnemyPatternLoopsWithPeriod(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "only", Start: timeAt(0), Patterns: []content.PatternEntry{{Pattern: "p"}}},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	e.Update(1, 1024, c)
	assert.Equal(t, []string{"a0"}, c.firedIDs())

	// the second loop starts exactly one period in; the first loop's
	// remaining attack fires first, half a second late
	e.Update(1, 1024, c)
	assert.Equal(t, []string{"a0", "a1", "a0"}, c.firedIDs())
	assert.InDelta(t, 0.5, c.fired[1].Lag, 1e-9)
	assert.InDelta(t, 0, c.fired[2].Lag, 1e-9)
	assert.Equal(t, 1, e.Pattern)
	assert.Equal(t, []string{"p", "p"}, c.patterns)
}

func TestEnemyAttackLagWithinTick(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "only", Start: timeAt(0), Patterns: []content.PatternEntry{{Pattern: "p"}}},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	e.Update(0, 1024, c)
	e.Update(0.8, 1024, c)
	require.Len(t, c.fired, 2)
	assert.Equal(t, "a1", c.fired[1].ID)
	assert.InDelta(t, 0.3, c.fired[1].Lag, 1e-9)
}

func TestEnemyZeroPeriodRunsOnce(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "only", Start: timeAt(0), Patterns: []content.PatternEntry{{Pattern: "instant"}}},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	for range 10 {
		require.True(t, e.Update(1, 1024, c))
	}
	assert.Equal(t, []string{"a0"}, c.firedIDs())
}

func TestEnemyConditions(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "calm", Start: timeAt(0)},
		content.Phase{ID: "hurt", Start: content.Condition{Kind: content.HealthRatioCondition, Value: expr.Lit(0.5)}},
		content.Phase{ID: "alone", Start: content.Condition{Kind: content.EnemyCountCondition, Value: expr.Lit(1)}},
	)
	c := &fakeControl{p: pack, ratio: 1, alive: 3}
	e := NewEnemy(pack.Enemy("boss"))

	e.Update(1, 1024, c)
	e.Update(1, 1024, c)
	assert.Equal(t, 0, e.Phase)

	c.ratio = 0.4
	e.Update(1, 1024, c)
	assert.Equal(t, 1, e.Phase)

	c.alive = 1
	e.Update(1, 1024, c)
	assert.Equal(t, 2, e.Phase)
	assert.Equal(t, []string{"calm", "hurt", "alone"}, c.begun)
}

func TestEnemyConditionsChainInOneTick(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "a", Start: timeAt(0)},
		content.Phase{ID: "b", Start: timeAt(0)},
		content.Phase{ID: "c", Start: timeAt(0)},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	e.Update(0.1, 1024, c)
	assert.Equal(t, 2, e.Phase)
	assert.Equal(t, []string{"a", "b"}, c.ended)
}

func TestEnemyTransitionLimit(t *testing.T) {
	pack := statePack(t,
		content.Phase{ID: "a", Start: timeAt(0)},
		content.Phase{ID: "b", Start: timeAt(0)},
		content.Phase{ID: "c", Start: timeAt(0)},
	)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	assert.False(t, e.Update(0, 2, c))
	assert.Equal(t, 1, e.Phase)

	// scanning resumes on the next tick
	assert.True(t, e.Update(0, 2, c))
	assert.Equal(t, 2, e.Phase)
}

func TestEnemyWithoutPhases(t *testing.T) {
	pack := statePack(t)
	c := &fakeControl{p: pack, ratio: 1}
	e := NewEnemy(pack.Enemy("boss"))

	assert.True(t, e.Update(1, 1024, c))
	assert.Equal(t, -1, e.Phase)
	assert.Nil(t, e.CurrentPhase())
	assert.Empty(t, c.begun)
}
