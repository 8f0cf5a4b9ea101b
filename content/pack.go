package content

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
)

// Pack is a complete set of content. Objects reference each other by ID.
type Pack struct {
	Symbols expr.Scope

	Attacks  []Attack
	Patterns []Pattern
	Enemies  []Enemy
	Players  []Player
	Levels   []Level
	Items    []Item

	attacks  map[string]*Attack
	patterns map[string]*Pattern
	enemies  map[string]*Enemy
	players  map[string]*Player
	levels   map[string]*Level
	items    map[component.ItemKind]*Item
	compiled bool
}

// Index rebuilds the ID lookup tables. It must be called again after any of
// the content slices are modified.
func (p *Pack) Index() {
	p.attacks = indexBy(p.Attacks, func(a *Attack) string { return a.ID })
	p.patterns = indexBy(p.Patterns, func(a *Pattern) string { return a.ID })
	p.enemies = indexBy(p.Enemies, func(a *Enemy) string { return a.ID })
	p.players = indexBy(p.Players, func(a *Player) string { return a.ID })
	p.levels = indexBy(p.Levels, func(a *Level) string { return a.ID })
	p.items = indexBy(p.Items, func(a *Item) component.ItemKind { return a.Kind })
}

func indexBy[T any, K comparable](items []T, key func(*T) K) map[K]*T {
	m := make(map[K]*T, len(items))
	for i := range items {
		k := key(&items[i])
		if _, dup := m[k]; !dup {
			m[k] = &items[i]
		}
	}
	return m
}

func (p *Pack) ensureIndex() {
	if p.attacks == nil {
		p.Index()
	}
}

func (p *Pack) Attack(id string) *Attack {
	p.ensureIndex()
	return p.attacks[id]
}

func (p *Pack) Pattern(id string) *Pattern {
	p.ensureIndex()
	return p.patterns[id]
}

func (p *Pack) Enemy(id string) *Enemy {
	p.ensureIndex()
	return p.enemies[id]
}

func (p *Pack) Player(id string) *Player {
	p.ensureIndex()
	return p.players[id]
}

func (p *Pack) Level(id string) *Level {
	p.ensureIndex()
	return p.levels[id]
}

// Item returns the definition for a collectible kind, or nil.
func (p *Pack) Item(kind component.ItemKind) *Item {
	p.ensureIndex()
	return p.items[kind]
}

// Phase returns phase i of an enemy, or nil when out of range.
func (p *Pack) Phase(enemyID string, i int) *Phase {
	e := p.Enemy(enemyID)
	if e == nil || i < 0 || i >= len(e.Phases) {
		return nil
	}
	return &e.Phases[i]
}

// Compiled reports whether Compile succeeded.
func (p *Pack) Compiled() bool {
	return p.compiled
}

// Compile resolves every formula. Scopes are the outermost symbol tables;
// the pack's own Symbols come next, then per-enemy and per-player symbols.
// All failures are reported together.
func (p *Pack) Compile(scopes ...expr.Scope) error {
	p.Index()
	base := expr.Scopes(scopes).With(p.Symbols)

	var errs []error
	wrap := func(kind, id string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", kind, id, err))
		}
	}

	for i := range p.Attacks {
		a := &p.Attacks[i]
		wrap("attack", a.ID, errors.Join(a.Time.Compile(base...), a.Root.compile(base)))
	}
	for i := range p.Patterns {
		pat := &p.Patterns[i]
		wrap("pattern", pat.ID, errors.Join(compileActions(pat.Actions, base), pat.Trail.Interval.Compile(base...)))
	}
	for i := range p.Enemies {
		e := &p.Enemies[i]
		wrap("enemy", e.ID, e.compile(base.With(e.Symbols)))
	}
	for i := range p.Players {
		pl := &p.Players[i]
		wrap("player", pl.ID, pl.compile(base.With(pl.Symbols)))
	}
	for i := range p.Levels {
		l := &p.Levels[i]
		for j := range l.Events {
			ev := &l.Events[j]
			wrap("level", l.ID, errors.Join(ev.Time.Compile(base...), ev.Spawn.Compile(base...)))
		}
	}
	for i := range p.Items {
		it := &p.Items[i]
		wrap("item", it.Kind.String(), errors.Join(
			it.Hitbox.Compile(base...),
			it.ActivationRadius.Compile(base...),
			it.FallSpeed.Compile(base...),
			it.AttractedSpeed.Compile(base...),
			it.Lifetime.Compile(base...),
		))
	}

	if err := errors.Join(errs...); err != nil {
		p.compiled = false
		return fmt.Errorf("compile content: %w", err)
	}

	p.sortSchedules()
	p.compiled = true
	return nil
}

// sortSchedules orders attacks, pattern entries and level events by time so
// the state machines can scan them front to back.
func (p *Pack) sortSchedules() {
	for i := range p.Patterns {
		slices.SortStableFunc(p.Patterns[i].Attacks, func(a, b string) int {
			return cmp.Compare(p.attackTime(a), p.attackTime(b))
		})
	}
	for i := range p.Enemies {
		for j := range p.Enemies[i].Phases {
			slices.SortStableFunc(p.Enemies[i].Phases[j].Patterns, func(a, b PatternEntry) int {
				return cmp.Compare(a.Time.Value(), b.Time.Value())
			})
		}
	}
	for i := range p.Levels {
		slices.SortStableFunc(p.Levels[i].Events, func(a, b LevelEvent) int {
			return cmp.Compare(a.Time.Value(), b.Time.Value())
		})
	}
}

func (p *Pack) attackTime(id string) float64 {
	if a := p.attacks[id]; a != nil && a.Time.Resolved() {
		return a.Time.Value()
	}
	return 0
}

// LargestHitbox returns the largest hitbox radius of any compiled object,
// used to size the oversized collision table.
func (p *Pack) LargestHitbox() float64 {
	largest := 0.0
	for i := range p.Enemies {
		largest = max(largest, p.Enemies[i].Hitbox.Value())
	}
	for i := range p.Players {
		largest = max(largest, p.Players[i].Hitbox.Value())
	}
	for i := range p.Attacks {
		largest = max(largest, p.Attacks[i].Root.largestHitbox())
	}
	for i := range p.Items {
		largest = max(largest, p.Items[i].Hitbox.Value())
	}
	return largest
}

func compileActions(actions []movement.Action, scopes expr.Scopes) error {
	var errs []error
	for i := range actions {
		if err := actions[i].Compile(scopes...); err != nil {
			errs = append(errs, fmt.Errorf("action %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (e *EMP) compile(scopes expr.Scopes) error {
	errs := []error{
		e.Spawn.Compile(scopes...),
		compileActions(e.Actions, scopes),
		e.Hitbox.Compile(scopes...),
		e.Damage.Compile(scopes...),
		e.PierceReset.Compile(scopes...),
		e.Lifetime.Compile(scopes...),
		e.Delay.Compile(scopes...),
		e.Trail.Interval.Compile(scopes...),
	}
	for i := range e.Children {
		if err := e.Children[i].compile(scopes); err != nil {
			errs = append(errs, fmt.Errorf("child %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (e *EMP) largestHitbox() float64 {
	largest := e.Hitbox.Value()
	for i := range e.Children {
		largest = max(largest, e.Children[i].largestHitbox())
	}
	return largest
}

func (e *Enemy) compile(scopes expr.Scopes) error {
	errs := []error{
		e.Health.Compile(scopes...),
		e.Hitbox.Compile(scopes...),
		e.Points.Compile(scopes...),
		e.Trail.Interval.Compile(scopes...),
	}
	for i := range e.Phases {
		ph := &e.Phases[i]
		errs = append(errs, ph.Start.Value.Compile(scopes...), ph.LoopDelay.Compile(scopes...))
		for j := range ph.Patterns {
			errs = append(errs, ph.Patterns[j].Time.Compile(scopes...))
		}
	}
	for i := range e.Drops {
		errs = append(errs, e.Drops[i].Count.Compile(scopes...), e.Drops[i].Value.Compile(scopes...))
	}
	return errors.Join(errs...)
}

func (pl *Player) compile(scopes expr.Scopes) error {
	errs := []error{
		pl.Health.Compile(scopes...),
		pl.Hitbox.Compile(scopes...),
		pl.Bombs.Compile(scopes...),
		pl.Invulnerability.Compile(scopes...),
		pl.PointsPerExtraPower.Compile(scopes...),
	}
	for i := range pl.Tiers {
		t := &pl.Tiers[i]
		errs = append(errs,
			t.Threshold.Compile(scopes...),
			t.LoopDelay.Compile(scopes...),
			t.BombCooldown.Compile(scopes...),
			t.BombInvincibility.Compile(scopes...),
		)
	}
	return errors.Join(errs...)
}
