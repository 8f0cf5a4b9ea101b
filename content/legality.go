package content

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
)

// Severity orders legality findings.
type Severity uint8

const (
	Legal Severity = iota
	Warning
	Illegal
)

func (s Severity) String() string {
	switch s {
	case Legal:
		return "legal"
	case Warning:
		return "warning"
	default:
		return "illegal"
	}
}

// MarshalText lets reports render in YAML and TOML as words.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Report is the outcome of a legality check: the worst severity found and a
// message for every finding.
type Report struct {
	Severity Severity `yaml:"severity"`
	Messages []string `yaml:"messages,omitempty"`
}

func (r *Report) add(sev Severity, format string, args ...any) {
	r.Severity = max(r.Severity, sev)
	r.Messages = append(r.Messages, sev.String()+": "+fmt.Sprintf(format, args...))
}

func (r Report) String() string {
	if len(r.Messages) == 0 {
		return r.Severity.String()
	}
	return r.Severity.String() + "\n  " + strings.Join(r.Messages, "\n  ")
}

// CheckLegality compiles the pack against scopes and checks that the
// simulation can run it. The simulation itself does not repeat any of these
// checks.
func (p *Pack) CheckLegality(scopes ...expr.Scope) Report {
	var r Report

	p.checkDuplicates(&r)

	if err := p.Compile(scopes...); err != nil {
		for _, msg := range splitJoined(err) {
			r.add(Illegal, "%s", msg)
		}
		return r
	}

	for i := range p.Attacks {
		a := &p.Attacks[i]
		if a.Time.Value() < 0 {
			r.add(Illegal, "attack %q: negative time %v", a.ID, a.Time.Value())
		}
		p.checkEMP(&r, "attack "+quote(a.ID), &a.Root, true)
	}
	for i := range p.Patterns {
		p.checkPattern(&r, &p.Patterns[i])
	}
	for i := range p.Enemies {
		p.checkEnemy(&r, &p.Enemies[i])
	}
	for i := range p.Players {
		p.checkPlayer(&r, &p.Players[i])
	}
	for i := range p.Levels {
		l := &p.Levels[i]
		for j, ev := range l.Events {
			if p.Enemy(ev.Enemy) == nil {
				r.add(Illegal, "level %q event %d: unknown enemy %q", l.ID, j, ev.Enemy)
			}
			if ev.Spawn.Kind != movement.Absolute {
				r.add(Illegal, "level %q event %d: level spawns must be absolute", l.ID, j)
			}
		}
	}
	return r
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// splitJoined returns one line per error joined into err.
func splitJoined(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range joined.Unwrap() {
		out = append(out, strings.ReplaceAll(e.Error(), "\n", "; "))
	}
	return out
}

func (p *Pack) checkDuplicates(r *Report) {
	dups := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == "" {
				r.add(Illegal, "%s with empty id", kind)
				continue
			}
			if seen[id] {
				r.add(Illegal, "duplicate %s id %q", kind, id)
			}
			seen[id] = true
		}
	}
	ids := func(n int, id func(int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = id(i)
		}
		return out
	}
	dups("attack", ids(len(p.Attacks), func(i int) string { return p.Attacks[i].ID }))
	dups("pattern", ids(len(p.Patterns), func(i int) string { return p.Patterns[i].ID }))
	dups("enemy", ids(len(p.Enemies), func(i int) string { return p.Enemies[i].ID }))
	dups("player", ids(len(p.Players), func(i int) string { return p.Players[i].ID }))
	dups("level", ids(len(p.Levels), func(i int) string { return p.Levels[i].ID }))
}

func checkActions(r *Report, where string, actions []movement.Action) {
	for i, a := range actions {
		l := a.Lifespan()
		switch a.Kind {
		case movement.Homing, movement.MoveBezier:
			if math.IsInf(l, 1) {
				r.add(Illegal, "%s action %d: %s needs a finite duration", where, i, a.Kind)
			}
		}
		if math.IsInf(l, 1) && i != len(actions)-1 {
			r.add(Warning, "%s action %d: unbounded action is not last, later actions never run", where, i)
		}
		if a.Kind == movement.MoveBezier && len(a.Controls) == 0 {
			r.add(Warning, "%s action %d: bezier without control points stays still", where, i)
		}
	}
}

func (p *Pack) checkEMP(r *Report, where string, e *EMP, root bool) {
	if e.ID != "" {
		where += " point " + quote(e.ID)
	}
	if e.Hitbox.Value() < 0 {
		r.add(Illegal, "%s: negative hitbox", where)
	}
	if e.Damage.Value() < 0 {
		r.add(Illegal, "%s: negative damage", where)
	}
	if e.Policy == component.Pierce && e.PierceReset.Value() <= 0 {
		r.add(Illegal, "%s: pierce needs a positive pierce reset time", where)
	}
	if e.Delay.Value() < 0 {
		r.add(Illegal, "%s: negative delay", where)
	}
	if root && e.Delay.Value() != 0 {
		r.add(Warning, "%s: delay on a root point is ignored", where)
	}
	if e.Lifetime.Value() == 0 && len(e.Actions) > 0 {
		if l := e.Actions[len(e.Actions)-1].Lifespan(); !math.IsInf(l, 1) && e.Hitbox.Value() > 0 {
			r.add(Warning, "%s: point stops moving and never expires", where)
		}
	}
	checkActions(r, where, e.Actions)
	for i := range e.Children {
		p.checkEMP(r, fmt.Sprintf("%s child %d", where, i), &e.Children[i], false)
	}
}

func (p *Pack) checkPattern(r *Report, pat *Pattern) {
	where := "pattern " + quote(pat.ID)
	for _, id := range pat.Attacks {
		if p.Attack(id) == nil {
			r.add(Illegal, "%s: unknown attack %q", where, id)
		}
	}
	checkActions(r, where, pat.Actions)
}

func (p *Pack) checkEffects(r *Report, where string, effects []Effect) {
	for _, eff := range effects {
		if eff.Kind != ExecuteAttacks {
			continue
		}
		for _, id := range eff.Attacks {
			if p.Attack(id) == nil {
				r.add(Illegal, "%s: unknown attack %q", where, id)
			}
		}
	}
}

func (p *Pack) checkEnemy(r *Report, e *Enemy) {
	where := "enemy " + quote(e.ID)
	if e.Health.Value() <= 0 {
		r.add(Illegal, "%s: health must be positive", where)
	}
	if e.Hitbox.Value() <= 0 {
		r.add(Illegal, "%s: hitbox must be positive", where)
	}
	if len(e.Phases) == 0 {
		r.add(Warning, "%s: no phases, the enemy never attacks", where)
	}
	for i := range e.Phases {
		ph := &e.Phases[i]
		pw := fmt.Sprintf("%s phase %d", where, i)
		if i == 0 && (ph.Start.Kind != TimeCondition || ph.Start.Value.Value() != 0) {
			r.add(Illegal, "%s: first phase must start on a time condition of 0", pw)
		}
		if ph.Start.Kind == HealthRatioCondition {
			if v := ph.Start.Value.Value(); v < 0 || v > 1 {
				r.add(Warning, "%s: health ratio %v outside [0, 1]", pw, v)
			}
		}
		period := 0.0
		for j, entry := range ph.Patterns {
			pat := p.Pattern(entry.Pattern)
			if pat == nil {
				r.add(Illegal, "%s entry %d: unknown pattern %q", pw, j, entry.Pattern)
				continue
			}
			if entry.Time.Value() < 0 {
				r.add(Illegal, "%s entry %d: negative start time", pw, j)
			}
			if j == len(ph.Patterns)-1 {
				period = entry.Time.Value() + pat.Duration(p) + ph.LoopDelay.Value()
			}
		}
		if len(ph.Patterns) > 0 && period <= 0 {
			r.add(Warning, "%s: patterns take no time and run only once", pw)
		}
		p.checkEffects(r, pw+" begin", ph.Begin)
		p.checkEffects(r, pw+" end", ph.End)
	}
	p.checkEffects(r, where+" death", e.Death)
	for i, d := range e.Drops {
		if d.Count.Value() < 0 {
			r.add(Illegal, "%s drop %d: negative count", where, i)
		}
		if p.Item(d.Kind) == nil {
			r.add(Warning, "%s drop %d: no item definition for %s, defaults apply", where, i, d.Kind)
		}
	}
}

func (p *Pack) checkPlayer(r *Report, pl *Player) {
	where := "player " + quote(pl.ID)
	if pl.Health.Value() <= 0 {
		r.add(Illegal, "%s: health must be positive", where)
	}
	if pl.Hitbox.Value() <= 0 {
		r.add(Illegal, "%s: hitbox must be positive", where)
	}
	if len(pl.Tiers) == 0 {
		r.add(Illegal, "%s: at least one power tier is required", where)
	}
	for i, t := range pl.Tiers {
		tw := fmt.Sprintf("%s tier %d", where, i)
		if p.Pattern(t.Pattern) == nil {
			r.add(Illegal, "%s: unknown pattern %q", tw, t.Pattern)
		}
		if t.FocusedPattern != "" && p.Pattern(t.FocusedPattern) == nil {
			r.add(Illegal, "%s: unknown focused pattern %q", tw, t.FocusedPattern)
		}
		if t.BombPattern == "" {
			r.add(Warning, "%s: no bomb pattern, bombs do nothing", tw)
		} else if p.Pattern(t.BombPattern) == nil {
			r.add(Illegal, "%s: unknown bomb pattern %q", tw, t.BombPattern)
		}
		if i < len(pl.Tiers)-1 && t.Threshold.Value() <= 0 {
			r.add(Illegal, "%s: threshold must be positive", tw)
		}
	}
}
