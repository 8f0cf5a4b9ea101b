package movement

import (
	"iter"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
)

// Frames resolves reference entities for relative paths.
type Frames interface {
	// Frame returns the reference's current absolute position and its path,
	// or a nil path for a reference that does not move along one. A stale
	// reference is a programming error and panics.
	Frame(ref *ecs.EntityRef) (cp.Vector, *Path)
}

// Env is what a path needs while advancing.
type Env interface {
	Frames
	Target
}

type segment struct {
	point Point
	ref   *ecs.EntityRef
	// span is how long the segment actually ran; it differs from the
	// point's lifespan when SetPath cut it short or it ran past its end.
	span float64
}

// Path is the movement path component: the current segment, the actions
// still to come, and every segment already completed.
type Path struct {
	actions []Action
	next    int

	current Point
	ref     *ecs.EntityRef
	elapsed float64
	local   cp.Vector

	history []segment
}

// NewPath starts a path at info. The first action is applied on the first
// Update, including Update(0).
func NewPath(info SpawnInfo, actions []Action) Path {
	return Path{
		actions: actions,
		current: Stationary(info.Position, 0),
		ref:     info.Reference,
		local:   info.Position,
	}
}

// Reference returns the entity the path is relative to, or nil.
func (p *Path) Reference() *ecs.EntityRef {
	return p.ref
}

// Elapsed is the time spent in the current segment. It keeps growing after
// the last segment ends.
func (p *Path) Elapsed() float64 {
	return p.elapsed
}

// Age is the total time the path has been running.
func (p *Path) Age() float64 {
	total := p.elapsed
	for _, s := range p.history {
		total += s.span
	}
	return total
}

// Done reports whether every action has been applied and the last segment
// has run out.
func (p *Path) Done() bool {
	return p.next >= len(p.actions) && p.elapsed >= p.current.Lifespan()
}

// References yields every reference entity the path depends on, the current
// one first. Consecutive archived segments sharing a reference yield it once.
func (p *Path) References() iter.Seq[*ecs.EntityRef] {
	return func(yield func(*ecs.EntityRef) bool) {
		var last *ecs.EntityRef
		if p.ref != nil {
			if !yield(p.ref) {
				return
			}
			last = p.ref
		}
		for i := len(p.history) - 1; i >= 0; i-- {
			ref := p.history[i].ref
			if ref == nil || ref == last || ref == p.ref {
				continue
			}
			if !yield(ref) {
				return
			}
			last = ref
		}
	}
}

// DependsOn reports whether ref is among the path's references.
func (p *Path) DependsOn(ref *ecs.EntityRef) bool {
	for r := range p.References() {
		if r == ref {
			return true
		}
	}
	return false
}

// Local returns the position in the path's own frame.
func (p *Path) Local() cp.Vector {
	return p.local
}

// Position returns the absolute position.
func (p *Path) Position(frames Frames) cp.Vector {
	if p.ref == nil {
		return p.local
	}
	origin, _ := frames.Frame(p.ref)
	return p.local.Add(origin)
}

// Update advances the path by dt. Expired segments are archived and the
// following actions evaluated from the exact boundary position; when the
// actions run out the path stays at its last position.
func (p *Path) Update(dt float64, env Env) {
	p.elapsed += dt

	for p.next < len(p.actions) && p.elapsed >= p.current.Lifespan() {
		span := p.current.Lifespan()
		boundary := p.current.Position(span)
		p.history = append(p.history, segment{point: p.current, ref: p.ref, span: span})
		p.elapsed -= span

		action := p.actions[p.next]
		p.next++

		// the boundary was p.elapsed seconds ago
		origin := previousOrigin(p.ref, p.elapsed, env)
		if action.Kind == Detach && p.ref != nil {
			boundary = boundary.Add(origin)
			origin = cp.Vector{}
			p.ref = nil
		}
		p.current = action.Evaluate(boundary, origin, env)
	}

	p.local = p.current.Position(p.elapsed)
}

// SetPath replaces the remaining actions with actions that started timeLag
// seconds ago. The path is cut back to where it was at that moment, the cut
// segment is kept in history with the time it actually ran, and the new
// actions are then advanced by timeLag. A lag longer than the path's age is
// shortened to the age.
func (p *Path) SetPath(actions []Action, timeLag float64, env Env) {
	cut := p.elapsed - max(timeLag, 0)
	for cut < 0 && len(p.history) > 0 {
		last := p.history[len(p.history)-1]
		p.history = p.history[:len(p.history)-1]
		p.current, p.ref = last.point, last.ref
		cut += last.span
	}
	lag := max(timeLag, 0)
	if cut < 0 {
		lag += cut
		cut = 0
	}

	p.history = append(p.history, segment{point: p.current, ref: p.ref, span: cut})
	p.local = p.current.Position(cut)
	p.current = Stationary(p.local, 0)
	p.elapsed = 0
	p.actions = actions
	p.next = 0
	p.Update(lag, env)
}

// Reanchor moves every segment relative to from onto to. It is used when a
// reference entity goes away and a stationary anchor takes its place.
func (p *Path) Reanchor(from, to *ecs.EntityRef) {
	if p.ref == from {
		p.ref = to
	}
	for i := range p.history {
		if p.history[i].ref == from {
			p.history[i].ref = to
		}
	}
}

// PreviousPosition returns the absolute position secondsAgo seconds in the
// past. Times before the path started give the spawn position. A reference
// without a path of its own is taken to have been where it is now.
func (p *Path) PreviousPosition(secondsAgo float64, frames Frames) cp.Vector {
	secondsAgo = max(secondsAgo, 0)

	if secondsAgo <= p.elapsed {
		return p.current.Position(p.elapsed - secondsAgo).Add(previousOrigin(p.ref, secondsAgo, frames))
	}

	t := secondsAgo - p.elapsed
	for i := len(p.history) - 1; i >= 0; i-- {
		s := p.history[i]
		if t <= s.span {
			return s.point.Position(s.span - t).Add(previousOrigin(s.ref, secondsAgo, frames))
		}
		t -= s.span
	}

	first := p.current
	ref := p.ref
	if len(p.history) > 0 {
		first, ref = p.history[0].point, p.history[0].ref
	}
	return first.Position(0).Add(previousOrigin(ref, secondsAgo, frames))
}

func previousOrigin(ref *ecs.EntityRef, secondsAgo float64, frames Frames) cp.Vector {
	if ref == nil {
		return cp.Vector{}
	}
	pos, path := frames.Frame(ref)
	if path == nil {
		return pos
	}
	return path.PreviousPosition(secondsAgo, frames)
}
