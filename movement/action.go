package movement

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/geom"
)

// ActionKind selects an Action variant.
type ActionKind uint8

const (
	// Stay holds position for Duration.
	Stay ActionKind = iota
	// MoveLinear moves at Speed along Angle for Duration.
	MoveLinear
	// MovePolar orbits the frame origin at AngularVelocity with RadialSpeed.
	MovePolar
	// MoveBezier follows Controls, given relative to the start position.
	MoveBezier
	// Homing steers toward a target sampled when the action begins.
	Homing
	// Detach leaves the reference frame and continues in absolute space.
	Detach
)

var actionNames = [...]string{"stay", "move_linear", "move_polar", "move_bezier", "homing", "detach"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

// Vec is an authored 2D offset.
type Vec struct {
	X, Y expr.Number
}

// V returns a literal Vec.
func V(x, y float64) Vec {
	return Vec{X: expr.Lit(x), Y: expr.Lit(y)}
}

func (v Vec) Value() cp.Vector {
	return cp.Vector{X: v.X.Value(), Y: v.Y.Value()}
}

func (v *Vec) Compile(scopes ...expr.Scope) error {
	return errors.Join(v.X.Compile(scopes...), v.Y.Compile(scopes...))
}

// homingStep is the integration step used to precompute homing trajectories.
const homingStep = 1.0 / 60

// Action is one step of a movement path. Only the fields relevant to Kind
// are read. A negative Duration never expires.
type Action struct {
	Kind     ActionKind
	Duration expr.Number

	Speed expr.Number
	// Angle in radians. When Aimed is set it is relative to the direction
	// of the target at the time the action begins.
	Angle expr.Number
	Aimed bool

	AngularVelocity expr.Number
	RadialSpeed     expr.Number

	Controls []Vec

	// TurnRate bounds how fast a homing action turns, in radians per second.
	TurnRate expr.Number
}

// Compile resolves every formula of the action.
func (a *Action) Compile(scopes ...expr.Scope) error {
	errs := []error{
		a.Duration.Compile(scopes...),
		a.Speed.Compile(scopes...),
		a.Angle.Compile(scopes...),
		a.AngularVelocity.Compile(scopes...),
		a.RadialSpeed.Compile(scopes...),
		a.TurnRate.Compile(scopes...),
	}
	for i := range a.Controls {
		errs = append(errs, a.Controls[i].Compile(scopes...))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", a.Kind, err)
	}
	return nil
}

// Lifespan is the duration of the segment the action produces.
func (a Action) Lifespan() float64 {
	if a.Kind == Detach {
		return 0
	}
	d := a.Duration.Value()
	if d < 0 {
		return Forever
	}
	return d
}

// Target locates what aimed and homing actions steer toward.
type Target interface {
	// Target returns the absolute position to aim at from the absolute
	// position from.
	Target(from cp.Vector) (cp.Vector, bool)
}

func (a Action) heading(from, origin cp.Vector, target Target) float64 {
	angle := a.Angle.Value()
	if !a.Aimed || target == nil {
		return angle
	}
	abs := from.Add(origin)
	if to, ok := target.Target(abs); ok && !to.Equal(abs) {
		return to.Sub(abs).ToAngle() + angle
	}
	return angle
}

// Evaluate builds the segment starting at from, expressed in a frame whose
// origin currently sits at origin in absolute space.
func (a Action) Evaluate(from, origin cp.Vector, target Target) Point {
	lifespan := a.Lifespan()

	switch a.Kind {
	case MoveLinear:
		v := cp.ForAngle(a.heading(from, origin, target)).Mult(a.Speed.Value())
		return Linear(from, v, lifespan)
	case MovePolar:
		return Polar(from, a.AngularVelocity.Value(), a.RadialSpeed.Value(), lifespan)
	case MoveBezier:
		controls := make([]cp.Vector, 0, len(a.Controls)+1)
		controls = append(controls, from)
		for _, c := range a.Controls {
			controls = append(controls, from.Add(c.Value()))
		}
		return Bezier(controls, lifespan)
	case Homing:
		return a.homing(from, origin, target, lifespan)
	default:
		return Stationary(from, lifespan)
	}
}

// homing integrates a constant-speed, turn-limited pursuit of a target that
// is sampled once. Keeping the result as samples leaves Point a pure
// function of time.
func (a Action) homing(from, origin cp.Vector, target Target, lifespan float64) Point {
	if math.IsInf(lifespan, 1) || lifespan <= 0 {
		return Stationary(from, max(lifespan, 0))
	}

	heading := a.heading(from, origin, target)
	speed := a.Speed.Value()
	maxTurn := a.TurnRate.Value() * homingStep

	var goal cp.Vector
	hasGoal := false
	if target != nil {
		if abs, ok := target.Target(from.Add(origin)); ok {
			goal, hasGoal = abs.Sub(origin), true
		}
	}

	steps := int(math.Ceil(lifespan / homingStep))
	samples := make([]cp.Vector, 0, steps+1)
	pos := from
	samples = append(samples, pos)
	for i := 0; i < steps; i++ {
		if hasGoal && !goal.Equal(pos) {
			heading = geom.TurnToward(heading, goal.Sub(pos).ToAngle(), maxTurn)
		}
		pos = pos.Add(cp.ForAngle(heading).Mult(speed * homingStep))
		samples = append(samples, pos)
	}
	// the last step is cut short so the segment ends on time
	pt := Sampled(samples, homingStep)
	pt.lifespan = lifespan
	return pt
}
