// Package movement turns lists of actions into time-parametrized paths.
package movement

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/geom"
)

// PointKind selects how a Point maps time to position.
type PointKind uint8

const (
	PointStationary PointKind = iota
	PointLinear
	PointPolar
	PointBezier
	PointSampled
)

// Point is one path segment: an immutable function from local time to an
// offset in the path's frame, with a fixed lifespan. Position clamps its
// argument into [0, Lifespan], so a point past its end stays where it ended.
type Point struct {
	kind     PointKind
	lifespan float64

	origin   cp.Vector
	velocity cp.Vector

	// polar, about the frame origin
	angle           float64
	radius          float64
	angularVelocity float64
	radialSpeed     float64

	// bezier control points, or samples taken every step seconds
	controls []cp.Vector
	step     float64
}

// Forever is the lifespan of a segment that never expires.
var Forever = math.Inf(1)

// Stationary stays at at.
func Stationary(at cp.Vector, lifespan float64) Point {
	return Point{kind: PointStationary, origin: at, lifespan: lifespan}
}

// Linear moves from from with constant velocity.
func Linear(from, velocity cp.Vector, lifespan float64) Point {
	return Point{kind: PointLinear, origin: from, velocity: velocity, lifespan: lifespan}
}

// Polar orbits the frame origin starting at from, turning at angularVelocity
// radians per second while the radius changes by radialSpeed per second.
func Polar(from cp.Vector, angularVelocity, radialSpeed, lifespan float64) Point {
	return Point{
		kind:            PointPolar,
		origin:          from,
		angle:           from.ToAngle(),
		radius:          from.Length(),
		angularVelocity: angularVelocity,
		radialSpeed:     radialSpeed,
		lifespan:        lifespan,
	}
}

// Bezier follows the curve through controls over lifespan seconds.
func Bezier(controls []cp.Vector, lifespan float64) Point {
	if len(controls) == 0 {
		return Stationary(cp.Vector{}, lifespan)
	}
	return Point{kind: PointBezier, origin: controls[0], controls: controls, lifespan: lifespan}
}

// Sampled interpolates linearly between samples taken every step seconds.
func Sampled(samples []cp.Vector, step float64) Point {
	if len(samples) < 2 || step <= 0 {
		var at cp.Vector
		if len(samples) > 0 {
			at = samples[0]
		}
		return Stationary(at, 0)
	}
	return Point{
		kind:     PointSampled,
		origin:   samples[0],
		controls: samples,
		step:     step,
		lifespan: step * float64(len(samples)-1),
	}
}

func (p Point) Kind() PointKind {
	return p.kind
}

func (p Point) Lifespan() float64 {
	return p.lifespan
}

// Position evaluates the point at local time t.
func (p Point) Position(t float64) cp.Vector {
	t = max(0, min(t, p.lifespan))

	switch p.kind {
	case PointLinear:
		return p.origin.Add(p.velocity.Mult(t))
	case PointPolar:
		return geom.Polar(p.angle+p.angularVelocity*t, max(0, p.radius+p.radialSpeed*t))
	case PointBezier:
		if p.lifespan <= 0 || math.IsInf(p.lifespan, 1) {
			return p.origin
		}
		return geom.Bezier(p.controls, t/p.lifespan)
	case PointSampled:
		f := t / p.step
		i := int(f)
		if i >= len(p.controls)-1 {
			return p.controls[len(p.controls)-1]
		}
		return p.controls[i].Lerp(p.controls[i+1], f-float64(i))
	default:
		return p.origin
	}
}
