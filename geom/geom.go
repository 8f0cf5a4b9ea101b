// Package geom holds the small amount of 2D geometry the simulation needs on
// top of cp.Vector: hitbox circles and Bézier curves.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Circle is a hitbox: a center and a radius.
type Circle struct {
	Center cp.Vector
	Radius float64
}

// Overlaps reports whether two circles intersect. Touching counts.
func (c Circle) Overlaps(o Circle) bool {
	r := c.Radius + o.Radius
	return c.Center.DistanceSq(o.Center) <= r*r
}

// Bounds returns the axis-aligned box around the circle.
func (c Circle) Bounds() cp.BB {
	return cp.NewBBForCircle(c.Center, c.Radius)
}

// Translate returns the circle moved by offset.
func (c Circle) Translate(offset cp.Vector) Circle {
	return Circle{Center: c.Center.Add(offset), Radius: c.Radius}
}

// Bezier evaluates the curve through controls at t in [0, 1] using de
// Casteljau's algorithm. An empty control list evaluates to the origin.
func Bezier(controls []cp.Vector, t float64) cp.Vector {
	switch len(controls) {
	case 0:
		return cp.Vector{}
	case 1:
		return controls[0]
	}

	var scratch [8]cp.Vector
	pts := scratch[:0]
	pts = append(pts, controls...)
	for n := len(pts) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			pts[i] = pts[i].Lerp(pts[i+1], t)
		}
	}
	return pts[0]
}

// BezierLength approximates the arc length of the curve with a polyline of
// the given number of segments.
func BezierLength(controls []cp.Vector, segments int) float64 {
	if segments < 1 {
		segments = 1
	}
	length := 0.0
	prev := Bezier(controls, 0)
	for i := 1; i <= segments; i++ {
		p := Bezier(controls, float64(i)/float64(segments))
		length += prev.Distance(p)
		prev = p
	}
	return length
}

// Polar returns the point at angle (radians) and distance from the origin.
func Polar(angle, distance float64) cp.Vector {
	return cp.ForAngle(angle).Mult(distance)
}

// TurnToward rotates heading toward target by at most maxTurn radians.
func TurnToward(heading, target, maxTurn float64) float64 {
	diff := math.Remainder(target-heading, 2*math.Pi)
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	return heading + diff
}
