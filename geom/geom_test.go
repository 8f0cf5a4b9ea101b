package geom_test

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/geom"
	"github.com/stretchr/testify/assert"
)

func TestCircleOverlaps(t *testing.T) {
	a := geom.Circle{Center: cp.Vector{X: 0, Y: 0}, Radius: 5}

	tests := []struct {
		name string
		b    geom.Circle
		want bool
	}{
		{"concentric", geom.Circle{Center: cp.Vector{}, Radius: 1}, true},
		{"touching", geom.Circle{Center: cp.Vector{X: 8}, Radius: 3}, true},
		{"apart", geom.Circle{Center: cp.Vector{X: 8.01}, Radius: 3}, false},
		{"diagonal", geom.Circle{Center: cp.Vector{X: 5, Y: 5}, Radius: 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestBezierEndpoints(t *testing.T) {
	controls := []cp.Vector{{X: 0, Y: 0}, {X: 10, Y: 20}, {X: 30, Y: 0}}

	assert.Equal(t, controls[0], geom.Bezier(controls, 0))
	end := geom.Bezier(controls, 1)
	assert.InDelta(t, 30, end.X, 1e-9)
	assert.InDelta(t, 0, end.Y, 1e-9)

	mid := geom.Bezier(controls, 0.5)
	assert.InDelta(t, 12.5, mid.X, 1e-9)
	assert.InDelta(t, 10, mid.Y, 1e-9)
}

func TestBezierStraightLineLength(t *testing.T) {
	controls := []cp.Vector{{X: 0, Y: 0}, {X: 3, Y: 4}}
	assert.InDelta(t, 5, geom.BezierLength(controls, 16), 1e-9)
}

func TestTurnToward(t *testing.T) {
	assert.InDelta(t, 0.1, geom.TurnToward(0, math.Pi/2, 0.1), 1e-12)
	assert.InDelta(t, -0.1, geom.TurnToward(0, -math.Pi/2, 0.1), 1e-12)
	assert.InDelta(t, 0.05, geom.TurnToward(0, 0.05, 0.1), 1e-12)
	// wraps the short way around
	assert.InDelta(t, math.Pi+0.1, geom.TurnToward(math.Pi, -math.Pi+0.2, 0.1), 1e-12)
}
