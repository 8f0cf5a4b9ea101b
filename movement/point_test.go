package movement_test

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointClampsTime(t *testing.T) {
	p := movement.Linear(cp.Vector{X: 1}, cp.Vector{X: 2}, 3)

	assertVec(t, cp.Vector{X: 1}, p.Position(-5))
	assertVec(t, cp.Vector{X: 5}, p.Position(2))
	assertVec(t, cp.Vector{X: 7}, p.Position(3))
	assertVec(t, cp.Vector{X: 7}, p.Position(30))
}

func TestPolarPoint(t *testing.T) {
	p := movement.Polar(cp.Vector{X: 2}, math.Pi/2, 1, 4)

	assertVec(t, cp.Vector{X: 2}, p.Position(0))
	assertVec(t, cp.Vector{X: 0, Y: 3}, p.Position(1))
	assertVec(t, cp.Vector{X: -4, Y: 0}, p.Position(2))
}

func TestBezierPoint(t *testing.T) {
	p := movement.Bezier([]cp.Vector{{X: 0}, {X: 5, Y: 10}, {X: 10}}, 2)
	assertVec(t, cp.Vector{}, p.Position(0))
	assertVec(t, cp.Vector{X: 5, Y: 5}, p.Position(1))
	assertVec(t, cp.Vector{X: 10}, p.Position(2))
}

func TestSampledPoint(t *testing.T) {
	p := movement.Sampled([]cp.Vector{{X: 0}, {X: 1}, {X: 3}}, 0.5)
	assert.Equal(t, 1.0, p.Lifespan())
	assertVec(t, cp.Vector{X: 0.5}, p.Position(0.25))
	assertVec(t, cp.Vector{X: 2}, p.Position(0.75))
	assertVec(t, cp.Vector{X: 3}, p.Position(5))

	single := movement.Sampled([]cp.Vector{{X: 4}}, 0.5)
	assert.Equal(t, movement.PointStationary, single.Kind())
}

func TestActionLifespan(t *testing.T) {
	assert.Equal(t, 0.0, movement.Action{Kind: movement.Detach, Duration: expr.Lit(5)}.Lifespan())
	assert.True(t, math.IsInf(stay(-1).Lifespan(), 1))
	assert.Equal(t, 2.0, stay(2).Lifespan())
}

func TestActionCompile(t *testing.T) {
	a := movement.Action{
		Kind:     movement.MoveBezier,
		Duration: expr.F("t * 2"),
		Controls: []movement.Vec{{X: expr.F("w"), Y: expr.Lit(0)}},
	}
	require.NoError(t, a.Compile(expr.Scope{"t": 1.5, "w": 8}))
	assert.Equal(t, 3.0, a.Lifespan())

	p := a.Evaluate(cp.Vector{X: 1}, cp.Vector{}, nil)
	assertVec(t, cp.Vector{X: 9}, p.Position(3))

	bad := movement.Action{Kind: movement.Stay, Duration: expr.F("missing")}
	assert.Error(t, bad.Compile())
}

func TestSpawnTypeResolve(t *testing.T) {
	source := &ecs.EntityRef{}
	at := cp.Vector{X: 10, Y: 20}

	abs := movement.SpawnType{Kind: movement.Absolute, Offset: movement.V(1, 2)}.Resolve(source, at)
	assert.Equal(t, movement.SpawnInfo{Position: cp.Vector{X: 1, Y: 2}}, abs)

	rel := movement.SpawnType{Kind: movement.EntityRelative, Offset: movement.V(1, 2)}.Resolve(source, at)
	assert.Equal(t, movement.SpawnInfo{Position: cp.Vector{X: 11, Y: 22}}, rel)

	att := movement.SpawnType{Kind: movement.EntityAttached, Offset: movement.V(1, 2)}.Resolve(source, at)
	assert.Equal(t, cp.Vector{X: 1, Y: 2}, att.Position)
	assert.Same(t, source, att.Reference)
}
