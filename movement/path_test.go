package movement_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/expr"
	"github.com/plus3/danmaku/movement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv resolves references from a fixed table of positions and paths.
type testEnv struct {
	positions map[*ecs.EntityRef]cp.Vector
	paths     map[*ecs.EntityRef]*movement.Path
	target    *cp.Vector
}

func newTestEnv() *testEnv {
	return &testEnv{
		positions: map[*ecs.EntityRef]cp.Vector{},
		paths:     map[*ecs.EntityRef]*movement.Path{},
	}
}

func (e *testEnv) Frame(ref *ecs.EntityRef) (cp.Vector, *movement.Path) {
	if path, ok := e.paths[ref]; ok {
		return path.Position(e), path
	}
	pos, ok := e.positions[ref]
	if !ok {
		panic("stale reference")
	}
	return pos, nil
}

func (e *testEnv) Target(cp.Vector) (cp.Vector, bool) {
	if e.target == nil {
		return cp.Vector{}, false
	}
	return *e.target, true
}

func linear(speed, angle, duration float64) movement.Action {
	return movement.Action{
		Kind:     movement.MoveLinear,
		Speed:    expr.Lit(speed),
		Angle:    expr.Lit(angle),
		Duration: expr.Lit(duration),
	}
}

func stay(duration float64) movement.Action {
	return movement.Action{Kind: movement.Stay, Duration: expr.Lit(duration)}
}

func assertVec(t *testing.T, want, got cp.Vector) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}

func TestPathFollowsActionsInOrder(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 10, Y: 0}}, []movement.Action{
		linear(10, 0, 1),
		stay(1),
		linear(5, math.Pi/2, 2),
	})

	path.Update(0, env)
	assertVec(t, cp.Vector{X: 10}, path.Local())

	path.Update(0.5, env)
	assertVec(t, cp.Vector{X: 15}, path.Local())

	path.Update(1, env)
	assertVec(t, cp.Vector{X: 20}, path.Local())

	path.Update(1, env)
	assertVec(t, cp.Vector{X: 20, Y: 2.5}, path.Local())

	// past the end the path stays at its final position
	path.Update(10, env)
	assertVec(t, cp.Vector{X: 20, Y: 10}, path.Local())
	assert.True(t, path.Done())
	assert.InDelta(t, 12.5, path.Age(), 1e-9)
}

func TestPathSkipsZeroLifespanSegmentsInOneUpdate(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{
		stay(0),
		linear(100, 0, 0),
		stay(0),
		linear(1, 0, 5),
	})

	path.Update(1, env)
	assertVec(t, cp.Vector{X: 1}, path.Local())
	assert.InDelta(t, 1, path.Elapsed(), 1e-9)
}

func TestPathAllZeroLifespansTerminates(t *testing.T) {
	env := newTestEnv()
	actions := make([]movement.Action, 100)
	for i := range actions {
		actions[i] = stay(0)
	}
	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 1}}, actions)

	path.Update(0.1, env)
	assert.True(t, path.Done())
	assertVec(t, cp.Vector{X: 1}, path.Local())
}

func TestPathTimeAccounting(t *testing.T) {
	env := newTestEnv()
	rng := rand.New(rand.NewSource(3))

	for trial := 0; trial < 20; trial++ {
		var actions []movement.Action
		for i := 0; i < 1+rng.Intn(8); i++ {
			actions = append(actions, linear(rng.Float64()*50, rng.Float64()*math.Pi*2, rng.Float64()*2))
		}
		path := movement.NewPath(movement.SpawnInfo{}, actions)

		total := 0.0
		for step := 0; step < 100; step++ {
			dt := rng.Float64() * 0.2
			total += dt
			if step == 40 {
				path.SetPath(actions[:1+rng.Intn(len(actions))], 0, env)
			}
			path.Update(dt, env)

			require.GreaterOrEqual(t, path.Elapsed(), 0.0)
			require.InDelta(t, total, path.Age(), 1e-9)
		}
	}
}

func TestSetPathKeepsTruncatedSegment(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{linear(10, 0, 4)})
	path.Update(1, env)
	assertVec(t, cp.Vector{X: 10}, path.Local())

	// the new actions began half a second ago
	path.SetPath([]movement.Action{linear(10, math.Pi/2, 10)}, 0.5, env)
	assertVec(t, cp.Vector{X: 5, Y: 5}, path.Local())
	assert.InDelta(t, 1, path.Age(), 1e-9)

	// the truncated segment ran for 0.5s, not its declared 4s
	assertVec(t, cp.Vector{X: 5}, path.PreviousPosition(0.5, env))
	assertVec(t, cp.Vector{X: 2.5}, path.PreviousPosition(0.75, env))
	assertVec(t, cp.Vector{}, path.PreviousPosition(1, env))
}

func TestSetPathLagReachesIntoHistory(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{linear(10, 0, 1), linear(10, math.Pi/2, -1)})
	path.Update(1.5, env)
	assertVec(t, cp.Vector{X: 10, Y: 5}, path.Local())

	path.SetPath([]movement.Action{stay(-1)}, 0.75, env)
	assertVec(t, cp.Vector{X: 7.5}, path.Local())
	assert.InDelta(t, 1.5, path.Age(), 1e-9)
}

func TestSetPathLagLongerThanAge(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 3}}, []movement.Action{stay(-1)})
	path.Update(0.25, env)

	path.SetPath([]movement.Action{linear(10, 0, -1)}, 1, env)
	assertVec(t, cp.Vector{X: 5.5}, path.Local())
	assert.InDelta(t, 0.25, path.Age(), 1e-9)
}

func TestBoundaryUsesReferenceOriginAtThatTime(t *testing.T) {
	env := newTestEnv()
	parent := &ecs.EntityRef{}
	parentPath := movement.NewPath(movement.SpawnInfo{}, []movement.Action{linear(10, 0, -1)})
	parentPath.Update(1, env)
	env.paths[parent] = &parentPath

	// both segment boundaries fall inside one update
	child := movement.NewPath(
		movement.SpawnInfo{Position: cp.Vector{Y: 5}, Reference: parent},
		[]movement.Action{stay(0.5), {Kind: movement.Detach}, stay(-1)},
	)
	child.Update(1, env)

	assert.Nil(t, child.Reference())
	assertVec(t, cp.Vector{X: 5, Y: 5}, child.Position(env))
}

func TestHomingEndsOnAuthoredDuration(t *testing.T) {
	env := newTestEnv()
	env.target = &cp.Vector{X: 100}

	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{
		{
			Kind:     movement.Homing,
			Speed:    expr.Lit(100),
			TurnRate: expr.Lit(math.Pi),
			Duration: expr.Lit(0.01),
		},
		stay(-1),
	})
	path.Update(0.01, env)
	assertVec(t, cp.Vector{X: 1}, path.Local())

	// the stay began exactly at 0.01s
	path.Update(0.5, env)
	assertVec(t, cp.Vector{X: 1}, path.Local())
	assert.InDelta(t, 0.51, path.Age(), 1e-9)
}

func TestPreviousPosition(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 1, Y: 1}}, []movement.Action{
		linear(2, 0, 1),
		linear(2, math.Pi/2, 1),
	})
	for i := 0; i < 15; i++ {
		path.Update(0.1, env)
	}

	assertVec(t, cp.Vector{X: 3, Y: 2}, path.PreviousPosition(0, env))
	assertVec(t, cp.Vector{X: 3, Y: 1}, path.PreviousPosition(0.5, env))
	assertVec(t, cp.Vector{X: 2, Y: 1}, path.PreviousPosition(1, env))
	assertVec(t, cp.Vector{X: 1, Y: 1}, path.PreviousPosition(1.5, env))
	// before the path started
	assertVec(t, cp.Vector{X: 1, Y: 1}, path.PreviousPosition(100, env))
}

func TestPreviousPositionIsIdempotent(t *testing.T) {
	env := newTestEnv()
	parentRef := &ecs.EntityRef{}
	parent := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 50}}, []movement.Action{
		linear(5, 0.3, 3),
		{Kind: movement.MovePolar, AngularVelocity: expr.Lit(1), RadialSpeed: expr.Lit(2), Duration: expr.Lit(3)},
	})
	env.paths[parentRef] = &parent

	child := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 3}, Reference: parentRef}, []movement.Action{
		{Kind: movement.MovePolar, AngularVelocity: expr.Lit(2), Duration: expr.Lit(-1)},
	})

	for i := 0; i < 40; i++ {
		parent.Update(0.1, env)
		child.Update(0.1, env)
	}

	for _, ago := range []float64{0, 0.05, 0.7, 1.3, 2.9, 4} {
		first := child.PreviousPosition(ago, env)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, child.PreviousPosition(ago, env))
		}
	}

	// the child orbits its parent at radius 3
	for _, ago := range []float64{0, 1, 2.5} {
		d := child.PreviousPosition(ago, env).Distance(parent.PreviousPosition(ago, env))
		assert.InDelta(t, 3, d, 1e-6)
	}
}

func TestPathRelativeToStationaryReference(t *testing.T) {
	env := newTestEnv()
	ref := &ecs.EntityRef{}
	env.positions[ref] = cp.Vector{X: 100, Y: 100}

	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{X: 1}, Reference: ref}, []movement.Action{linear(1, 0, 5)})
	path.Update(1, env)
	assertVec(t, cp.Vector{X: 102, Y: 100}, path.Position(env))

	env.positions[ref] = cp.Vector{X: 0, Y: 0}
	assertVec(t, cp.Vector{X: 2}, path.Position(env))
}

func TestPathDetach(t *testing.T) {
	env := newTestEnv()
	ref := &ecs.EntityRef{}
	env.positions[ref] = cp.Vector{X: 100}

	path := movement.NewPath(movement.SpawnInfo{Position: cp.Vector{Y: 5}, Reference: ref}, []movement.Action{
		stay(1),
		{Kind: movement.Detach},
		linear(1, 0, -1),
	})
	path.Update(2, env)
	assert.Nil(t, path.Reference())

	// moving the former parent no longer moves the path
	env.positions[ref] = cp.Vector{X: -500}
	assertVec(t, cp.Vector{X: 101, Y: 5}, path.Position(env))
	assert.False(t, path.Done())
}

func TestPathReanchor(t *testing.T) {
	env := newTestEnv()
	parent := &ecs.EntityRef{}
	anchor := &ecs.EntityRef{}
	env.positions[parent] = cp.Vector{X: 10}
	env.positions[anchor] = cp.Vector{X: 20}

	path := movement.NewPath(movement.SpawnInfo{Reference: parent}, []movement.Action{linear(1, 0, 1), stay(-1)})
	path.Update(1.5, env)
	path.Reanchor(parent, anchor)
	delete(env.positions, parent)

	assert.Same(t, anchor, path.Reference())
	assertVec(t, cp.Vector{X: 21}, path.Position(env))
	assertVec(t, cp.Vector{X: 20.5}, path.PreviousPosition(1, env))
}

func TestStaleReferencePanics(t *testing.T) {
	env := newTestEnv()
	path := movement.NewPath(movement.SpawnInfo{Reference: &ecs.EntityRef{}}, []movement.Action{stay(1)})
	assert.Panics(t, func() { path.Update(0.5, env) })
}

func TestHomingReachesStaticTarget(t *testing.T) {
	env := newTestEnv()
	env.target = &cp.Vector{X: 0, Y: 100}

	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{{
		Kind:     movement.Homing,
		Speed:    expr.Lit(100),
		Angle:    expr.Lit(0),
		TurnRate: expr.Lit(math.Pi * 4),
		Duration: expr.Lit(2),
	}})
	path.Update(0, env)
	start := path.Local()

	path.Update(0.9, env)
	assert.Less(t, path.Local().Distance(*env.target), start.Distance(*env.target))

	// the trajectory was fixed when the action began
	moved := path.Local()
	env.target = &cp.Vector{X: -1000}
	assert.Equal(t, moved, path.PreviousPosition(0, env))
}

func TestAimedLinear(t *testing.T) {
	env := newTestEnv()
	env.target = &cp.Vector{X: 0, Y: 10}

	path := movement.NewPath(movement.SpawnInfo{}, []movement.Action{{
		Kind:     movement.MoveLinear,
		Speed:    expr.Lit(1),
		Aimed:    true,
		Duration: expr.Lit(-1),
	}})
	path.Update(2, env)
	assertVec(t, cp.Vector{X: 0, Y: 2}, path.Local())
}

func TestPathReferences(t *testing.T) {
	env := newTestEnv()
	first := &ecs.EntityRef{}
	second := &ecs.EntityRef{}
	env.positions[first] = cp.Vector{}
	env.positions[second] = cp.Vector{}

	path := movement.NewPath(movement.SpawnInfo{Reference: first}, []movement.Action{stay(1), stay(1), stay(-1)})
	path.Update(2.5, env)
	path.Reanchor(first, second)
	assert.True(t, path.DependsOn(second))
	assert.False(t, path.DependsOn(first))

	detached := movement.NewPath(movement.SpawnInfo{Reference: first}, []movement.Action{stay(1), {Kind: movement.Detach}, stay(-1)})
	detached.Update(1.5, env)
	assert.Nil(t, detached.Reference())

	var refs []*ecs.EntityRef
	for r := range detached.References() {
		refs = append(refs, r)
	}
	require.Len(t, refs, 1)
	assert.Same(t, first, refs[0])
}
