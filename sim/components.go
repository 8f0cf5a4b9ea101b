package sim

import (
	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/content"
)

type pendingChild struct {
	EMP   *content.EMP
	Delay float64
}

// Spawner holds the children of a movable point that appear some time after
// it. The movement system releases them once the parent's path is old
// enough.
type Spawner struct {
	Side        component.Side
	Attribution component.Attribution
	Pending     []pendingChild
}

// LevelState is the level manager's singleton.
type LevelState struct {
	Level string
	// Clock is the total simulated time, level or not.
	Clock float64
	// Started is the Clock value the level began at.
	Started   float64
	NextEvent int

	EnemiesAlive int
	Spawned      int
	Killed       int
	Points       float64

	Music     string
	Completed bool
}

// LevelTime returns the time since the level started.
func (l *LevelState) LevelTime() float64 {
	return l.Clock - l.Started
}

// PlayerInput is what the surrounding application feeds the player each
// tick. Bomb is consumed by the player system.
type PlayerInput struct {
	Fire     bool
	Focus    bool
	Bomb     bool
	Velocity cp.Vector
}
