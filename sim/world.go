// Package sim is the bullet-hell simulation: spawn commands, the enemy and
// player state machines, collision and the systems that tie them together
// into a fixed-timestep World.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/config"
	"github.com/plus3/danmaku/content"
	"github.com/plus3/danmaku/ecs"
	"github.com/plus3/danmaku/movement"
	"go.uber.org/zap"
)

var (
	ErrNotCompiled  = errors.New("content pack is not compiled")
	ErrUnknownLevel = errors.New("unknown level")
	ErrUnknownActor = errors.New("unknown enemy or player")
)

// NewRegistry registers every component the simulation spawns.
func NewRegistry() *ecs.ComponentRegistry {
	r := ecs.NewComponentRegistry()
	ecs.RegisterComponent[component.Position](r)
	ecs.RegisterComponent[component.Hitbox](r)
	ecs.RegisterComponent[component.Health](r)
	ecs.RegisterComponent[component.Bullet](r)
	ecs.RegisterComponent[component.Despawn](r)
	ecs.RegisterComponent[component.ShadowTrail](r)
	ecs.RegisterComponent[component.Collectible](r)
	ecs.RegisterComponent[component.Anchor](r)
	ecs.RegisterComponent[component.Sprite](r)
	ecs.RegisterComponent[movement.Path](r)
	ecs.RegisterComponent[Enemy](r)
	ecs.RegisterComponent[Player](r)
	ecs.RegisterComponent[Spawner](r)
	return r
}

// World owns one simulation. Tick, the spawn helpers and Read may be called
// from different goroutines; they serialize on an internal mutex.
type World struct {
	mu sync.Mutex

	*shared
	scheduler *ecs.Scheduler
	input     *ecs.Singleton[PlayerInput]
	metrics   *ecs.Singleton[SimulationMetrics]
}

// NewWorld builds a world for a compiled content pack.
func NewWorld(cfg *config.Config, pack *content.Pack, hooks Hooks, log *zap.Logger) (*World, error) {
	if !pack.Compiled() {
		return nil, ErrNotCompiled
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := *cfg
	storage := ecs.NewStorage(NewRegistry())
	storage.SetReserveIncrement(c.Simulation.ReserveIncrement)

	sh := newShared(storage, pack, &c, hooks, log)
	w := &World{
		shared:    sh,
		scheduler: ecs.NewScheduler(storage),
		input:     ecs.NewSingleton[PlayerInput](storage),
		metrics:   ecs.NewSingleton[SimulationMetrics](storage),
	}

	w.scheduler.Register(newCollisionSystem(sh))
	w.scheduler.Register(&LevelManagerSystem{w: sh, log: log.Named("level")})
	w.scheduler.Register(newDespawnSystem(sh))
	w.scheduler.Register(&ShadowTrailSystem{w: sh})
	w.scheduler.Register(&MovementSystem{w: sh})
	w.scheduler.Register(&CollectibleSystem{w: sh, log: log.Named("collectible")})
	w.scheduler.Register(&PlayerSystem{w: sh, log: log.Named("player")})
	w.scheduler.Register(&EnemySystem{w: sh, log: log.Named("enemy")})
	w.scheduler.Register(&StatsSystem{})
	return w, nil
}

// StartLevel restarts the level schedule at the current clock.
func (w *World) StartLevel(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	level := w.pack.Level(id)
	if level == nil {
		return fmt.Errorf("start level %q: %w", id, ErrUnknownLevel)
	}
	state := w.level.Get()
	*state = LevelState{
		Level:   id,
		Clock:   state.Clock,
		Started: state.Clock,
		Music:   state.Music,
	}
	w.changeMusic(level.Music)
	w.log.Info("level started", zap.String("level", id), zap.Int("events", len(level.Events)))
	return nil
}

// SpawnPlayer creates the player immediately.
func (w *World) SpawnPlayer(id string, at cp.Vector) error {
	def := w.pack.Player(id)
	if def == nil || len(def.Tiers) == 0 {
		return fmt.Errorf("spawn player %q: %w", id, ErrUnknownActor)
	}
	w.spawn(SpawnPlayerCommand{w: w.shared, Def: def, At: at})
	return nil
}

// SpawnEnemy creates an enemy immediately, outside the level schedule.
func (w *World) SpawnEnemy(id string, at cp.Vector) error {
	def := w.pack.Enemy(id)
	if def == nil {
		return fmt.Errorf("spawn enemy %q: %w", id, ErrUnknownActor)
	}
	w.spawn(SpawnEnemyCommand{w: w.shared, Def: def, At: at})
	return nil
}

func (w *World) spawn(cmd ecs.Command) {
	w.mu.Lock()
	defer w.mu.Unlock()

	q := w.scheduler.Queue()
	q.PushBack(cmd)
	q.ExecuteAll()
}

// SetInput replaces the player input read on the next tick.
func (w *World) SetInput(in PlayerInput) {
	w.mu.Lock()
	defer w.mu.Unlock()
	*w.input.Get() = in
}

// SetConfig applies a reloaded configuration. Collision settings size the
// hash tables and only take effect in new worlds.
func (w *World) SetConfig(cfg *config.Config) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := *cfg
	if c.Collision != w.cfg.Collision {
		w.log.Warn("collision settings changed; they apply to new worlds only")
		c.Collision = w.cfg.Collision
	}
	w.cfg = &c
	w.storage.SetReserveIncrement(c.Simulation.ReserveIncrement)
}

// Tick advances the simulation by dt seconds.
func (w *World) Tick(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduler.Once(dt)
}

// Run ticks at the configured rate until ctx is done or the level completes.
func (w *World) Run(ctx context.Context) error {
	interval := w.cfg.Simulation.TickRate
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Tick(interval.Seconds())
			if w.Level().Completed {
				return nil
			}
		}
	}
}

// Read runs fn with the registry locked against ticks.
func (w *World) Read(fn func(storage *ecs.Storage)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.storage)
}

// Level returns a copy of the level state.
func (w *World) Level() LevelState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.level.Get()
}

// Metrics returns a copy of the last tick's metrics.
func (w *World) Metrics() SimulationMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics.Get()
}

// StorageStats summarises the registry.
func (w *World) StorageStats() ecs.StorageStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.storage.CollectStats()
}

// SchedulerStats returns per-system timings.
func (w *World) SchedulerStats() *ecs.SchedulerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scheduler.GetStats()
}
