package sim

import (
	"time"

	"github.com/plus3/danmaku/component"
	"github.com/plus3/danmaku/ecs"
)

// SimulationMetrics is the stats system's singleton: live counts of the last
// tick plus running peaks.
type SimulationMetrics struct {
	Ticks    uint64
	Entities int

	Bullets       int
	PlayerBullets int
	Enemies       int
	Items         int
	Anchors       int

	PeakEntities int
	PeakBullets  int

	// TickTime is the wall time between the last two ticks.
	TickTime time.Duration
	MaxTick  time.Duration
}

// StatsSystem runs last and records what the tick left behind.
type StatsSystem struct {
	Metrics ecs.Singleton[SimulationMetrics]

	Bullets ecs.Query[struct{ *component.Bullet }]
	Enemies ecs.Query[struct{ *Enemy }]
	Items   ecs.Query[struct{ *component.Collectible }]
	Anchors ecs.Query[struct{ *component.Anchor }]

	lastTime time.Time
}

func (s *StatsSystem) Execute(frame *ecs.UpdateFrame) {
	m := s.Metrics.Get()
	m.Ticks = frame.Tick

	now := time.Now()
	if !s.lastTime.IsZero() {
		m.TickTime = now.Sub(s.lastTime)
		m.MaxTick = max(m.MaxTick, m.TickTime)
	}
	s.lastTime = now

	m.Bullets, m.PlayerBullets = 0, 0
	for b := range s.Bullets.Values() {
		m.Bullets++
		if b.Bullet.Side == component.SidePlayer {
			m.PlayerBullets++
		}
	}
	m.Enemies = s.Enemies.Len()
	m.Items = s.Items.Len()
	m.Anchors = s.Anchors.Len()
	m.Entities = frame.Storage.Len()

	m.PeakEntities = max(m.PeakEntities, m.Entities)
	m.PeakBullets = max(m.PeakBullets, m.Bullets)
}
